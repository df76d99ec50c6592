/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package clangtidy

import (
	"fmt"
	"regexp"
	"strings"

	"naive.systems/clant/checkers"
	"naive.systems/clant/compilecommand"
	"naive.systems/clant/headers"
)

var commonArgs = []string{"--quiet", "--warnings-as-errors=*"}

// HeaderFilter builds a --header-filter value matching headers with one of
// exts that lie outside the build directory, whether clang names them
// relative to it or absolutely under scope. Its size depends on the number
// of top level project entries, not on the number of headers. With no
// extension it matches nothing, which still overrides any HeaderFilterRegex
// from a .clang-tidy file.
func HeaderFilter(scope headers.Scope, exts []string) string {
	if len(exts) == 0 {
		return "^$"
	}
	prefixes := []string{`\.\./`}
	for _, dir := range scope.Dirs {
		prefixes = append(prefixes, regexp.QuoteMeta(dir+"/"))
	}
	quotedExts := make([]string, len(exts))
	for i, ext := range exts {
		quotedExts[i] = regexp.QuoteMeta(ext)
	}
	alternatives := []string{"(" + strings.Join(prefixes, "|") + ").*\\.(" + strings.Join(quotedExts, "|") + ")"}
	for _, file := range scope.FilesWithExt(exts) {
		alternatives = append(alternatives, regexp.QuoteMeta(file))
	}
	return "^(" + strings.Join(alternatives, "|") + ")$"
}

// SourceInvocation checks one translation unit using the compilation
// database in buildDir. An empty headerFilter keeps the one configured in
// .clang-tidy.
func SourceInvocation(bin, buildDir string, command compilecommand.CompileCommand, headerFilter string) checkers.Invocation {
	args := append([]string{}, commonArgs...)
	args = append(args, "-p="+buildDir)
	if headerFilter != "" {
		args = append(args, "--header-filter="+headerFilter)
	}
	args = append(args, command.SourcePath)
	return checkers.Invocation{Tool: checkers.ClangTidy, Bin: bin, Args: args, Dir: buildDir}
}

// HeaderSetInvocation checks headers that have no compile command of their
// own. Everything after "--" replaces the compilation database.
func HeaderSetInvocation(bin, buildDir string, set headers.HeaderSet, scope headers.Scope) checkers.Invocation {
	args := append([]string{}, commonArgs...)
	args = append(args, "--header-filter="+HeaderFilter(scope, headers.HeaderExtensions))
	args = append(args, set.HeaderPaths...)
	args = append(args, "--")
	for _, path := range set.CombinedIncludePaths {
		args = append(args, "-I"+path)
	}
	return checkers.Invocation{Tool: checkers.ClangTidy, Bin: bin, Args: args, Dir: buildDir}
}

// Format prepends the summary line to the tool output. The second result
// reports whether the process itself failed; findings are not a failure.
func Format(target string, outcome checkers.Outcome) ([]string, bool) {
	lines := []string{}
	if outcome.Err != nil {
		lines = append(lines, fmt.Sprintf("%s:1:1: error: clang-tidy failed: %v", target, outcome.Err))
	} else if outcome.ExitCode == 0 {
		lines = append(lines, fmt.Sprintf("%s:1:1: note: code is tidy", target))
	} else {
		lines = append(lines, fmt.Sprintf("%s:1:1: error: clang-tidy issues from here:", target))
	}
	lines = append(lines, splitLines(string(outcome.Stdout))...)
	return lines, outcome.Err != nil
}

func splitLines(output string) []string {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
}
