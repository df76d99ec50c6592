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

package iwyu

import (
	"fmt"

	"naive.systems/clant/checkers"
	"naive.systems/clant/compilecommand"
	"naive.systems/clant/headers"
)

func commonArgs(mappingFiles []string) []string {
	args := []string{"-Xiwyu", "--quoted_includes_first"}
	for _, mappingFile := range mappingFiles {
		args = append(args, "-Xiwyu", "--mapping_file="+mappingFile)
	}
	return args
}

// CheckAlso returns --check_also globs selecting headers with one of exts
// outside the build directory, named relative to it or absolutely under
// scope. Globs match across directory separators.
func CheckAlso(scope headers.Scope, exts []string) []string {
	globs := []string{}
	for _, ext := range exts {
		globs = append(globs, "../*."+ext)
	}
	for _, dir := range scope.Dirs {
		for _, ext := range exts {
			globs = append(globs, dir+"/*."+ext)
		}
	}
	return append(globs, scope.FilesWithExt(exts)...)
}

// SourceInvocation reuses the compile command minus the compiler itself, and
// asks for the headers matching checkAlso to be checked too. It runs in the
// command's working directory so relative flags keep their meaning.
func SourceInvocation(bin string, command compilecommand.CompileCommand, mappingFiles, checkAlso []string) checkers.Invocation {
	args := commonArgs(mappingFiles)
	if len(command.RawArguments) > 1 {
		args = append(args, command.RawArguments[1:]...)
	}
	for _, glob := range checkAlso {
		args = append(args, "-Xiwyu", "--check_also="+glob)
	}
	return checkers.Invocation{Tool: checkers.Iwyu, Bin: bin, Args: args, Dir: command.WorkingDirectory}
}

// HeaderInvocation checks a single header compiled with includePaths.
func HeaderInvocation(bin, buildDir, header string, includePaths, mappingFiles []string) checkers.Invocation {
	args := commonArgs(mappingFiles)
	for _, path := range includePaths {
		args = append(args, "-I"+path)
	}
	args = append(args, header)
	return checkers.Invocation{Tool: checkers.Iwyu, Bin: bin, Args: args, Dir: buildDir}
}

// Format converts the tool's report on stderr to compiler style lines. The
// exit code carries no meaning, so the task only fails when the process could
// not run or nothing recognizable came out of it.
func Format(target string, outcome checkers.Outcome) ([]string, bool) {
	if outcome.Err != nil {
		return []string{fmt.Sprintf("%s:1:1: error: include-what-you-use failed: %v", target, outcome.Err)}, true
	}
	lines := FormatOutput(string(outcome.Stderr))
	if len(lines) == 0 {
		return []string{fmt.Sprintf("%s:1:1: warning: include-what-you-use failed", target)}, true
	}
	return lines, false
}
