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
	"regexp"
	"strings"
)

var (
	correctRe      = regexp.MustCompile(`^\((.*?) has correct #includes/fwd-decls\)$`)
	shouldAddRe    = regexp.MustCompile(`^(.*?) should add these lines:$`)
	shouldRemoveRe = regexp.MustCompile(`^(.*?) should remove these lines:$`)
	removeLineRe   = regexp.MustCompile(`^- (.*?)  // lines ([0-9]+)-[0-9]+$`)
)

type section int

const (
	general section = iota
	adding
	removing
	fullList
)

type formatter struct {
	section section
	path    string
	result  []string
}

// enter switches section on a header line and reports whether line was one.
func (f *formatter) enter(line string) bool {
	if line == "---" {
		f.section = general
		return true
	}
	if strings.HasPrefix(line, "The full include-list for") {
		f.section = fullList
		return true
	}
	if m := correctRe.FindStringSubmatch(line); m != nil {
		f.result = append(f.result, fmt.Sprintf("%s:1:1: note: includes are correct", m[1]))
		f.section = general
		return true
	}
	if m := shouldAddRe.FindStringSubmatch(line); m != nil {
		f.section, f.path = adding, m[1]
		return true
	}
	if m := shouldRemoveRe.FindStringSubmatch(line); m != nil {
		f.section, f.path = removing, m[1]
		return true
	}
	return false
}

func (f *formatter) line(line string) {
	switch f.section {
	case general:
		f.result = append(f.result, line)
	case adding:
		f.result = append(f.result, fmt.Sprintf("%s:1:1: error: add the following line", f.path), line)
	case removing:
		lineNumber, text := "1", line
		if m := removeLineRe.FindStringSubmatch(line); m != nil {
			text, lineNumber = m[1], m[2]
		}
		f.result = append(f.result, fmt.Sprintf("%s:%s:1: error: remove this line", f.path, lineNumber), text)
	case fullList:
	}
}

// FormatOutput rewrites an include-what-you-use report into
// path:line:col: severity: message lines, each followed by the include line
// it is about. Full include lists are dropped.
func FormatOutput(output string) []string {
	f := &formatter{result: []string{}}
	for _, line := range strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if f.enter(line) {
			continue
		}
		f.line(line)
	}
	return f.result
}
