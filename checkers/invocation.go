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

package checkers

import "naive.systems/clant/basic"

type Tool string

const (
	ClangTidy Tool = "clang-tidy"
	Iwyu      Tool = "include-what-you-use"
)

// Invocation is one external process to run.
type Invocation struct {
	Tool Tool
	Bin  string
	Args []string
	Dir  string
}

func (i Invocation) String() string {
	return basic.ShellJoin(append([]string{i.Bin}, i.Args...))
}

// Outcome is what a finished process left behind.
type Outcome struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// Set when the process could not be started or was killed by a signal.
	Err error
}
