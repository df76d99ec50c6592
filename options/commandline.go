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

package options

import (
	"flag"
	"fmt"
	"strings"
)

type ArrayFlags []string

func (i *ArrayFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *ArrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

// CommandLine holds the flags registered on a FlagSet. Only flags that were
// given explicitly end up in Options.
type CommandLine struct {
	fs *flag.FlagSet

	clangTidyBin  *string
	exclude       ArrayFlags
	include       ArrayFlags
	iwyuBin       *string
	jobs          int
	jsonResults   *string
	lang          *string
	mapping       ArrayFlags
	noAutoHeaders *bool
	noIwyu        *bool
	noTidy        *bool
	verbose       *bool
	positional    []string
	ShowVersion   bool
}

func NewCommandLine(fs *flag.FlagSet) *CommandLine {
	cl := &CommandLine{fs: fs}
	cl.clangTidyBin = fs.String("clang_tidy_bin", Defaults.ClangTidyBin, "clang-tidy binary location")
	fs.Var(&cl.exclude, "exclude", "Regular expression for files to ignore (repeatable)")
	fs.Var(&cl.include, "include", "Directory of extra headers to check (repeatable)")
	cl.iwyuBin = fs.String("iwyu_bin", Defaults.IwyuBin, "include-what-you-use binary location")
	fs.IntVar(&cl.jobs, "j", Defaults.Jobs, "Maximum number of parallel tasks, 0 means the number of CPUs")
	fs.IntVar(&cl.jobs, "jobs", Defaults.Jobs, "Same as -j")
	cl.jsonResults = fs.String("json_results", Defaults.JsonResults, "Also write the report in JSON format to this file")
	cl.lang = fs.String("lang", Defaults.Lang, "Language of progress messages, en or zh")
	fs.Var(&cl.mapping, "mapping", "Add an include-what-you-use mapping file (repeatable)")
	cl.noAutoHeaders = fs.Bool("no-auto-headers", false, "Don't restrict checked headers to the language of each source")
	cl.noIwyu = fs.Bool("no-iwyu", false, "Don't run include-what-you-use")
	cl.noTidy = fs.Bool("no-tidy", false, "Don't run clang-tidy")
	cl.verbose = fs.Bool("verbose", Defaults.Verbose, "Print all executed commands and the progress")
	fs.BoolVar(&cl.ShowVersion, "V", false, "Print version information and exit")
	fs.BoolVar(&cl.ShowVersion, "version", false, "Same as -V")
	return cl
}

// Parse parses args, allowing flags to follow the build directory.
func (cl *CommandLine) Parse(args []string) error {
	for {
		if err := cl.fs.Parse(args); err != nil {
			return err
		}
		if cl.fs.NArg() == 0 {
			break
		}
		cl.positional = append(cl.positional, cl.fs.Arg(0))
		args = cl.fs.Args()[1:]
	}
	if len(cl.positional) > 1 {
		return fmt.Errorf("too many arguments: %s", strings.Join(cl.positional, " "))
	}
	return nil
}

// Options returns the explicitly given flags and the optional positional
// build directory. Call it after Parse.
func (cl *CommandLine) Options() Options {
	opts := Options{
		ExcludePatterns: append([]string{}, cl.exclude...),
		IncludeDirs:     append([]string{}, cl.include...),
		MappingFiles:    append([]string{}, cl.mapping...),
	}
	not := func(b bool) *bool {
		v := !b
		return &v
	}
	cl.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "clang_tidy_bin":
			opts.ClangTidyBin = cl.clangTidyBin
		case "iwyu_bin":
			opts.IwyuBin = cl.iwyuBin
		case "j", "jobs":
			jobs := cl.jobs
			opts.Jobs = &jobs
		case "json_results":
			opts.JsonResults = cl.jsonResults
		case "lang":
			opts.Lang = cl.lang
		case "no-auto-headers":
			opts.AutoHeaders = not(*cl.noAutoHeaders)
		case "no-iwyu":
			opts.Iwyu = not(*cl.noIwyu)
		case "no-tidy":
			opts.Tidy = not(*cl.noTidy)
		case "verbose":
			opts.Verbose = cl.verbose
		}
	})
	if len(cl.positional) > 0 {
		buildDir := cl.positional[0]
		opts.BuildDir = &buildDir
	}
	return opts
}
