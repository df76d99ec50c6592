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
	"fmt"

	"golang.org/x/exp/slices"
)

const Version = "1.0.2"

// Options holds one source of settings. A nil scalar means the source did
// not set it.
type Options struct {
	AutoHeaders     *bool
	BuildDir        *string
	ClangTidyBin    *string
	Iwyu            *bool
	IwyuBin         *string
	Jobs            *int
	JsonResults     *string
	Lang            *string
	Tidy            *bool
	Verbose         *bool
	ExcludePatterns []string
	IncludeDirs     []string
	MappingFiles    []string
}

var Defaults = struct {
	AutoHeaders  bool
	BuildDir     string
	ClangTidyBin string
	Iwyu         bool
	IwyuBin      string
	Jobs         int
	JsonResults  string
	Lang         string
	Tidy         bool
	Verbose      bool
}{
	AutoHeaders:  true,
	BuildDir:     "build",
	ClangTidyBin: "clang-tidy",
	Iwyu:         true,
	IwyuBin:      "include-what-you-use",
	Jobs:         0,
	JsonResults:  "",
	Lang:         "en",
	Tidy:         true,
	Verbose:      false,
}

// Merge combines command line and config file options. For scalars the
// config file wins over the command line, which wins over Defaults. Lists are
// the file values followed by the command line values. Every scalar of the
// result is set.
func Merge(cli, file Options) Options {
	return Options{
		AutoHeaders:     pick(file.AutoHeaders, cli.AutoHeaders, Defaults.AutoHeaders),
		BuildDir:        pick(file.BuildDir, cli.BuildDir, Defaults.BuildDir),
		ClangTidyBin:    pick(file.ClangTidyBin, cli.ClangTidyBin, Defaults.ClangTidyBin),
		Iwyu:            pick(file.Iwyu, cli.Iwyu, Defaults.Iwyu),
		IwyuBin:         pick(file.IwyuBin, cli.IwyuBin, Defaults.IwyuBin),
		Jobs:            pick(file.Jobs, cli.Jobs, Defaults.Jobs),
		JsonResults:     pick(file.JsonResults, cli.JsonResults, Defaults.JsonResults),
		Lang:            pick(file.Lang, cli.Lang, Defaults.Lang),
		Tidy:            pick(file.Tidy, cli.Tidy, Defaults.Tidy),
		Verbose:         pick(file.Verbose, cli.Verbose, Defaults.Verbose),
		ExcludePatterns: concat(file.ExcludePatterns, cli.ExcludePatterns),
		IncludeDirs:     concat(file.IncludeDirs, cli.IncludeDirs),
		MappingFiles:    concat(file.MappingFiles, cli.MappingFiles),
	}
}

func pick[T any](first, second *T, fallback T) *T {
	var v T
	switch {
	case first != nil:
		v = *first
	case second != nil:
		v = *second
	default:
		v = fallback
	}
	return &v
}

func concat(lists ...[]string) []string {
	result := []string{}
	for _, list := range lists {
		result = append(result, slices.Clone(list)...)
	}
	return result
}

func (o Options) GetAutoHeaders() bool { return *o.AutoHeaders }
func (o Options) GetBuildDir() string { return *o.BuildDir }
func (o Options) GetClangTidyBin() string { return *o.ClangTidyBin }
func (o Options) GetIwyu() bool { return *o.Iwyu }
func (o Options) GetIwyuBin() string { return *o.IwyuBin }
func (o Options) GetJobs() int { return *o.Jobs }
func (o Options) GetJsonResults() string { return *o.JsonResults }
func (o Options) GetLang() string { return *o.Lang }
func (o Options) GetTidy() bool { return *o.Tidy }
func (o Options) GetVerbose() bool { return *o.Verbose }

// ConfigurationError reports an invalid configuration value.
type ConfigurationError struct {
	Path    string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
