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
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int { return &i }
func strPtr(s string) *string { return &s }

func TestMerge(t *testing.T) {
	for _, testCase := range [...]struct {
		name        string
		cli         Options
		file        Options
		expectTidy  bool
		expectJobs  int
		expectBuild string
		expectMaps  []string
	}{
		{
			name:        "defaults",
			expectTidy:  true,
			expectJobs:  0,
			expectBuild: "build",
			expectMaps:  []string{},
		},
		{
			name:        "cli only",
			cli:         Options{Tidy: boolPtr(false), Jobs: intPtr(3), BuildDir: strPtr("out"), MappingFiles: []string{"cli.imp"}},
			expectTidy:  false,
			expectJobs:  3,
			expectBuild: "out",
			expectMaps:  []string{"cli.imp"},
		},
		{
			name:        "file overrides cli scalars and lists concatenate",
			cli:         Options{Tidy: boolPtr(false), Jobs: intPtr(3), MappingFiles: []string{"cli.imp"}},
			file:        Options{Tidy: boolPtr(true), Jobs: intPtr(8), MappingFiles: []string{"a.imp", "b.imp"}},
			expectTidy:  true,
			expectJobs:  8,
			expectBuild: "build",
			expectMaps:  []string{"a.imp", "b.imp", "cli.imp"},
		},
		{
			name:        "file false is not unset",
			cli:         Options{Tidy: boolPtr(true)},
			file:        Options{Tidy: boolPtr(false)},
			expectTidy:  false,
			expectJobs:  0,
			expectBuild: "build",
			expectMaps:  []string{},
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			merged := Merge(testCase.cli, testCase.file)
			if merged.GetTidy() != testCase.expectTidy {
				t.Errorf("unexpected tidy. got: %v. expected: %v.", merged.GetTidy(), testCase.expectTidy)
			}
			if merged.GetJobs() != testCase.expectJobs {
				t.Errorf("unexpected jobs. got: %v. expected: %v.", merged.GetJobs(), testCase.expectJobs)
			}
			if merged.GetBuildDir() != testCase.expectBuild {
				t.Errorf("unexpected build dir. got: %v. expected: %v.", merged.GetBuildDir(), testCase.expectBuild)
			}
			if !reflect.DeepEqual(merged.MappingFiles, testCase.expectMaps) {
				t.Errorf("unexpected mapping files. got: %v. expected: %v.", merged.MappingFiles, testCase.expectMaps)
			}
			if !merged.GetAutoHeaders() || !merged.GetIwyu() || merged.GetVerbose() {
				t.Errorf("unexpected untouched defaults: %+v", merged)
			}
		})
	}
}

func TestMergeDoesNotAlias(t *testing.T) {
	cli := Options{Tidy: boolPtr(true), ExcludePatterns: []string{"x"}}
	merged := Merge(cli, Options{})
	*merged.Tidy = false
	merged.ExcludePatterns[0] = "y"
	if !*cli.Tidy || cli.ExcludePatterns[0] != "x" {
		t.Errorf("Merge result shares memory with its input")
	}
}

func TestCommandLine(t *testing.T) {
	fs := flag.NewFlagSet("clant", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cl := NewCommandLine(fs)
	err := cl.Parse([]string{"--no-tidy", "-j", "4", "--mapping", "a.imp", "out", "--mapping", "b.imp", "--exclude", "gen"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts := cl.Options()
	if opts.Tidy == nil || *opts.Tidy {
		t.Errorf("--no-tidy not applied: %v", opts.Tidy)
	}
	if opts.Iwyu != nil || opts.AutoHeaders != nil || opts.Verbose != nil {
		t.Errorf("flags that were not given are set: %+v", opts)
	}
	if opts.Jobs == nil || *opts.Jobs != 4 {
		t.Errorf("unexpected jobs: %v", opts.Jobs)
	}
	if opts.BuildDir == nil || *opts.BuildDir != "out" {
		t.Errorf("unexpected build dir: %v", opts.BuildDir)
	}
	if expected := []string{"a.imp", "b.imp"}; !reflect.DeepEqual(opts.MappingFiles, expected) {
		t.Errorf("unexpected mapping files. got: %v. expected: %v.", opts.MappingFiles, expected)
	}
	if expected := []string{"gen"}; !reflect.DeepEqual(opts.ExcludePatterns, expected) {
		t.Errorf("unexpected exclude patterns. got: %v. expected: %v.", opts.ExcludePatterns, expected)
	}

	fs = flag.NewFlagSet("clant", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := NewCommandLine(fs).Parse([]string{"one", "two"}); err == nil {
		t.Errorf("expected an error for two build directories")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	return dir
}

func TestLoadConfigFile(t *testing.T) {
	for _, testCase := range [...]struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: ".clant.json",
			content: `{
  "version": "1.0.0",
  "auto_headers": false,
  "build_dir": "out",
  "exclude_patterns": [".*generated.*"],
  "include_dirs": ["include"],
  "mapping_files": ["qt.imp"],
  "iwyu": false,
  "tidy": true,
  "jobs": 2,
  "verbose": true
}`,
		},
		{
			name: "yaml",
			file: ".clant.yaml",
			content: `version: 1.0.0
auto_headers: false
build_dir: out
exclude_patterns: [".*generated.*"]
include_dirs:
  - include
mapping_files: [qt.imp]
iwyu: false
tidy: true
jobs: 2
verbose: true
`,
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			dir := writeConfig(t, testCase.file, testCase.content)
			opts, path, err := LoadConfigFile(dir)
			if err != nil {
				t.Fatalf("LoadConfigFile: %v", err)
			}
			if path != filepath.Join(dir, testCase.file) {
				t.Errorf("unexpected path. got: %v. expected: %v.", path, filepath.Join(dir, testCase.file))
			}
			if opts.AutoHeaders == nil || *opts.AutoHeaders {
				t.Errorf("unexpected auto_headers: %v", opts.AutoHeaders)
			}
			if opts.BuildDir == nil || *opts.BuildDir != filepath.Join(dir, "out") {
				t.Errorf("unexpected build_dir: %v", opts.BuildDir)
			}
			if expected := []string{filepath.Join(dir, "include")}; !reflect.DeepEqual(opts.IncludeDirs, expected) {
				t.Errorf("unexpected include_dirs. got: %v. expected: %v.", opts.IncludeDirs, expected)
			}
			if expected := []string{"qt.imp"}; !reflect.DeepEqual(opts.MappingFiles, expected) {
				t.Errorf("unexpected mapping_files. got: %v. expected: %v.", opts.MappingFiles, expected)
			}
			if expected := []string{".*generated.*"}; !reflect.DeepEqual(opts.ExcludePatterns, expected) {
				t.Errorf("unexpected exclude_patterns. got: %v. expected: %v.", opts.ExcludePatterns, expected)
			}
			if opts.Jobs == nil || *opts.Jobs != 2 {
				t.Errorf("unexpected jobs: %v", opts.Jobs)
			}
			if opts.Iwyu == nil || *opts.Iwyu || opts.Tidy == nil || !*opts.Tidy || opts.Verbose == nil || !*opts.Verbose {
				t.Errorf("unexpected booleans: %+v", opts)
			}
		})
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	for _, testCase := range [...]struct {
		name    string
		content string
	}{
		{name: "missing version", content: `{"tidy": true}`},
		{name: "bad version", content: `{"version": "1.0"}`},
		{name: "numeric version", content: `{"version": 1}`},
		{name: "bool type", content: `{"version": "1.0.0", "tidy": "yes"}`},
		{name: "int type", content: `{"version": "1.0.0", "jobs": 1.5}`},
		{name: "list type", content: `{"version": "1.0.0", "include_dirs": "include"}`},
		{name: "list element type", content: `{"version": "1.0.0", "mapping_files": [1]}`},
		{name: "string type", content: `{"version": "1.0.0", "build_dir": false}`},
		{name: "invalid json", content: `{"version": "1.0.0",`},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			_, _, err := LoadConfigFile(writeConfig(t, ".clant.json", testCase.content))
			var configErr *ConfigurationError
			if !errors.As(err, &configErr) {
				t.Errorf("unexpected error. got: %v. expected: *ConfigurationError.", err)
			}
		})
	}
}

func TestLoadConfigFileAbsent(t *testing.T) {
	opts, path, err := LoadConfigFile(t.TempDir())
	if err != nil || path != "" || !reflect.DeepEqual(opts, Options{}) {
		t.Errorf("unexpected result for a project without config. got: %+v, %q, %v.", opts, path, err)
	}
}

func TestIsNewerVersion(t *testing.T) {
	for _, testCase := range [...]struct {
		version  string
		expected bool
	}{
		{version: "1.0.2", expected: false},
		{version: "1.0.1", expected: false},
		{version: "1.0.10", expected: true},
		{version: "2.0.0", expected: true},
		{version: "0.9.9", expected: false},
	} {
		got, err := isNewerVersion(testCase.version, Version)
		if err != nil {
			t.Fatalf("isNewerVersion(%s): %v", testCase.version, err)
		}
		if got != testCase.expected {
			t.Errorf("unexpected result for %s. got: %v. expected: %v.", testCase.version, got, testCase.expected)
		}
	}
}

func TestNewRunConfig(t *testing.T) {
	merged := Merge(Options{
		BuildDir:        strPtr("/p/build"),
		ExcludePatterns: []string{`.*generated.*\.c`, "vendor/"},
	}, Options{})
	config, err := NewRunConfig(merged, "/p")
	if err != nil {
		t.Fatalf("NewRunConfig: %v", err)
	}
	if config.Jobs != runtime.NumCPU() {
		t.Errorf("unexpected jobs. got: %v. expected: %v.", config.Jobs, runtime.NumCPU())
	}
	if config.CompileCommandsPath() != "/p/build/compile_commands.json" {
		t.Errorf("unexpected database path: %v", config.CompileCommandsPath())
	}
	for path, expected := range map[string]bool{
		"/p/src/generated_parser.c": true,
		"/p/vendor/lib.c":           true,
		"/p/src/main.c":             false,
	} {
		if got := config.Exclude.MatchString(path); got != expected {
			t.Errorf("unexpected exclusion of %s. got: %v. expected: %v.", path, got, expected)
		}
	}

	_, err = NewRunConfig(Merge(Options{ExcludePatterns: []string{"("}}, Options{}), "/p")
	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Errorf("unexpected error for an invalid pattern. got: %v. expected: *ConfigurationError.", err)
	}
}
