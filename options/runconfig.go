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
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"naive.systems/clant/compilecommand"
)

// RunConfig is the resolved configuration of one run. It is built once by
// NewRunConfig and only read afterwards.
type RunConfig struct {
	ProjectDir      string
	BuildDir        string
	AutoHeaders     bool
	Tidy            bool
	Iwyu            bool
	Jobs            int
	Verbose         bool
	ExcludePatterns []string
	Exclude         *regexp.Regexp
	IncludeDirs     []string
	MappingFiles    []string
	ClangTidyBin    string
	IwyuBin         string
	Lang            string
	JsonResults     string
}

// ProjectDir is the parent of the build directory.
func ProjectDir(buildDir string) (string, error) {
	abs, err := filepath.Abs(buildDir)
	if err != nil {
		return "", fmt.Errorf("filepath.Abs(%s): %v", buildDir, err)
	}
	return filepath.Dir(abs), nil
}

// NewRunConfig turns merged Options into a RunConfig. Relative paths are
// resolved against the current directory.
func NewRunConfig(merged Options, projectDir string) (*RunConfig, error) {
	buildDir, err := filepath.Abs(merged.GetBuildDir())
	if err != nil {
		return nil, fmt.Errorf("filepath.Abs(%s): %v", merged.GetBuildDir(), err)
	}
	includeDirs := []string{}
	for _, dir := range merged.IncludeDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("filepath.Abs(%s): %v", dir, err)
		}
		includeDirs = append(includeDirs, abs)
	}
	var exclude *regexp.Regexp
	if len(merged.ExcludePatterns) > 0 {
		pattern := strings.Join(merged.ExcludePatterns, "|")
		exclude, err = regexp.Compile(pattern)
		if err != nil {
			return nil, &ConfigurationError{Message: fmt.Sprintf("invalid exclude pattern `%s': %v", pattern, err)}
		}
	}
	jobs := merged.GetJobs()
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &RunConfig{
		ProjectDir:      projectDir,
		BuildDir:        buildDir,
		AutoHeaders:     merged.GetAutoHeaders(),
		Tidy:            merged.GetTidy(),
		Iwyu:            merged.GetIwyu(),
		Jobs:            jobs,
		Verbose:         merged.GetVerbose(),
		ExcludePatterns: merged.ExcludePatterns,
		Exclude:         exclude,
		IncludeDirs:     includeDirs,
		MappingFiles:    merged.MappingFiles,
		ClangTidyBin:    merged.GetClangTidyBin(),
		IwyuBin:         merged.GetIwyuBin(),
		Lang:            merged.GetLang(),
		JsonResults:     merged.GetJsonResults(),
	}, nil
}

func (c *RunConfig) CompileCommandsPath() string {
	return filepath.Join(c.BuildDir, compilecommand.CCJson)
}
