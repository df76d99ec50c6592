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

package mapping

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"naive.systems/clant/basic"
)

type MappingNotFoundError struct {
	Name     string
	Searched []string
}

func (e *MappingNotFoundError) Error() string {
	return fmt.Sprintf("could not find mapping file `%s'", e.Name)
}

// Locator finds include-what-you-use mapping files. SystemDirs is empty when
// the tool is not installed.
type Locator struct {
	ProjectRoot string
	SystemDirs  []string
}

func systemDir(binPath string) string {
	return filepath.Join(filepath.Dir(filepath.Dir(binPath)), "share", "include-what-you-use")
}

// NewLocator derives the system mapping directories from the location of
// the include-what-you-use executable: <prefix>/bin/iwyu gives
// <prefix>/share/include-what-you-use. The prefix of the path found in PATH
// comes first, then the prefix of its symlink target.
func NewLocator(projectRoot, iwyuBin string) Locator {
	locator := Locator{ProjectRoot: projectRoot}
	resolved, err := basic.ResolveBinaryPath(iwyuBin)
	if err != nil {
		glog.Warningf("no system mapping directory: %v", err)
		return locator
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	locator.SystemDirs = append(locator.SystemDirs, systemDir(resolved))
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		if dir := systemDir(real); dir != locator.SystemDirs[0] {
			locator.SystemDirs = append(locator.SystemDirs, dir)
		}
	}
	return locator
}

// Resolve returns the absolute path of the mapping file called name. An
// absolute name is used as is; otherwise the project root is searched before
// the system directories.
func (l Locator) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if exists(name) {
			return name, nil
		}
		return "", &MappingNotFoundError{Name: name, Searched: []string{name}}
	}
	searched := []string{}
	for _, dir := range append([]string{l.ProjectRoot}, l.SystemDirs...) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		searched = append(searched, candidate)
		if exists(candidate) {
			basic.Infof("Using mapping file `%s'", candidate)
			return candidate, nil
		}
	}
	return "", &MappingNotFoundError{Name: name, Searched: searched}
}

// ResolveAll resolves names in order and stops at the first failure.
func (l Locator) ResolveAll(names []string) ([]string, error) {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path, err := l.Resolve(name)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
