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
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("os.MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("[]\n"), 0755); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
}

func TestNewLocatorSystemDir(t *testing.T) {
	prefix, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(prefix, "bin", "include-what-you-use"))
	t.Setenv("PATH", filepath.Join(prefix, "bin"))
	locator := NewLocator("/project", "include-what-you-use")
	expected := []string{filepath.Join(prefix, "share", "include-what-you-use")}
	if !reflect.DeepEqual(locator.SystemDirs, expected) {
		t.Errorf("unexpected system dirs. got: %v. expected: %v.", locator.SystemDirs, expected)
	}

	t.Setenv("PATH", t.TempDir())
	if locator := NewLocator("/project", "include-what-you-use"); len(locator.SystemDirs) != 0 {
		t.Errorf("unexpected system dirs without the tool installed: %v", locator.SystemDirs)
	}
}

func TestNewLocatorSymlinkedTool(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	llvm := filepath.Join(root, "opt", "llvm")
	usr := filepath.Join(root, "usr")
	touch(t, filepath.Join(llvm, "bin", "include-what-you-use"))
	if err := os.MkdirAll(filepath.Join(usr, "bin"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(llvm, "bin", "include-what-you-use"), filepath.Join(usr, "bin", "include-what-you-use")); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(usr, "share", "include-what-you-use", "distro.imp"))
	touch(t, filepath.Join(llvm, "share", "include-what-you-use", "llvm.imp"))
	t.Setenv("PATH", filepath.Join(usr, "bin"))

	locator := NewLocator(t.TempDir(), "include-what-you-use")
	expected := []string{
		filepath.Join(usr, "share", "include-what-you-use"),
		filepath.Join(llvm, "share", "include-what-you-use"),
	}
	if !reflect.DeepEqual(locator.SystemDirs, expected) {
		t.Fatalf("unexpected system dirs. got: %v. expected: %v.", locator.SystemDirs, expected)
	}
	for _, name := range []string{"distro.imp", "llvm.imp"} {
		if _, err := locator.Resolve(name); err != nil {
			t.Errorf("Resolve(%s): %v", name, err)
		}
	}
}

func TestResolve(t *testing.T) {
	project := t.TempDir()
	system := t.TempDir()
	touch(t, filepath.Join(project, "qt.imp"))
	touch(t, filepath.Join(system, "qt.imp"))
	touch(t, filepath.Join(system, "gcc.libc.imp"))
	touch(t, filepath.Join(project, "maps", "local.imp"))
	locator := Locator{ProjectRoot: project, SystemDirs: []string{system}}

	for _, testCase := range [...]struct {
		name     string
		expected string
	}{
		{name: "qt.imp", expected: filepath.Join(project, "qt.imp")},
		{name: "gcc.libc.imp", expected: filepath.Join(system, "gcc.libc.imp")},
		{name: "maps/local.imp", expected: filepath.Join(project, "maps", "local.imp")},
		{name: filepath.Join(system, "qt.imp"), expected: filepath.Join(system, "qt.imp")},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := locator.Resolve(testCase.name)
			if err != nil {
				t.Fatalf("Resolve(%s): %v", testCase.name, err)
			}
			if got != testCase.expected {
				t.Errorf("unexpected mapping file. got: %v. expected: %v.", got, testCase.expected)
			}
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	locator := Locator{ProjectRoot: t.TempDir(), SystemDirs: []string{t.TempDir()}}
	for _, name := range []string{"absent.imp", "/nonexistent/absent.imp"} {
		_, err := locator.Resolve(name)
		var notFound *MappingNotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("unexpected error for %s. got: %v. expected: *MappingNotFoundError.", name, err)
			continue
		}
		if notFound.Name != name {
			t.Errorf("unexpected name in error. got: %v. expected: %v.", notFound.Name, name)
		}
	}

	if _, err := locator.ResolveAll([]string{"absent.imp"}); err == nil {
		t.Errorf("ResolveAll should fail when one mapping file is missing")
	}
}
