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

package headers

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"naive.systems/clant/compilecommand"
)

// All header extensions known to either language family.
var HeaderExtensions = []string{"h", "hh", "hpp", "ipp"}

// HeaderSet is a group of headers checked together. Owner is nil for extra
// headers that do not belong to a single compile command; those are compiled
// with CombinedIncludePaths.
type HeaderSet struct {
	Owner                *compilecommand.CompileCommand
	HeaderPaths          []string
	CombinedIncludePaths []string
}

// Scope tells where project headers live as the tools name them. A header
// outside the build directory is named either relative to it ("../...") or
// absolutely, in which case it lies under one of Dirs or is one of Files.
type Scope struct {
	Dirs  []string
	Files []string
}

// WithDirs returns a copy of s that also covers dirs.
func (s Scope) WithDirs(dirs ...string) Scope {
	scope := Scope{Dirs: slices.Clone(s.Dirs), Files: slices.Clone(s.Files)}
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if !slices.Contains(scope.Dirs, dir) {
			scope.Dirs = append(scope.Dirs, dir)
		}
	}
	return scope
}

// FilesWithExt returns the files of s whose extension is one of exts.
func (s Scope) FilesWithExt(exts []string) []string {
	files := []string{}
	for _, file := range s.Files {
		if slices.Contains(exts, strings.TrimPrefix(filepath.Ext(file), ".")) {
			files = append(files, file)
		}
	}
	return files
}

type Resolver struct {
	ProjectRoot string
	BuildDir    string
	Exclude     *regexp.Regexp
	Commands    []compilecommand.CompileCommand

	mu          sync.Mutex
	projectHdrs []string
	scanned     bool
	scope       *Scope
}

func NewResolver(projectRoot, buildDir string, exclude *regexp.Regexp, commands []compilecommand.CompileCommand) *Resolver {
	return &Resolver{
		ProjectRoot: filepath.Clean(projectRoot),
		BuildDir:    filepath.Clean(buildDir),
		Exclude:     exclude,
		Commands:    commands,
	}
}

// Excluded reports whether path matches the exclude pattern, either as an
// absolute path or relative to the build directory.
func (r *Resolver) Excluded(path string) bool {
	if r.Exclude == nil {
		return false
	}
	if r.Exclude.MatchString(path) {
		return true
	}
	rel, err := filepath.Rel(r.BuildDir, path)
	return err == nil && r.Exclude.MatchString(rel)
}

// InBuildDir reports whether path lies inside the build directory.
func (r *Resolver) InBuildDir(path string) bool {
	return path == r.BuildDir || strings.HasPrefix(path, r.BuildDir+string(filepath.Separator))
}

// ResolveAutoHeaders returns the project headers whose extension belongs to
// the language family of command, sorted and with excluded paths removed.
func (r *Resolver) ResolveAutoHeaders(command compilecommand.CompileCommand) ([]string, error) {
	all, err := r.projectHeaders()
	if err != nil {
		return nil, err
	}
	exts := command.Language.HeaderExtensions()
	result := []string{}
	for _, path := range all {
		if slices.Contains(exts, strings.TrimPrefix(filepath.Ext(path), ".")) {
			result = append(result, path)
		}
	}
	return result, nil
}

// ResolveExtraHeaders enumerates every header under includeDirs. Each
// directory is scanned independently; the union is sorted lexicographically.
func (r *Resolver) ResolveExtraHeaders(includeDirs []string) (HeaderSet, error) {
	found := make([][]string, len(includeDirs))
	g := new(errgroup.Group)
	g.SetLimit(4)
	for i, dir := range includeDirs {
		i, dir := i, dir
		g.Go(func() error {
			paths, err := globHeaders(dir, HeaderExtensions)
			if err != nil {
				return err
			}
			found[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return HeaderSet{}, err
	}
	headerPaths := []string{}
	for _, paths := range found {
		for _, path := range paths {
			if r.Excluded(path) {
				glog.V(1).Infof("header %s excluded", path)
				continue
			}
			headerPaths = append(headerPaths, path)
		}
	}
	slices.Sort(headerPaths)
	headerPaths = slices.Compact(headerPaths)
	return HeaderSet{
		HeaderPaths:          headerPaths,
		CombinedIncludePaths: CombinedIncludePaths(r.Commands),
	}, nil
}

// Scope lists the top level entries of the project root other than the
// build directory: directories, and headers lying directly in the root.
// When the build directory is outside the project root, the whole root is
// in scope.
func (r *Resolver) Scope() (Scope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scope != nil {
		return *r.scope, nil
	}
	scope := Scope{Dirs: []string{}, Files: []string{}}
	if !strings.HasPrefix(r.BuildDir, r.ProjectRoot+string(filepath.Separator)) {
		scope.Dirs = append(scope.Dirs, r.ProjectRoot)
	} else {
		entries, err := os.ReadDir(r.ProjectRoot)
		if err != nil {
			return Scope{}, fmt.Errorf("failed to list %s: %v", r.ProjectRoot, err)
		}
		for _, entry := range entries {
			path := filepath.Join(r.ProjectRoot, entry.Name())
			if r.InBuildDir(path) || r.Excluded(path) {
				continue
			}
			if entry.IsDir() {
				scope.Dirs = append(scope.Dirs, path)
			} else if slices.Contains(HeaderExtensions, strings.TrimPrefix(filepath.Ext(path), ".")) {
				scope.Files = append(scope.Files, path)
			}
		}
	}
	glog.V(1).Infof("header scope: %+v", scope)
	r.scope = &scope
	return scope, nil
}

// CombinedIncludePaths is the union of the include paths of all commands in
// first-seen order.
func CombinedIncludePaths(commands []compilecommand.CompileCommand) []string {
	paths := []string{}
	for _, command := range commands {
		for _, path := range command.IncludePaths {
			if !slices.Contains(paths, path) {
				paths = append(paths, path)
			}
		}
	}
	return paths
}

func (r *Resolver) projectHeaders() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scanned {
		return r.projectHdrs, nil
	}
	paths, err := globHeaders(r.ProjectRoot, HeaderExtensions)
	if err != nil {
		return nil, err
	}
	headers := []string{}
	for _, path := range paths {
		if r.InBuildDir(path) || r.Excluded(path) {
			continue
		}
		headers = append(headers, path)
	}
	slices.Sort(headers)
	glog.Infof("found %d project headers under %s", len(headers), r.ProjectRoot)
	r.projectHdrs = headers
	r.scanned = true
	return headers, nil
}

// globHeaders returns absolute paths of files under root with one of exts.
func globHeaders(root string, exts []string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("filepath.Abs(%s): %v", root, err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("cannot read header directory %s: %v", root, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	pattern := "**/*.{" + strings.Join(exts, ",") + "}"
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("doublestar.Glob(%s, %s): %v", root, pattern, err)
	}
	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		path := filepath.Join(root, filepath.FromSlash(match))
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}
