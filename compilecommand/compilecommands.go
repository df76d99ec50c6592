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

package compilecommand

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/google/shlex"
	"golang.org/x/exp/slices"
)

const CCJson string = "compile_commands.json"

// Entry is one record of a compilation database as written by the build
// system.
type Entry struct {
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	File      string   `json:"file"`
	Directory string   `json:"directory"`
	Output    string   `json:"output,omitempty"`
}

// CompileCommand is the typed form of an Entry. It is never modified after
// NewCompileCommand returns it.
type CompileCommand struct {
	SourcePath       string
	WorkingDirectory string
	Language         Language
	IncludePaths     []string
	RawArguments     []string
}

func ReadCompileCommandsFromFile(compileCommandsPath string) ([]Entry, error) {
	ccFile, err := os.Open(compileCommandsPath)
	if err != nil {
		return nil, &CatalogError{Path: compileCommandsPath, Index: -1, Err: err}
	}

	defer ccFile.Close()

	byteContent, err := io.ReadAll(ccFile)
	if err != nil {
		return nil, &CatalogError{Path: compileCommandsPath, Index: -1, Err: err}
	}

	entries := []Entry{}
	err = json.Unmarshal(byteContent, &entries)
	if err != nil {
		return nil, &CatalogError{Path: compileCommandsPath, Index: -1, Err: err}
	}

	return entries, nil
}

// Load reads the compilation database at databasePath. Records with an
// unsupported source extension are skipped; a record naming a source already
// seen is dropped.
func Load(databasePath string) ([]CompileCommand, error) {
	entries, err := ReadCompileCommandsFromFile(databasePath)
	if err != nil {
		return nil, err
	}
	commands := make([]CompileCommand, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		command, err := NewCompileCommand(entry)
		var unsupported *UnsupportedLanguageError
		if errors.As(err, &unsupported) {
			glog.Warningf("skipping %s: %v", entry.File, err)
			continue
		}
		if err != nil {
			return nil, &CatalogError{Path: databasePath, Index: i, Err: err}
		}
		if _, ok := seen[command.SourcePath]; ok {
			glog.Warningf("duplicate entry for %s in %s, keeping the first one", command.SourcePath, databasePath)
			continue
		}
		seen[command.SourcePath] = struct{}{}
		commands = append(commands, command)
	}
	glog.Infof("loaded %d compile commands from %s", len(commands), databasePath)
	return commands, nil
}

// NewCompileCommand validates an Entry and derives its language, absolute
// source path and include paths.
func NewCompileCommand(entry Entry) (CompileCommand, error) {
	if entry.Directory == "" {
		return CompileCommand{}, errors.New("missing field \"directory\"")
	}
	if entry.File == "" {
		return CompileCommand{}, errors.New("missing field \"file\"")
	}
	args := entry.Arguments
	if len(args) == 0 {
		if entry.Command == "" {
			return CompileCommand{}, errors.New("missing field \"command\" or \"arguments\"")
		}
		var err error
		args, err = shlex.Split(entry.Command)
		if err != nil {
			return CompileCommand{}, err
		}
		if len(args) == 0 {
			return CompileCommand{}, errors.New("empty field \"command\"")
		}
	}
	sourcePath := entry.File
	if !filepath.IsAbs(sourcePath) {
		sourcePath = filepath.Join(entry.Directory, sourcePath)
	}
	sourcePath = filepath.Clean(sourcePath)
	lang, err := LanguageOf(sourcePath)
	if err != nil {
		return CompileCommand{}, err
	}
	args = stripCompilerLauncher(args)
	return CompileCommand{
		SourcePath:       sourcePath,
		WorkingDirectory: entry.Directory,
		Language:         lang,
		IncludePaths:     includePaths(args, entry.Directory),
		RawArguments:     slices.Clone(args),
	}, nil
}

// If the first part of the command is a ccache invocation then the rest
// should be a complete compilation command.
func stripCompilerLauncher(command []string) []string {
	if len(command) > 1 && filepath.Base(command[0]) == "ccache" {
		if _, err := exec.LookPath(command[1]); err != nil {
			glog.Warningf("%s is not installed in your PATH", command[1])
		}
		return command[1:]
	}
	return command
}

// includePaths collects -I<dir> and -I <dir> in first-seen order.
func includePaths(args []string, directory string) []string {
	paths := []string{}
	for i := 0; i < len(args); i++ {
		if !strings.HasPrefix(args[i], "-I") {
			continue
		}
		dir := strings.TrimPrefix(args[i], "-I")
		if dir == "" {
			if i+1 >= len(args) {
				break
			}
			i++
			dir = args[i]
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(directory, dir)
		}
		dir = filepath.Clean(dir)
		if !slices.Contains(paths, dir) {
			paths = append(paths, dir)
		}
	}
	return paths
}
