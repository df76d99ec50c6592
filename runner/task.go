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

package runner

import (
	"fmt"

	"github.com/golang/glog"
	"naive.systems/clant/checkers"
	"naive.systems/clant/checkers/clangtidy"
	"naive.systems/clant/checkers/iwyu"
	"naive.systems/clant/compilecommand"
	"naive.systems/clant/headers"
	"naive.systems/clant/options"
)

type Kind int

const (
	TidySource Kind = iota
	TidyHeaderSet
	IwyuSource
	IwyuHeader
)

func (k Kind) String() string {
	switch k {
	case TidySource:
		return "TidySource"
	case TidyHeaderSet:
		return "TidyHeaderSet"
	case IwyuSource:
		return "IwyuSource"
	case IwyuHeader:
		return "IwyuHeader"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) Tool() checkers.Tool {
	if k == IwyuSource || k == IwyuHeader {
		return checkers.Iwyu
	}
	return checkers.ClangTidy
}

// AnalysisTask is one tool run on one target. Index is the position of the
// task in enumeration order and decides where its output goes in the report.
// Exactly one of Command and Headers is set.
type AnalysisTask struct {
	Index        int
	Kind         Kind
	Command      *compilecommand.CompileCommand
	Headers      *headers.HeaderSet
	MappingFiles []string
	Invocation   checkers.Invocation
}

// Target is the file that summary lines of the task point to.
func (t AnalysisTask) Target() string {
	if t.Command != nil {
		return t.Command.SourcePath
	}
	if t.Headers != nil && len(t.Headers.HeaderPaths) > 0 {
		return t.Headers.HeaderPaths[0]
	}
	return ""
}

// Paths lists every file the task analyzes as a primary input.
func (t AnalysisTask) Paths() []string {
	if t.Command != nil {
		return []string{t.Command.SourcePath}
	}
	if t.Headers != nil {
		return t.Headers.HeaderPaths
	}
	return nil
}

func (t AnalysisTask) Name() string {
	if t.Kind == TidyHeaderSet {
		return fmt.Sprintf("%s on %d headers", t.Kind.Tool(), len(t.Headers.HeaderPaths))
	}
	return fmt.Sprintf("%s on %s", t.Kind.Tool(), t.Target())
}

// Format normalizes the outcome with the formatter of the task's tool. The
// second result reports whether the task failed.
func (t AnalysisTask) Format(outcome checkers.Outcome) ([]string, bool) {
	if t.Kind.Tool() == checkers.Iwyu {
		return iwyu.Format(t.Target(), outcome)
	}
	return clangtidy.Format(t.Target(), outcome)
}

// BuildTasks enumerates the tasks of a run: for every compile command its
// clang-tidy task then its include-what-you-use task, then the extra header
// tasks. Sources that are excluded or generated inside the build directory
// produce no task. mappingFiles must already be resolved.
//
// Headers are selected by extension and location, so the arguments stay
// small whatever the number of project headers. config.AutoHeaders only
// decides whether clang-tidy's header filter is overridden; include-what-you-use
// always checks the headers of the source's language family.
func BuildTasks(config *options.RunConfig, commands []compilecommand.CompileCommand, resolver *headers.Resolver, mappingFiles []string) ([]AnalysisTask, error) {
	tasks := []AnalysisTask{}
	add := func(task AnalysisTask) {
		task.Index = len(tasks)
		tasks = append(tasks, task)
	}
	if !(config.Tidy || config.Iwyu) {
		return tasks, nil
	}
	scope, err := resolver.Scope()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve header scope: %v", err)
	}
	for i := range commands {
		command := &commands[i]
		if resolver.Excluded(command.SourcePath) {
			glog.Infof("source %s excluded", command.SourcePath)
			continue
		}
		if resolver.InBuildDir(command.SourcePath) {
			glog.Infof("source %s is inside the build directory, skipped", command.SourcePath)
			continue
		}
		exts := command.Language.HeaderExtensions()
		if config.Tidy {
			headerFilter := ""
			if config.AutoHeaders {
				headerFilter = clangtidy.HeaderFilter(scope, exts)
			}
			add(AnalysisTask{
				Kind:       TidySource,
				Command:    command,
				Invocation: clangtidy.SourceInvocation(config.ClangTidyBin, config.BuildDir, *command, headerFilter),
			})
		}
		if config.Iwyu {
			add(AnalysisTask{
				Kind:         IwyuSource,
				Command:      command,
				MappingFiles: mappingFiles,
				Invocation:   iwyu.SourceInvocation(config.IwyuBin, *command, mappingFiles, iwyu.CheckAlso(scope, exts)),
			})
		}
	}

	if len(config.IncludeDirs) == 0 {
		return tasks, nil
	}
	extra, err := resolver.ResolveExtraHeaders(config.IncludeDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve extra headers: %v", err)
	}
	if len(extra.HeaderPaths) == 0 {
		glog.Warningf("no header found under %v", config.IncludeDirs)
		return tasks, nil
	}
	if config.Tidy {
		add(AnalysisTask{
			Kind:       TidyHeaderSet,
			Headers:    &extra,
			Invocation: clangtidy.HeaderSetInvocation(config.ClangTidyBin, config.BuildDir, extra, scope.WithDirs(config.IncludeDirs...)),
		})
	}
	if config.Iwyu {
		for _, header := range extra.HeaderPaths {
			single := headers.HeaderSet{
				HeaderPaths:          []string{header},
				CombinedIncludePaths: extra.CombinedIncludePaths,
			}
			add(AnalysisTask{
				Kind:         IwyuHeader,
				Headers:      &single,
				MappingFiles: mappingFiles,
				Invocation:   iwyu.HeaderInvocation(config.IwyuBin, config.BuildDir, header, extra.CombinedIncludePaths, mappingFiles),
			})
		}
	}
	return tasks, nil
}
