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

package diagnostic

import (
	"bufio"
	"fmt"
	"io"

	"github.com/golang/glog"
	"naive.systems/clant/runner"
)

// Entry is one item of a task's output: a diagnostic, or a line passed
// through verbatim when Diagnostic is nil.
type Entry struct {
	Diagnostic *Diagnostic
	Raw        string
}

// TaskReport is the normalized output of one task.
type TaskReport struct {
	Task    runner.AnalysisTask
	Failed  bool
	Entries []Entry
}

type Report struct {
	BuildDir string
	Tasks    []TaskReport
}

// Aggregate normalizes results in the order they are given, which must be
// the enumeration order of the tasks. A diagnostic already reported with the
// same context by an earlier entry is dropped.
func Aggregate(buildDir string, results []runner.TaskResult) *Report {
	report := &Report{BuildDir: buildDir, Tasks: make([]TaskReport, 0, len(results))}
	seen := map[string]struct{}{}
	for _, result := range results {
		lines, failed := result.Task.Format(result.Outcome)
		if failed {
			glog.Errorf("%s failed", result.Task.Name())
		}
		taskReport := TaskReport{Task: result.Task, Failed: failed}
		for _, entry := range parseEntries(lines, result.Task) {
			if entry.Diagnostic != nil {
				key := entry.Diagnostic.key()
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
			}
			taskReport.Entries = append(taskReport.Entries, entry)
		}
		report.Tasks = append(report.Tasks, taskReport)
	}
	return report
}

// parseEntries attaches every non-diagnostic line to the diagnostic before
// it. Lines before the first diagnostic and malformed ones stay raw.
func parseEntries(lines []string, task runner.AnalysisTask) []Entry {
	entries := []Entry{}
	var current *Diagnostic
	for _, line := range lines {
		d, err := ParseLine(line, task.Kind.Tool())
		if err != nil {
			glog.Warningf("%s: %v", task.Name(), err)
			entries = append(entries, Entry{Raw: line})
			current = nil
			continue
		}
		if d == nil {
			if current != nil {
				current.Context = append(current.Context, line)
			} else {
				entries = append(entries, Entry{Raw: line})
			}
			continue
		}
		entries = append(entries, Entry{Diagnostic: d})
		current = d
	}
	return entries
}

// Diagnostics returns all diagnostics in report order.
func (r *Report) Diagnostics() []Diagnostic {
	diagnostics := []Diagnostic{}
	for _, task := range r.Tasks {
		for _, entry := range task.Entries {
			if entry.Diagnostic != nil {
				diagnostics = append(diagnostics, *entry.Diagnostic)
			}
		}
	}
	return diagnostics
}

// Counts returns the number of diagnostics of each severity and the number
// of failed tasks.
func (r *Report) Counts() (map[Severity]int, int) {
	counts := map[Severity]int{}
	for _, d := range r.Diagnostics() {
		counts[d.Severity]++
	}
	failed := 0
	for _, task := range r.Tasks {
		if task.Failed {
			failed++
		}
	}
	return counts, failed
}

// ExitCode is 0 when no diagnostic is an error and no task failed, 1
// otherwise.
func (r *Report) ExitCode() int {
	counts, failed := r.Counts()
	if counts[Error] > 0 || failed > 0 {
		return 1
	}
	return 0
}

func (r *Report) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "clant: Entering directory `%s'\n", r.BuildDir)
	for _, task := range r.Tasks {
		for _, entry := range task.Entries {
			if entry.Diagnostic == nil {
				fmt.Fprintln(bw, entry.Raw)
				continue
			}
			fmt.Fprintln(bw, entry.Diagnostic.Header())
			for _, line := range entry.Diagnostic.Context {
				fmt.Fprintln(bw, line)
			}
		}
	}
	fmt.Fprintf(bw, "clant: Leaving directory `%s'\n", r.BuildDir)
	return bw.Flush()
}
