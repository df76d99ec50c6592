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

package results

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"naive.systems/clant/atomic"
	"naive.systems/clant/diagnostic"
	"naive.systems/clant/options"
)

// Summary holds the run facts that are not part of the diagnostic report.
type Summary struct {
	StartedAt   time.Time
	Duration    time.Duration
	LinesOfCode int
}

func stringList(values []string) []interface{} {
	list := make([]interface{}, 0, len(values))
	for _, v := range values {
		list = append(list, v)
	}
	return list
}

// NewStruct builds the JSON report of a run.
func NewStruct(report *diagnostic.Report, summary Summary) (*structpb.Struct, error) {
	counts, failed := report.Counts()
	tasks := []interface{}{}
	for _, task := range report.Tasks {
		tasks = append(tasks, map[string]interface{}{
			"index":  task.Task.Index,
			"kind":   task.Task.Kind.String(),
			"tool":   string(task.Task.Kind.Tool()),
			"paths":  stringList(task.Task.Paths()),
			"failed": task.Failed,
		})
	}
	diagnostics := []interface{}{}
	for _, d := range report.Diagnostics() {
		diagnostics = append(diagnostics, map[string]interface{}{
			"path":     d.Path,
			"line":     d.Line,
			"column":   d.Column,
			"severity": d.Severity.String(),
			"message":  d.Message,
			"tag":      d.Tag,
			"tool":     string(d.Tool),
			"context":  stringList(d.Context),
		})
	}
	s, err := structpb.NewStruct(map[string]interface{}{
		"run_id":        uuid.NewString(),
		"version":       options.Version,
		"build_dir":     report.BuildDir,
		"started_at":    summary.StartedAt.UTC().Format(time.RFC3339),
		"duration_ms":   summary.Duration.Milliseconds(),
		"lines_of_code": summary.LinesOfCode,
		"exit_code":     report.ExitCode(),
		"counts": map[string]interface{}{
			"error":        counts[diagnostic.Error],
			"warning":      counts[diagnostic.Warning],
			"note":         counts[diagnostic.Note],
			"failed_tasks": failed,
		},
		"tasks":       tasks,
		"diagnostics": diagnostics,
	})
	if err != nil {
		return nil, fmt.Errorf("structpb.NewStruct: %v", err)
	}
	return s, nil
}

// Write stores the JSON report of a run in path.
func Write(path string, report *diagnostic.Report, summary Summary) error {
	s, err := NewStruct(report, summary)
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("protojson.Marshal: %v", err)
	}
	err = atomic.Write(path, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	})
	if err != nil {
		return err
	}
	glog.Infof("results written to %s", path)
	return nil
}
