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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/golang/glog"
	"naive.systems/clant/basic"
	"naive.systems/clant/checkers"
)

// TaskExecutionError is recorded when a tool could not be started or did
// not exit on its own.
type TaskExecutionError struct {
	Command string
	Err     error
}

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *TaskExecutionError) Unwrap() error {
	return e.Err
}

type Executor interface {
	Execute(ctx context.Context, invocation checkers.Invocation) checkers.Outcome
}

// ProcessExecutor runs invocations as child processes. Cancelling ctx kills
// the child.
type ProcessExecutor struct {
	Verbose bool
}

func (p ProcessExecutor) Execute(ctx context.Context, invocation checkers.Invocation) checkers.Outcome {
	if p.Verbose {
		basic.PrintfWithTimeStamp("%s", invocation.String())
	}
	glog.V(1).Infof("running in %s: %s", invocation.Dir, invocation.String())
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, invocation.Bin, invocation.Args...)
	cmd.Dir = invocation.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	outcome := checkers.Outcome{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return outcome
	}
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		outcome.ExitCode = -1
		outcome.Err = &TaskExecutionError{Command: invocation.Bin, Err: ctx.Err()}
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		outcome.ExitCode = exitErr.ExitCode()
	case errors.As(err, &exitErr):
		outcome.ExitCode = -1
		outcome.Err = &TaskExecutionError{Command: invocation.Bin, Err: fmt.Errorf("terminated: %v", exitErr.ProcessState)}
	default:
		outcome.ExitCode = -1
		outcome.Err = &TaskExecutionError{Command: invocation.Bin, Err: err}
	}
	return outcome
}
