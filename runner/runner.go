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
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/golang/glog"
	"naive.systems/clant/basic"
	"naive.systems/clant/checkers"
)

type TaskResult struct {
	Task AnalysisTask
	checkers.Outcome
}

func (r TaskResult) Failed() bool {
	return r.Err != nil
}

type job struct {
	position int
	task     AnalysisTask
}

type jobResult struct {
	position int
	result   TaskResult
}

// A goroutine workgroup to run analysis tasks in parallel.
type ParaTaskRunner struct {
	numWorkers     int
	executor       Executor
	processPrinter *basic.CheckingProcessPrinter
}

// NewParaTaskRunner creates a runner with numWorkers workers, or one per CPU
// when numWorkers is not positive. processPrinter may be nil.
func NewParaTaskRunner(numWorkers int, executor Executor, processPrinter *basic.CheckingProcessPrinter) *ParaTaskRunner {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &ParaTaskRunner{
		numWorkers:     numWorkers,
		executor:       executor,
		processPrinter: processPrinter,
	}
}

func (pt *ParaTaskRunner) worker(ctx context.Context, jobs <-chan job, results chan<- jobResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		if ctx.Err() != nil {
			// drain without running so the producer never blocks
			continue
		}
		results <- jobResult{position: j.position, result: pt.runTask(ctx, j.task)}
	}
}

func (pt *ParaTaskRunner) runTask(ctx context.Context, task AnalysisTask) (result TaskResult) {
	if pt.processPrinter != nil {
		pt.processPrinter.StartTask(task.Index, task.Name())
		defer pt.processPrinter.FinishTask(task.Index, task.Name())
	}
	defer func() {
		// recover from possible panic
		if r := recover(); r != nil {
			glog.Error("Recovered in task: ", r, string(debug.Stack()))
			result = TaskResult{
				Task:    task,
				Outcome: checkers.Outcome{ExitCode: -1, Err: &TaskExecutionError{Command: task.Invocation.Bin, Err: fmt.Errorf("panic: %v", r)}},
			}
		}
	}()
	outcome := pt.executor.Execute(ctx, task.Invocation)
	if outcome.Err != nil {
		glog.Errorf("%s got error %v", task.Name(), outcome.Err)
	}
	return TaskResult{Task: task, Outcome: outcome}
}

// Run executes all tasks and returns their results in the order of tasks,
// whatever order they finished in. A failing task never stops the others.
// If ctx is cancelled, running processes are killed, queued tasks are
// dropped and only the context error is returned.
func (pt *ParaTaskRunner) Run(ctx context.Context, tasks []AnalysisTask) ([]TaskResult, error) {
	numWorkers := pt.numWorkers
	if numWorkers > len(tasks) {
		numWorkers = len(tasks)
	}
	jobs := make(chan job, numWorkers)
	results := make(chan jobResult, numWorkers)
	var workerWg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		workerWg.Add(1)
		go pt.worker(ctx, jobs, results, &workerWg)
	}
	go func() {
		defer close(jobs)
		for i, task := range tasks {
			select {
			case jobs <- job{position: i, task: task}:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		workerWg.Wait()
		close(results)
	}()

	collected := make([]TaskResult, len(tasks))
	for r := range results {
		collected[r.position] = r.result
	}
	if err := ctx.Err(); err != nil {
		glog.Warningf("analysis interrupted: %v", err)
		return nil, err
	}
	return collected, nil
}
