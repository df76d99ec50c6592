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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"naive.systems/clant/basic"
	"naive.systems/clant/compilecommand"
	"naive.systems/clant/diagnostic"
	"naive.systems/clant/headers"
	"naive.systems/clant/i18n"
	"naive.systems/clant/mapping"
	"naive.systems/clant/options"
	"naive.systems/clant/results"
	"naive.systems/clant/runner"
	"naive.systems/clant/stats"
)

func fatal(err error) int {
	glog.Error(err)
	fmt.Fprintf(os.Stderr, "clant: error: %v\n", err)
	return 1
}

// countLines counts the code lines of the analyzed sources and of the
// project headers of their languages.
func countLines(tasks []runner.AnalysisTask, resolver *headers.Resolver) int {
	paths := []string{}
	languages := map[compilecommand.Language]struct{}{}
	for _, task := range tasks {
		paths = append(paths, task.Paths()...)
		if task.Command == nil {
			continue
		}
		if _, ok := languages[task.Command.Language]; ok {
			continue
		}
		languages[task.Command.Language] = struct{}{}
		autoHeaders, err := resolver.ResolveAutoHeaders(*task.Command)
		if err != nil {
			basic.Warnf("failed to list headers: %v", err)
			continue
		}
		paths = append(paths, autoHeaders...)
	}
	linesOfCode, err := stats.CountLines(paths)
	if err != nil {
		basic.Warnf("failed to count lines: %v", err)
	}
	return linesOfCode
}

func flagGiven(name string) bool {
	given := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			given = true
		}
	})
	return given
}

func main() {
	cl := options.NewCommandLine(flag.CommandLine)
	if err := cl.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "clant: error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cl, nil, os.Stdout)
	stop()
	os.Exit(code)
}

// run performs one analysis and returns the exit code. The report goes to
// stdout. A nil executor runs the tools as child processes. Cancelling ctx
// interrupts the run.
func run(ctx context.Context, cl *options.CommandLine, executor runner.Executor, stdout io.Writer) int {
	defer glog.Flush()

	if cl.ShowVersion {
		fmt.Fprintf(stdout, "Clant %s\n", options.Version)
		return 0
	}

	cliOptions := cl.Options()
	buildDir := options.Defaults.BuildDir
	if cliOptions.BuildDir != nil {
		buildDir = *cliOptions.BuildDir
	}
	projectDir, err := options.ProjectDir(buildDir)
	if err != nil {
		return fatal(err)
	}
	fileOptions, configPath, err := options.LoadConfigFile(projectDir)
	if err != nil {
		return fatal(err)
	}
	config, err := options.NewRunConfig(options.Merge(cliOptions, fileOptions), projectDir)
	if err != nil {
		return fatal(err)
	}

	if !config.Verbose && !flagGiven("stderrthreshold") {
		if err := flag.Set("stderrthreshold", "FATAL"); err != nil {
			glog.Warningf("failed to set default stderrthreshold: %v", err)
		}
	}
	if !i18n.Supported(config.Lang) {
		basic.Warnf("unsupported language `%s', using en", config.Lang)
	}
	printer := i18n.GetPrinter(config.Lang)
	glog.Infof("run config: %+v", *config)
	if configPath != "" && config.Verbose {
		basic.PrintfWithTimeStamp("%s", printer.Sprintf("Loaded configuration from %s", configPath))
	}

	commands, err := compilecommand.Load(config.CompileCommandsPath())
	if err != nil {
		return fatal(err)
	}
	var mappingFiles []string
	if config.Iwyu {
		locator := mapping.NewLocator(config.ProjectDir, config.IwyuBin)
		mappingFiles, err = locator.ResolveAll(config.MappingFiles)
		if err != nil {
			return fatal(err)
		}
	}
	resolver := headers.NewResolver(config.ProjectDir, config.BuildDir, config.Exclude, commands)
	tasks, err := runner.BuildTasks(config, commands, resolver, mappingFiles)
	if err != nil {
		return fatal(err)
	}

	linesOfCode := 0
	if config.Verbose || config.JsonResults != "" {
		linesOfCode = countLines(tasks, resolver)
	}

	var processPrinter *basic.CheckingProcessPrinter
	if config.Verbose {
		processPrinter = basic.NewCheckingProcessPrinter(len(tasks), printer)
		basic.PrintfWithTimeStamp("%s", printer.Sprintf("%d tasks scheduled on %d workers", len(tasks), config.Jobs))
		basic.PrintfWithTimeStamp("%s", printer.Sprintf("Analyzing %d lines of code", linesOfCode))
	}

	if executor == nil {
		executor = runner.ProcessExecutor{Verbose: config.Verbose}
	}
	start := time.Now()
	taskRunner := runner.NewParaTaskRunner(config.Jobs, executor, processPrinter)
	taskResults, err := taskRunner.Run(ctx, tasks)
	if err != nil {
		fmt.Fprintln(os.Stderr, "clant: error: interrupted")
		return 1
	}
	duration := time.Since(start)

	report := diagnostic.Aggregate(config.BuildDir, taskResults)
	if err := report.Write(stdout); err != nil {
		return fatal(fmt.Errorf("failed to write report: %v", err))
	}

	if config.Verbose {
		counts, failed := report.Counts()
		basic.PrintfWithTimeStamp("%s", printer.Sprintf("%d errors, %d warnings, %d notes", counts[diagnostic.Error], counts[diagnostic.Warning], counts[diagnostic.Note]))
		if failed > 0 {
			basic.PrintfWithTimeStamp("%s", printer.Sprintf("%d tasks failed", failed))
		}
		basic.PrintfWithTimeStamp("%s", printer.Sprintf("Finished analysis in %s", basic.FormatTimeDuration(duration)))
	}

	if config.JsonResults != "" {
		summary := results.Summary{StartedAt: start, Duration: duration, LinesOfCode: linesOfCode}
		if err := results.Write(config.JsonResults, report, summary); err != nil {
			return fatal(err)
		}
		if config.Verbose {
			basic.PrintfWithTimeStamp("%s", printer.Sprintf("Results written to %s", config.JsonResults))
		}
	}
	return report.ExitCode()
}
