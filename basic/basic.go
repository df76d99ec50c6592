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

/*
This package should not import any other package of this module to
avoid recursive import.
*/
package basic

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/message"
)

// Progress and warnings go to stderr so they never mix with the report.
var ProgressWriter io.Writer = os.Stderr

func PrintfWithTimeStamp(format string, arg ...any) {
	prefix := fmt.Sprintf("%v ", time.Now().Format("2006-01-02 15:04:05"))
	message := fmt.Sprintf(prefix+format, arg...)
	fmt.Fprintln(ProgressWriter, message)
	glog.Info(message)
}

func Infof(format string, arg ...any) {
	message := fmt.Sprintf(format, arg...)
	fmt.Fprintf(ProgressWriter, "clant: %s\n", message)
	glog.Info(message)
}

// Warnf reports a problem the user should see but that does not stop the run.
func Warnf(format string, arg ...any) {
	message := fmt.Sprintf(format, arg...)
	fmt.Fprintf(ProgressWriter, "clant: warning: %s\n", message)
	glog.Warning(message)
}

func GetPercentString(v1, v2 int) string {
	if v2 == 0 {
		return "100%"
	}
	percent := (int)((v1 * 100) / v2)
	return fmt.Sprintf("%d%%", percent)
}

func FormatTimeDuration(d time.Duration) string {
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	if ms == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return strings.TrimRight(fmt.Sprintf("%d.%03d", s, ms), "0") + "s"
}

// print checking process serialized, goroutine safe
type CheckingProcessPrinter struct {
	mutex         sync.Mutex
	startedAt     time.Time
	timeElapsed   map[int]time.Time
	startTaskNum  int
	finishTaskNum int
	totalTaskNum  int
	printer       *message.Printer
}

func NewCheckingProcessPrinter(totalTaskNum int, printer *message.Printer) *CheckingProcessPrinter {
	return &CheckingProcessPrinter{
		totalTaskNum: totalTaskNum,
		timeElapsed:  make(map[int]time.Time),
		startedAt:    time.Now(),
		printer:      printer,
	}
}

// Called before a task starts.
func (c *CheckingProcessPrinter) StartTask(id int, name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.startTaskNum++
	PrintfWithTimeStamp("%s", c.printer.Sprintf("Start %s (%v/%v)", name, c.startTaskNum, c.totalTaskNum))
	c.timeElapsed[id] = time.Now()
}

// Called after a task finished, whatever its outcome.
func (c *CheckingProcessPrinter) FinishTask(id int, name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	elapsed := time.Since(c.timeElapsed[id])
	delete(c.timeElapsed, id)
	c.finishTaskNum++
	percent := GetPercentString(c.finishTaskNum, c.totalTaskNum)
	timeUsed := FormatTimeDuration(elapsed)
	PrintfWithTimeStamp("%s", c.printer.Sprintf("Finished %s (%s, %v/%v) [%s]", name, percent, c.finishTaskNum, c.totalTaskNum, timeUsed))
}

func (c *CheckingProcessPrinter) GetPercentString() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return GetPercentString(c.finishTaskNum, c.totalTaskNum)
}

func (c *CheckingProcessPrinter) GetStartedAt() time.Time {
	return c.startedAt
}

// ResolveBinaryPath returns an absolute path for binPath, or binPath itself if
// it is found in $PATH.
func ResolveBinaryPath(binPath string) (string, error) {
	if filepath.IsAbs(binPath) {
		if _, err := os.Stat(binPath); err != nil {
			return binPath, fmt.Errorf("when resolving %s, os.Stat failed: %v", binPath, err)
		}
		return binPath, nil
	}
	// exec.LookPath will silently allow relative path, so we manually check it.
	if strings.Contains(binPath, string(filepath.Separator)) {
		absBinPath, err := filepath.Abs(binPath)
		if err != nil {
			return binPath, fmt.Errorf("when resolving %s, failed to convert to abs path: %v", binPath, err)
		}
		if _, err := os.Stat(absBinPath); err != nil {
			return absBinPath, fmt.Errorf("when resolving %s, os.Stat failed: %v", binPath, err)
		}
		return absBinPath, nil
	}
	found, err := exec.LookPath(binPath)
	if err != nil {
		return binPath, fmt.Errorf("when resolving %s, not found in $PATH: %v", binPath, err)
	}
	return found, nil
}

// ShellJoin quotes args the way a POSIX shell would need them to be typed.
func ShellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("@%+=:,./-_", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
