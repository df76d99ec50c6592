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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"naive.systems/clant/checkers"
)

type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

var severityMap = map[string]Severity{
	"note":        Note,
	"remark":      Note,
	"warning":     Warning,
	"error":       Error,
	"fatal error": Error,
}

// Diagnostic is one finding. Context holds the lines the tool printed after
// it (code excerpt, caret, include line to add...).
type Diagnostic struct {
	Path     string
	Line     int
	Column   int
	Severity Severity
	Message  string
	Tag      string
	Tool     checkers.Tool
	Context  []string
}

// Header renders the first line of the diagnostic. Severities that were
// folded (fatal error, remark) are written back in canonical form.
func (d Diagnostic) Header() string {
	header := fmt.Sprintf("%s:%d:%d: %s: %s", d.Path, d.Line, d.Column, d.Severity, d.Message)
	if d.Tag != "" {
		header += " [" + d.Tag + "]"
	}
	return header
}

func (d Diagnostic) key() string {
	parts := append([]string{d.Header(), string(d.Tool)}, d.Context...)
	return strings.Join(parts, "\x00")
}

type DiagnosticParseError struct {
	Line   string
	Reason string
}

func (e *DiagnosticParseError) Error() string {
	return fmt.Sprintf("malformed diagnostic (%s): %q", e.Reason, e.Line)
}

var (
	diagnosticRe = regexp.MustCompile(`^(.+?):(\d+):(\d+): (note|remark|warning|error|fatal error): (.*?)(?: \[([^\[\]]+)\])?$`)
	// A line naming a severity after a colon but not matching diagnosticRe.
	markerRe = regexp.MustCompile(`^\S.*?:\S*: (note|remark|warning|error|fatal error): `)
)

// ParseLine parses a path:line:col: severity: message [tag] line. It returns
// nil and no error for ordinary lines, and a *DiagnosticParseError for lines
// that carry a severity marker but no valid location.
func ParseLine(line string, tool checkers.Tool) (*Diagnostic, error) {
	m := diagnosticRe.FindStringSubmatch(line)
	if m == nil {
		if markerRe.MatchString(line) {
			return nil, &DiagnosticParseError{Line: line, Reason: "invalid location"}
		}
		return nil, nil
	}
	lineNumber, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, &DiagnosticParseError{Line: line, Reason: err.Error()}
	}
	column, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, &DiagnosticParseError{Line: line, Reason: err.Error()}
	}
	return &Diagnostic{
		Path:     m[1],
		Line:     lineNumber,
		Column:   column,
		Severity: severityMap[m[4]],
		Message:  m[5],
		Tag:      m[6],
		Tool:     tool,
	}, nil
}
