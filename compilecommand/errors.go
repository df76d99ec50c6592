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

import "fmt"

// CatalogError reports a compilation database that is missing, unreadable
// or malformed. Index is the offending record, or -1 for the whole file.
type CatalogError struct {
	Path  string
	Index int
	Err   error
}

func (e *CatalogError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid compilation database `%s': entry %d: %v", e.Path, e.Index, e.Err)
	}
	return fmt.Sprintf("invalid compilation database `%s': %v", e.Path, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

type UnsupportedLanguageError struct {
	Path      string
	Extension string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported source extension %q for %s", e.Extension, e.Path)
}
