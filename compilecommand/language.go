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
	"fmt"
	"path/filepath"
)

type Language int

const (
	C Language = iota
	CXX
)

func (l Language) String() string {
	switch l {
	case C:
		return "c"
	case CXX:
		return "c++"
	default:
		return fmt.Sprintf("Language(%d)", int(l))
	}
}

// HeaderExtensions returns the header extensions belonging to the same
// language family, without the leading dot.
func (l Language) HeaderExtensions() []string {
	switch l {
	case C:
		return []string{"h"}
	case CXX:
		return []string{"hh", "hpp", "ipp"}
	default:
		return nil
	}
}

var extMappingLang = map[string]Language{
	".c":   C,
	".cpp": CXX,
	".cc":  CXX,
}

// LanguageOf infers the language of a source file from its extension only.
func LanguageOf(sourcePath string) (Language, error) {
	ext := filepath.Ext(sourcePath)
	lang, ok := extMappingLang[ext]
	if !ok {
		return 0, &UnsupportedLanguageError{Path: sourcePath, Extension: ext}
	}
	return lang, nil
}
