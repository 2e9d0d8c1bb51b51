// seehuhn.de/go/pdfsplit - split two-page scans into single PDF pages
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package batch finds the input files for batch mode and derives the names
// of the output files.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Prefix is prepended to the file name of an input file to get the name of
// the output file.
const Prefix = "split_"

// ErrInvalidPath is returned for paths which do not exist.
var ErrInvalidPath = errors.New("invalid path")

// OutputPath returns the name of the output file for the input file in.
// The output is placed in the same directory as the input.
func OutputPath(in string) string {
	dir, base := filepath.Split(in)
	return filepath.Join(dir, Prefix+base)
}

// Inputs returns the files to process for a path given on the command
// line.  If path is a file, this is the file itself.  If path is a
// directory, this is the list of PDF files in the directory, in
// lexicographic order.  Sub-directories are not searched, and files whose
// name starts with [Prefix] are assumed to be outputs of an earlier run.
func Inputs(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidPath)
	} else if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var res []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() ||
			!strings.EqualFold(filepath.Ext(name), ".pdf") ||
			strings.HasPrefix(name, Prefix) {
			continue
		}
		res = append(res, filepath.Join(path, name))
	}
	return res, nil
}
