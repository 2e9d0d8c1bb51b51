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

package pdfsplit

import (
	"fmt"

	"seehuhn.de/go/pdfsplit/annotation"
	"seehuhn.de/go/pdfsplit/page"
)

var (
	// ErrDegenerateGeometry is recorded for pages with no visible area.
	// Such pages are left out of the output.
	ErrDegenerateGeometry = page.ErrDegenerateGeometry

	// ErrAnnotationOutOfBounds is recorded for annotations which overlap
	// neither half of their page.
	ErrAnnotationOutOfBounds = annotation.ErrOutOfBounds

	// ErrAnnotationInvalid is recorded for annotations which cannot be
	// decoded.
	ErrAnnotationInvalid = annotation.ErrInvalid
)

// InputError is returned if the input document cannot be read.
// Use errors.Is(err, fs.ErrNotExist) to check for a missing input file.
type InputError struct {
	Path string
	Err  error
}

func (err *InputError) Error() string {
	if err.Path == "" {
		return "cannot read input: " + err.Err.Error()
	}
	return fmt.Sprintf("cannot read %q: %s", err.Path, err.Err)
}

func (err *InputError) Unwrap() error {
	return err.Err
}

// OutputError is returned if the output document cannot be written.
// If SplitFile returns an OutputError, no output file is left behind.
type OutputError struct {
	Path string
	Err  error
}

func (err *OutputError) Error() string {
	if err.Path == "" {
		return "cannot write output: " + err.Err.Error()
	}
	return fmt.Sprintf("cannot write %q: %s", err.Path, err.Err)
}

func (err *OutputError) Unwrap() error {
	return err.Err
}
