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
	"io"
	"os"
	"path/filepath"

	"seehuhn.de/go/pdfsplit/pdf"
)

// SplitFile splits the PDF file in and writes the result to the file out.
// The directory containing out is created, if needed.
//
// The output is first written to a temporary file, which is renamed to out
// once the document is complete.  If an error occurs, no output file is
// left behind and an existing file out is not modified.  Errors are of
// type *InputError or *OutputError.
func SplitFile(in, out string, opt *Options) (*Report, error) {
	r, err := pdf.Open(in, nil)
	if err != nil {
		return nil, &InputError{Path: in, Err: err}
	}
	defer r.Close()

	dir := filepath.Dir(out)
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, &OutputError{Path: out, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(out)+".*")
	if err != nil {
		return nil, &OutputError{Path: out, Err: err}
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := &trackingWriter{w: tmp}
	report, err := Assemble(r, w, opt)
	if w.err != nil {
		return report, &OutputError{Path: out, Err: w.err}
	} else if err != nil {
		return report, &InputError{Path: in, Err: err}
	}

	err = tmp.Chmod(0o644)
	if err == nil {
		err = tmp.Close()
	}
	if err == nil {
		err = os.Rename(tmpName, out)
	}
	if err != nil {
		return report, &OutputError{Path: out, Err: err}
	}
	success = true
	return report, nil
}

// trackingWriter records the first write error, so that write errors can
// be told apart from read errors.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (w *trackingWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}
