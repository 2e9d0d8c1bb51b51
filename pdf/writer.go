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

package pdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Writer represents a PDF file open for writing.
//
// Objects are written to the output as soon as they are passed to Put().
// The cross-reference table and the trailer are written by Close().
type Writer struct {
	// Version is the PDF version written into the file header.
	Version Version

	// ID, if set, is written into the file trailer.  This must be either
	// nil or a slice of two byte slices.
	ID [][]byte

	w       *posWriter
	buf     *bufio.Writer
	xref    map[uint32]*xRefEntry
	nextRef uint32
	closed  bool
}

// NewWriter prepares a PDF file for writing.
func NewWriter(w io.Writer, ver Version) (*Writer, error) {
	verString, err := ver.ToString()
	if err != nil {
		return nil, err
	}

	buf := bufio.NewWriter(w)
	pdf := &Writer{
		Version: ver,

		w:       &posWriter{w: buf},
		buf:     buf,
		nextRef: 1,
		xref:    make(map[uint32]*xRefEntry),
	}

	_, err = fmt.Fprintf(pdf.w, "%%PDF-%s\n%%\x80\x80\x80\x80\n", verString)
	if err != nil {
		return nil, err
	}

	return pdf, nil
}

// Alloc allocates an object number for an indirect object.
func (pdf *Writer) Alloc() Reference {
	res := NewReference(pdf.nextRef, 0)
	pdf.nextRef++
	return res
}

// Put writes an object to the PDF file, as an indirect object.  The
// reference must have been obtained from Alloc() and can only be used once.
// Writing a nil object leaves the reference unused.
func (pdf *Writer) Put(ref Reference, obj Object) error {
	if pdf.closed {
		return errors.New("pdf: write after close")
	}
	if ref.Number == 0 || ref.Number >= pdf.nextRef {
		return fmt.Errorf("pdf: reference %s was not allocated", ref)
	}
	if _, seen := pdf.xref[ref.Number]; seen {
		return fmt.Errorf("pdf: object %s already written", ref)
	}
	if obj == nil {
		// missing objects are treated as null
		return nil
	}

	pos := pdf.w.pos
	_, err := fmt.Fprintf(pdf.w, "%d %d obj\n", ref.Number, ref.Generation)
	if err != nil {
		return err
	}
	err = obj.PDF(pdf.w)
	if err != nil {
		return err
	}
	_, err = io.WriteString(pdf.w, "\nendobj\n")
	if err != nil {
		return err
	}

	pdf.xref[ref.Number] = &xRefEntry{Pos: pos, Generation: ref.Generation}
	return nil
}

// Close writes the cross-reference table and the file trailer and flushes
// all buffered data.  The underlying io.Writer is not closed.
func (pdf *Writer) Close(catalog Reference, info Reference) error {
	if pdf.closed {
		return errors.New("pdf: writer already closed")
	}
	if catalog.IsZero() {
		return errors.New("pdf: missing document catalog")
	}
	pdf.closed = true

	trailer := Dict{
		"Size": Integer(pdf.nextRef),
		"Root": catalog,
	}
	if !info.IsZero() {
		trailer["Info"] = info
	}
	if len(pdf.ID) == 2 {
		trailer["ID"] = Array{String(pdf.ID[0]), String(pdf.ID[1])}
	}

	xRefPos := pdf.w.pos
	err := pdf.writeXRefTable()
	if err != nil {
		return err
	}

	_, err = io.WriteString(pdf.w, "trailer\n")
	if err != nil {
		return err
	}
	err = trailer.PDF(pdf.w)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(pdf.w, "\nstartxref\n%d\n%%%%EOF\n", xRefPos)
	if err != nil {
		return err
	}

	return pdf.buf.Flush()
}

func (pdf *Writer) writeXRefTable() error {
	_, err := fmt.Fprintf(pdf.w, "xref\n0 %d\n", pdf.nextRef)
	if err != nil {
		return err
	}
	for i := uint32(0); i < pdf.nextRef; i++ {
		entry := pdf.xref[i]
		if entry != nil {
			_, err = fmt.Fprintf(pdf.w, "%010d %05d n\r\n",
				entry.Pos, entry.Generation)
		} else if i == 0 {
			_, err = io.WriteString(pdf.w, "0000000000 65535 f\r\n")
		} else {
			_, err = io.WriteString(pdf.w, "0000000000 00000 f\r\n")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}
