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

// Package testdoc builds small PDF documents in memory, for use in tests.
package testdoc

import (
	"bytes"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdfsplit/pagetree"
	"seehuhn.de/go/pdfsplit/pdf"
)

// Doc is a PDF document under construction.
//
// Errors are recorded and reported by [Doc.Bytes], so that test documents
// can be built without checking every call.
type Doc struct {
	// Catalog holds extra entries for the document catalog.
	Catalog pdf.Dict

	// Info, if set, is written as the document information dictionary.
	Info pdf.Dict

	w     *pdf.Writer
	buf   *bytes.Buffer
	pages *pagetree.Writer
	err   error
}

// New starts a new document.
func New() *Doc {
	buf := &bytes.Buffer{}
	w, err := pdf.NewWriter(buf, pdf.V1_7)
	d := &Doc{
		Catalog: pdf.Dict{},
		w:       w,
		buf:     buf,
		err:     err,
	}
	if w != nil {
		d.pages = pagetree.NewWriter(w)
	}
	return d
}

// Alloc allocates a reference for an object which is written later.
func (d *Doc) Alloc() pdf.Reference {
	return d.w.Alloc()
}

// Put writes an object for a reference obtained from Alloc.
func (d *Doc) Put(ref pdf.Reference, obj pdf.Object) {
	if d.err != nil {
		return
	}
	d.err = d.w.Put(ref, obj)
}

// Add writes obj as a new indirect object.
func (d *Doc) Add(obj pdf.Object) pdf.Reference {
	ref := d.w.Alloc()
	d.Put(ref, obj)
	return ref
}

// Stream writes a stream with the given data, without compression.
func (d *Doc) Stream(dict pdf.Dict, data string) pdf.Reference {
	if dict == nil {
		dict = pdf.Dict{}
	}
	return d.Add(&pdf.Stream{Dict: dict, R: bytes.NewReader([]byte(data))})
}

// AddPage appends a page to the document.  If ref is zero, a new reference
// is allocated.  The page reference is returned.
func (d *Doc) AddPage(ref pdf.Reference, dict pdf.Dict) pdf.Reference {
	if ref.IsZero() {
		ref = d.w.Alloc()
	}
	dict = dict.Clone()
	if dict == nil {
		dict = pdf.Dict{}
	}
	dict["Type"] = pdf.Name("Page")
	if d.err == nil {
		d.err = d.pages.AppendPage(ref, dict)
	}
	return ref
}

// Bytes finishes the document and returns the PDF file.
func (d *Doc) Bytes() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	pagesRef, err := d.pages.Close()
	if err != nil {
		return nil, err
	}

	catalog := d.Catalog.Clone()
	catalog["Type"] = pdf.Name("Catalog")
	catalog["Pages"] = pagesRef
	catalogRef := d.Add(catalog)

	var infoRef pdf.Reference
	if d.Info != nil {
		infoRef = d.Add(d.Info)
	}
	if d.err != nil {
		return nil, d.err
	}

	err = d.w.Close(catalogRef, infoRef)
	if err != nil {
		return nil, err
	}
	return d.buf.Bytes(), nil
}

// Open returns a reader for a PDF file held in memory.
func Open(data []byte) (*pdf.Reader, error) {
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)), nil)
}

// Rect converts the corners of a rectangle into a PDF array.
func Rect(llx, lly, urx, ury float64) pdf.Array {
	return pdf.RectArray(rect.Rect{LLx: llx, LLy: lly, URx: urx, URy: ury})
}
