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

// Package page decodes PDF page objects and computes the geometry used to
// split a page into a left and a right half.
package page

import (
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdfsplit/pdf"
)

// Page represents a PDF page object, as far as needed to split the page.
// Inheritable attributes must already be filled in, as done by the pagetree
// package.
type Page struct {
	// Ref is the reference of the page dictionary in the source file.
	Ref pdf.Reference

	// MediaBox (inheritable) defines the boundaries of the physical medium
	// on which the page is displayed or printed.  This is nil if the page
	// has no valid media box.
	MediaBox *rect.Rect

	// CropBox (optional; inheritable) defines the visible region of the
	// page.
	CropBox *rect.Rect

	// BleedBox, TrimBox and ArtBox (optional) are the remaining page
	// boundaries.
	BleedBox *rect.Rect
	TrimBox  *rect.Rect
	ArtBox   *rect.Rect

	// Rotate (optional; inheritable) specifies clockwise rotation in
	// degrees, normalized to 0, 90, 180 or 270.
	Rotate int

	// Contents holds the /Contents entry: a content stream reference or an
	// array of such references.
	Contents pdf.Object

	// Annots lists the annotations of the page, in order.  Elements are
	// usually references to annotation dictionaries.
	Annots pdf.Array

	// Dict is the page dictionary.
	Dict pdf.Dict
}

// Decode reads the page object dict.
// Malformed page boundaries are treated as missing.
func Decode(r pdf.Getter, ref pdf.Reference, dict pdf.Dict) (*Page, error) {
	p := &Page{
		Ref:      ref,
		Dict:     dict,
		Contents: dict["Contents"],
	}

	p.MediaBox, _ = pdf.GetRectangle(r, dict["MediaBox"])
	p.CropBox, _ = pdf.GetRectangle(r, dict["CropBox"])
	p.BleedBox, _ = pdf.GetRectangle(r, dict["BleedBox"])
	p.TrimBox, _ = pdf.GetRectangle(r, dict["TrimBox"])
	p.ArtBox, _ = pdf.GetRectangle(r, dict["ArtBox"])

	if rot, err := pdf.GetInt(r, dict["Rotate"]); err == nil && rot%90 == 0 {
		p.Rotate = int((rot%360 + 360) % 360)
	}

	annots, err := pdf.GetArray(r, dict["Annots"])
	if err != nil {
		return nil, err
	}
	p.Annots = annots

	return p, nil
}
