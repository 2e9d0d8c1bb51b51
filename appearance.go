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
	"math"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdfsplit/pdf"
)

// PDF 2.0 sections: 12.5.5

// wrapAppearance copies the appearance dictionary of an annotation whose
// rectangle orig has been clipped to clip.  A viewer scales the appearance
// streams to fill the annotation rectangle.  To avoid this, every
// appearance stream is replaced by a form XObject with bounding box clip,
// which draws the original appearance at its original position.
func (s *Splitter) wrapAppearance(ap pdf.Object, orig, clip rect.Rect) (pdf.Object, error) {
	dict, err := pdf.GetDict(s.r, ap)
	if err != nil || dict == nil {
		return nil, err
	}

	res := pdf.Dict{}
	for _, key := range pdf.SortedKeys(dict) {
		val, err := s.wrapEntry(dict[key], orig, clip, true)
		if err != nil {
			return nil, err
		}
		if val != nil {
			res[key] = val
		}
	}
	return res, nil
}

// wrapEntry wraps one entry of an appearance dictionary.  This is either
// an appearance stream or, if states is set, a dictionary which maps
// appearance states to appearance streams.
func (s *Splitter) wrapEntry(obj pdf.Object, orig, clip rect.Rect, states bool) (pdf.Object, error) {
	ref, isRef := obj.(pdf.Reference)
	val, err := pdf.Resolve(s.r, obj)
	if err != nil {
		return nil, err
	}

	switch val := val.(type) {
	case *pdf.Stream:
		if !isRef {
			return nil, nil
		}
		return s.wrapForm(ref, val.Dict, orig, clip)
	case pdf.Dict:
		if !states {
			return nil, nil
		}
		res := pdf.Dict{}
		for _, key := range pdf.SortedKeys(val) {
			repl, err := s.wrapEntry(val[key], orig, clip, false)
			if err != nil {
				return nil, err
			}
			if repl != nil {
				res[key] = repl
			}
		}
		return res, nil
	}
	return nil, nil
}

// wrapForm returns a reference to a new form XObject which draws the form
// XObject ref, mapped to the rectangle orig, clipped to clip.
func (s *Splitter) wrapForm(ref pdf.Reference, form pdf.Dict, orig, clip rect.Rect) (pdf.Object, error) {
	bbox, err := pdf.GetRectangle(s.r, form["BBox"])
	if err != nil || bbox == nil {
		return s.c.Copy(ref)
	}
	M := matrix.Identity
	if xx, _ := pdf.GetFloatArray(s.r, form["Matrix"]); len(xx) == 6 {
		copy(M[:], xx)
	}

	// Section 12.5.5 of PDF 2.0: the bounding box, transformed by the form
	// matrix, is mapped onto the annotation rectangle.
	box := transformBox(*bbox, M)
	if !(box.Dx() > 0 && box.Dy() > 0) {
		return s.c.Copy(ref)
	}
	sx := orig.Dx() / box.Dx()
	sy := orig.Dy() / box.Dy()
	tx := orig.LLx - sx*box.LLx
	ty := orig.LLy - sy*box.LLy

	inner, err := s.c.CopyReference(ref)
	if err != nil || inner == nil {
		return nil, err
	}

	content := fmt.Sprintf("q %s 0 0 %s %s %s cm /Fm0 Do Q\n",
		formatNum(sx), formatNum(sy), formatNum(tx), formatNum(ty))
	wrapper := &pdf.Stream{
		Dict: pdf.Dict{
			"Type":    pdf.Name("XObject"),
			"Subtype": pdf.Name("Form"),
			"BBox":    pdf.RectArray(clip),
			"Resources": pdf.Dict{
				"XObject": pdf.Dict{"Fm0": inner},
			},
		},
		R: strings.NewReader(content),
	}
	wrapperRef := s.out.Alloc()
	err = s.out.Put(wrapperRef, wrapper)
	if err != nil {
		return nil, err
	}
	return wrapperRef, nil
}

// transformBox returns the bounding box of the image of r under M.
func transformBox(r rect.Rect, M matrix.Matrix) rect.Rect {
	res := rect.Rect{
		LLx: math.Inf(1), LLy: math.Inf(1),
		URx: math.Inf(-1), URy: math.Inf(-1),
	}
	for _, x := range []float64{r.LLx, r.URx} {
		for _, y := range []float64{r.LLy, r.URy} {
			res.Add(M.Apply(x, y))
		}
	}
	return res
}

func formatNum(x float64) string {
	return strconv.FormatFloat(pdf.Round(x, 4), 'f', -1, 64)
}
