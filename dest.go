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
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdfsplit/pdf"
)

// PDF 2.0 sections: 12.3.2.2

// destCoords gives, for each type of explicit destination, which of the
// parameters following the type name are x coordinates (true) and which
// are y coordinates (false).
var destCoords = map[pdf.Name][]bool{
	"XYZ":   {true, false},
	"Fit":   {},
	"FitH":  {false},
	"FitV":  {true},
	"FitR":  {true, false, true, false},
	"FitB":  {},
	"FitBH": {false},
	"FitBV": {true},
}

// rewriteDest is used as the Rewrite function of the copier.  Explicit
// destinations which point into a split page are changed to point to the
// half which contains the destination, and the coordinates are moved into
// the coordinate system of the new page.
//
// Objects belonging to the structure tree are replaced by null.
func (s *Splitter) rewriteDest(obj pdf.Object) (pdf.Object, bool, error) {
	switch x := obj.(type) {
	case pdf.Dict:
		tp, _ := x["Type"].(pdf.Name)
		if tp == "StructElem" || tp == "StructTreeRoot" {
			return nil, true, nil
		}
	case pdf.Array:
		if len(x) < 2 {
			return nil, false, nil
		}
		ref, ok := x[0].(pdf.Reference)
		if !ok {
			return nil, false, nil
		}
		tp, ok := x[1].(pdf.Name)
		if !ok {
			return nil, false, nil
		}
		coords, isDest := destCoords[tp]
		pl := s.byRef[ref]
		if !isDest || pl == nil {
			return nil, false, nil
		}
		res, err := s.mapDest(pl, coords, x)
		return res, err == nil, err
	}
	return nil, false, nil
}

// mapDest converts the explicit destination dest on a page of the input
// into a destination on one of the two new pages.
func (s *Splitter) mapDest(pl *plan, coords []bool, dest pdf.Array) (pdf.Array, error) {
	side := 0
	for i, isX := range coords {
		if x, ok := destCoord(dest, i+2); ok && isX {
			if x >= pl.halves[0].Midpoint {
				side = 1
			}
			break
		}
	}
	h := &pl.halves[side]

	res := make(pdf.Array, len(dest))
	res[0] = pl.refs[side]
	res[1] = dest[1]
	for i := 2; i < len(dest); i++ {
		k := i - 2
		v, ok := destCoord(dest, i)
		if k >= len(coords) || !ok {
			repl, err := s.c.Copy(dest[i])
			if err != nil {
				return nil, err
			}
			res[i] = repl
			continue
		}

		var p vec.Vec2
		if coords[k] {
			p = h.Apply(h.Clamp(vec.Vec2{X: v, Y: h.Region.LLy}))
			v = p.X
		} else {
			p = h.Apply(vec.Vec2{X: h.Region.LLx, Y: v})
			v = p.Y
		}
		res[i] = pdf.Number(pdf.Round(v, 3))
	}
	return res, nil
}

// destCoord returns the numeric parameter at position i of a destination.
// The second return value is false for null parameters.
func destCoord(dest pdf.Array, i int) (float64, bool) {
	if i >= len(dest) {
		return 0, false
	}
	switch x := dest[i].(type) {
	case pdf.Integer:
		return float64(x), true
	case pdf.Real:
		return float64(x), true
	}
	return 0, false
}
