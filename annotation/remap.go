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

package annotation

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdfsplit/page"
)

// Remap maps an annotation onto one half of a split page.  If the
// annotation overlaps the half, a copy with clipped and translated geometry
// is returned.  Otherwise the second return value is false.
//
// For annotations which are described by a list of points, overlap is
// decided using the points: quadrilaterals, vertices, end points and ink
// paths.  For all other annotations, the rectangle must overlap the half
// with positive area.  Annotations with a zero-area rectangle belong to the
// half containing the centre of the rectangle.
func Remap(a *Annotation, h *page.Half) (*Annotation, bool) {
	res := &Annotation{
		Index:   a.Index,
		Ref:     a.Ref,
		Kind:    a.Kind,
		Subtype: a.Subtype,
		Dict:    a.Dict,
	}

	var source rect.Rect
	if a.HasPoints() {
		g, ok := clipPoints(&a.Geometry, a.Kind, h)
		if !ok {
			return nil, false
		}
		res.Geometry = g

		var pts []vec.Vec2
		for _, q := range g.Quads {
			pts = append(pts, q[:]...)
		}
		pts = append(pts, g.Vertices...)
		pts = append(pts, g.Line...)
		for _, path := range g.Ink {
			pts = append(pts, path...)
		}
		if clipped, ok := h.Clip(a.Rect); ok {
			source = clipped
		} else {
			// The points overlap the half, but the rectangle does not.
			source = bounds(pts)
		}
	} else if isFlat(a.Rect) {
		if !h.Owns(centre(a.Rect)) {
			return nil, false
		}
		ll := h.Clamp(vec.Vec2{X: a.Rect.LLx, Y: a.Rect.LLy})
		ur := h.Clamp(vec.Vec2{X: a.Rect.URx, Y: a.Rect.URy})
		source = rect.Rect{LLx: ll.X, LLy: ll.Y, URx: ur.X, URy: ur.Y}
	} else {
		clipped, ok := h.Clip(a.Rect)
		if !ok {
			return nil, false
		}
		source = clipped
	}

	if len(a.Callout) > 0 {
		pieces := clipPath(a.Callout, h.Region)
		if len(pieces) > 0 && len(pieces[0]) >= 2 && len(pieces[0]) <= 3 {
			res.Callout = pieces[0]
		}
	}

	res.Source = source
	res.Rect = h.ApplyRect(source)
	translate(&res.Geometry, h)
	return res, true
}

// Follow maps a pop-up annotation onto the half where its parent has been
// placed.  Pop-up windows are often positioned next to the page content;
// if the pop-up rectangle does not overlap the half, the pop-up is placed
// over the rectangle of the remapped parent.
func Follow(popup *Annotation, parent *Annotation, h *page.Half) *Annotation {
	res, ok := Remap(popup, h)
	if ok {
		return res
	}
	return &Annotation{
		Index:    popup.Index,
		Ref:      popup.Ref,
		Kind:     popup.Kind,
		Subtype:  popup.Subtype,
		Geometry: Geometry{Rect: parent.Rect},
		Source:   parent.Source,
		Dict:     popup.Dict,
	}
}

// clipPoints clips the point geometry of an annotation to the region of h.
// Geometry without extent is kept only on the half which owns it.  The
// second return value is false if nothing of the geometry remains.
func clipPoints(g *Geometry, kind Kind, h *page.Half) (Geometry, bool) {
	r := h.Region
	var res Geometry
	visible := false

	for _, q := range g.Quads {
		box := bounds(q[:])
		if _, ok := page.Intersect(box, r); !ok {
			if !isFlat(box) || !h.Owns(centre(box)) {
				continue
			}
		}
		var clamped Quad
		for i, p := range q {
			clamped[i] = clampPoint(p, r)
		}
		res.Quads = append(res.Quads, clamped)
		visible = true
	}

	if len(g.Vertices) > 0 {
		if kind == KindPolygon {
			pts := clipPolygon(g.Vertices, r)
			if len(pts) >= 3 && polygonArea(pts) > 0 {
				res.Vertices = pts
				visible = true
			}
		} else {
			// The pieces are joined by straight lines along the inside
			// of the rectangle.
			var pts []vec.Vec2
			for _, piece := range clipPath(g.Vertices, r) {
				pts = append(pts, piece...)
			}
			pts = dedup(pts)
			if len(pts) >= 2 && pathLength(pts) > 0 {
				res.Vertices = pts
				visible = true
			}
		}
	}

	if len(g.Line) == 2 {
		a, b, ok := clipSegment(g.Line[0], g.Line[1], r)
		if ok && a != b {
			res.Line = []vec.Vec2{a, b}
			visible = true
		}
	}

	for _, path := range g.Ink {
		if len(path) == 1 {
			if h.Owns(path[0]) {
				res.Ink = append(res.Ink, []vec.Vec2{path[0]})
				visible = true
			}
			continue
		}
		for _, piece := range clipPath(path, r) {
			if len(piece) >= 2 && pathLength(piece) > 0 {
				res.Ink = append(res.Ink, piece)
				visible = true
			}
		}
	}

	return res, visible
}

func translate(g *Geometry, h *page.Half) {
	for i := range g.Quads {
		for j := range g.Quads[i] {
			g.Quads[i][j] = h.Apply(g.Quads[i][j])
		}
	}
	applyAll(g.Vertices, h)
	applyAll(g.Line, h)
	applyAll(g.Callout, h)
	for _, path := range g.Ink {
		applyAll(path, h)
	}
}

func applyAll(pts []vec.Vec2, h *page.Half) {
	for i, p := range pts {
		pts[i] = h.Apply(p)
	}
}

func isFlat(r rect.Rect) bool {
	return !(r.URx > r.LLx) || !(r.URy > r.LLy)
}

func centre(r rect.Rect) vec.Vec2 {
	return vec.Vec2{X: (r.LLx + r.URx) / 2, Y: (r.LLy + r.URy) / 2}
}

func clampPoint(v vec.Vec2, r rect.Rect) vec.Vec2 {
	return vec.Vec2{
		X: math.Min(math.Max(v.X, r.LLx), r.URx),
		Y: math.Min(math.Max(v.Y, r.LLy), r.URy),
	}
}
