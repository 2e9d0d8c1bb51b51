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
)

// clipSegment clips the line segment from a to b to the rectangle r, using
// the Liang-Barsky algorithm.
func clipSegment(a, b vec.Vec2, r rect.Rect) (vec.Vec2, vec.Vec2, bool) {
	t0, t1 := 0.0, 1.0
	dx := b.X - a.X
	dy := b.Y - a.Y

	// p*t <= q for each of the four boundaries
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{a.X - r.LLx, r.URx - a.X, a.Y - r.LLy, r.URy - a.Y}
	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return vec.Vec2{}, vec.Vec2{}, false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			if t > t1 {
				return vec.Vec2{}, vec.Vec2{}, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return vec.Vec2{}, vec.Vec2{}, false
			}
			t1 = math.Min(t1, t)
		}
	}

	ca := a
	if t0 > 0 {
		ca = vec.Vec2{X: a.X + t0*dx, Y: a.Y + t0*dy}
	}
	cb := b
	if t1 < 1 {
		cb = vec.Vec2{X: a.X + t1*dx, Y: a.Y + t1*dy}
	}
	return ca, cb, true
}

// clipPath clips an open path to the rectangle r.  Vertices outside the
// rectangle are removed and the points where the path crosses the boundary
// are inserted.  If the path leaves and re-enters the rectangle, the result
// consists of several pieces.
func clipPath(pts []vec.Vec2, r rect.Rect) [][]vec.Vec2 {
	if len(pts) == 1 {
		if inside(pts[0], r) {
			return [][]vec.Vec2{{pts[0]}}
		}
		return nil
	}

	var res [][]vec.Vec2
	var cur []vec.Vec2
	for i := 0; i+1 < len(pts); i++ {
		a, b, ok := clipSegment(pts[i], pts[i+1], r)
		if !ok {
			if len(cur) > 0 {
				res = append(res, cur)
				cur = nil
			}
			continue
		}
		if len(cur) > 0 && cur[len(cur)-1] != a {
			res = append(res, cur)
			cur = nil
		}
		if len(cur) == 0 {
			cur = append(cur, a)
		}
		if b != cur[len(cur)-1] {
			cur = append(cur, b)
		}
	}
	if len(cur) > 0 {
		res = append(res, cur)
	}
	return res
}

// clipPolygon clips a closed polygon to the rectangle r, using the
// Sutherland-Hodgman algorithm.
func clipPolygon(pts []vec.Vec2, r rect.Rect) []vec.Vec2 {
	type edge struct {
		inside    func(vec.Vec2) bool
		intersect func(a, b vec.Vec2) vec.Vec2
	}
	atX := func(x float64) func(a, b vec.Vec2) vec.Vec2 {
		return func(a, b vec.Vec2) vec.Vec2 {
			t := (x - a.X) / (b.X - a.X)
			return vec.Vec2{X: x, Y: a.Y + t*(b.Y-a.Y)}
		}
	}
	atY := func(y float64) func(a, b vec.Vec2) vec.Vec2 {
		return func(a, b vec.Vec2) vec.Vec2 {
			t := (y - a.Y) / (b.Y - a.Y)
			return vec.Vec2{X: a.X + t*(b.X-a.X), Y: y}
		}
	}
	edges := []edge{
		{func(v vec.Vec2) bool { return v.X >= r.LLx }, atX(r.LLx)},
		{func(v vec.Vec2) bool { return v.X <= r.URx }, atX(r.URx)},
		{func(v vec.Vec2) bool { return v.Y >= r.LLy }, atY(r.LLy)},
		{func(v vec.Vec2) bool { return v.Y <= r.URy }, atY(r.URy)},
	}

	out := pts
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = nil
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur) && e.inside(prev):
				out = append(out, cur)
			case e.inside(cur):
				out = append(out, e.intersect(prev, cur), cur)
			case e.inside(prev):
				out = append(out, e.intersect(prev, cur))
			}
			prev = cur
		}
	}
	return dedup(out)
}

// dedup removes consecutive duplicate points.
func dedup(pts []vec.Vec2) []vec.Vec2 {
	var res []vec.Vec2
	for i, p := range pts {
		if i > 0 && p == res[len(res)-1] {
			continue
		}
		res = append(res, p)
	}
	return res
}

func inside(v vec.Vec2, r rect.Rect) bool {
	return v.X >= r.LLx && v.X <= r.URx && v.Y >= r.LLy && v.Y <= r.URy
}

// polygonArea returns the absolute area of a closed polygon.
func polygonArea(pts []vec.Vec2) float64 {
	area := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		area += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(area) / 2
}

// pathLength returns the length of an open path.
func pathLength(pts []vec.Vec2) float64 {
	length := 0.0
	for i := 0; i+1 < len(pts); i++ {
		length += math.Hypot(pts[i+1].X-pts[i].X, pts[i+1].Y-pts[i].Y)
	}
	return length
}

// bounds returns the bounding box of a list of points.
func bounds(pts []vec.Vec2) rect.Rect {
	res := rect.Rect{
		LLx: math.Inf(1), LLy: math.Inf(1),
		URx: math.Inf(-1), URy: math.Inf(-1),
	}
	for _, p := range pts {
		res.LLx = math.Min(res.LLx, p.X)
		res.LLy = math.Min(res.LLy, p.Y)
		res.URx = math.Max(res.URx, p.X)
		res.URy = math.Max(res.URy, p.Y)
	}
	return res
}
