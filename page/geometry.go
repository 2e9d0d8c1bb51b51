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

package page

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// ErrDegenerateGeometry indicates that a page has no visible area.
var ErrDegenerateGeometry = errors.New("page has no visible area")

// Effective returns the visible rectangle of the page.
func Effective(p *Page) (rect.Rect, error) {
	return Resolve(p.MediaBox, p.CropBox)
}

// Resolve computes the visible rectangle of a page from its media box and
// its optional crop box.  The crop box is clipped to the media box.  If the
// crop box is missing, or if it does not overlap the media box with positive
// area, the media box is used.
func Resolve(media, crop *rect.Rect) (rect.Rect, error) {
	if !IsValid(media) {
		return rect.Rect{}, ErrDegenerateGeometry
	}
	if IsValid(crop) {
		if visible, ok := Intersect(*media, *crop); ok {
			return visible, nil
		}
	}
	return *media, nil
}

// IsValid reports whether r is present, finite and has positive area.
func IsValid(r *rect.Rect) bool {
	if r == nil {
		return false
	}
	for _, x := range []float64{r.LLx, r.LLy, r.URx, r.URy} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return r.URx > r.LLx && r.URy > r.LLy
}

// Intersect returns the intersection of a and b.  The second return value
// is false if the intersection has zero area.
func Intersect(a, b rect.Rect) (rect.Rect, bool) {
	res := rect.Rect{
		LLx: math.Max(a.LLx, b.LLx),
		LLy: math.Max(a.LLy, b.LLy),
		URx: math.Min(a.URx, b.URx),
		URy: math.Min(a.URy, b.URy),
	}
	if res.URx <= res.LLx || res.URy <= res.LLy {
		return rect.Rect{}, false
	}
	return res, true
}

// Side identifies one half of a split page.
type Side int

// These are the two halves of a page.
const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Half describes one half of a split page.
type Half struct {
	Side Side

	// Region is the part of the source page covered by this half, in source
	// page coordinates.
	Region rect.Rect

	// Midpoint is the x coordinate where the page is split.  This is the
	// same for both halves of a page.
	Midpoint float64

	// M maps source page coordinates to the coordinates of the new page.
	M matrix.Matrix
}

// Split divides the visible rectangle of a page into two halves of equal
// width.  The midpoint is computed once and shared by both halves.
func Split(visible rect.Rect) (left, right Half) {
	mid := visible.LLx + (visible.URx-visible.LLx)/2

	left = Half{
		Side:     Left,
		Region:   rect.Rect{LLx: visible.LLx, LLy: visible.LLy, URx: mid, URy: visible.URy},
		Midpoint: mid,
		M:        matrix.Translate(-visible.LLx, -visible.LLy),
	}
	right = Half{
		Side:     Right,
		Region:   rect.Rect{LLx: mid, LLy: visible.LLy, URx: visible.URx, URy: visible.URy},
		Midpoint: mid,
		M:        matrix.Translate(-mid, -visible.LLy),
	}
	return left, right
}

// Width returns the width of the new page.
func (h *Half) Width() float64 {
	return h.Region.URx - h.Region.LLx
}

// Height returns the height of the new page.
func (h *Half) Height() float64 {
	return h.Region.URy - h.Region.LLy
}

// MediaBox returns the media box of the new page.
func (h *Half) MediaBox() rect.Rect {
	return rect.Rect{URx: h.Width(), URy: h.Height()}
}

// Apply maps a point from source page coordinates to new page coordinates.
func (h *Half) Apply(v vec.Vec2) vec.Vec2 {
	x, y := h.M.Apply(v.X, v.Y)
	return vec.Vec2{X: x, Y: y}
}

// ApplyRect maps a rectangle from source page coordinates to new page
// coordinates.
func (h *Half) ApplyRect(r rect.Rect) rect.Rect {
	ll := h.Apply(vec.Vec2{X: r.LLx, Y: r.LLy})
	ur := h.Apply(vec.Vec2{X: r.URx, Y: r.URy})
	return rect.Rect{
		LLx: math.Min(ll.X, ur.X),
		LLy: math.Min(ll.Y, ur.Y),
		URx: math.Max(ll.X, ur.X),
		URy: math.Max(ll.Y, ur.Y),
	}
}

// Clip intersects r with the region of the half.  The second return value
// is false if the intersection has zero area.
func (h *Half) Clip(r rect.Rect) (rect.Rect, bool) {
	return Intersect(h.Region, r)
}

// Owns reports whether the point v belongs to this half.  Points on the
// midpoint belong to the right half, so that every point of the visible
// rectangle belongs to exactly one half.
func (h *Half) Owns(v vec.Vec2) bool {
	if v.Y < h.Region.LLy || v.Y > h.Region.URy || v.X < h.Region.LLx {
		return false
	}
	if h.Side == Left {
		return v.X < h.Region.URx
	}
	return v.X <= h.Region.URx
}

// Clamp moves the point v to the nearest point inside the region of the
// half.
func (h *Half) Clamp(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: math.Min(math.Max(v.X, h.Region.LLx), h.Region.URx),
		Y: math.Min(math.Max(v.Y, h.Region.LLy), h.Region.URy),
	}
}

// ContentPrefix returns the content stream operators which place the region
// of the half at the origin of the new page.  The operators must be balanced
// by a final "Q".
func (h *Half) ContentPrefix() string {
	return fmt.Sprintf("q 1 0 0 1 %s %s cm\n", formatCoord(h.M[4]), formatCoord(h.M[5]))
}

// formatCoord formats x exactly, so that the content of the page is moved by
// the same amount as the annotations.
func formatCoord(x float64) string {
	if x == 0 {
		return "0"
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
