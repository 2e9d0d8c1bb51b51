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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func TestResolve(t *testing.T) {
	media := &rect.Rect{URx: 200, URy: 120}
	cases := []struct {
		name  string
		media *rect.Rect
		crop  *rect.Rect
		want  rect.Rect
		err   error
	}{
		{"no crop box", media, nil, *media, nil},
		{"crop inside media", media, &rect.Rect{LLx: 10, LLy: 10, URx: 190, URy: 110},
			rect.Rect{LLx: 10, LLy: 10, URx: 190, URy: 110}, nil},
		{"crop beyond media", media, &rect.Rect{LLx: -50, LLy: 20, URx: 300, URy: 500},
			rect.Rect{LLx: 0, LLy: 20, URx: 200, URy: 120}, nil},
		{"zero-area crop", media, &rect.Rect{LLx: 10, LLy: 10, URx: 10, URy: 50}, *media, nil},
		{"disjoint crop", media, &rect.Rect{LLx: 300, LLy: 0, URx: 400, URy: 100}, *media, nil},
		{"infinite crop", media, &rect.Rect{URx: math.Inf(1), URy: 100}, *media, nil},
		{"missing media box", nil, nil, rect.Rect{}, ErrDegenerateGeometry},
		{"flat media box", &rect.Rect{URx: 200}, nil, rect.Rect{}, ErrDegenerateGeometry},
		{"NaN media box", &rect.Rect{URx: math.NaN(), URy: 100}, nil, rect.Rect{}, ErrDegenerateGeometry},
	}
	for _, test := range cases {
		got, err := Resolve(test.media, test.crop)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got error %v, want %v", test.name, err, test.err)
			continue
		}
		if d := cmp.Diff(test.want, got); d != "" {
			t.Errorf("%s: (-want +got)\n%s", test.name, d)
		}
	}
}

// A crop box which extends beyond the media box is clipped before the page
// is split, so the midpoint lies in the middle of the visible area.
func TestSplitPartialCrop(t *testing.T) {
	media := &rect.Rect{URx: 200, URy: 100}
	crop := &rect.Rect{LLx: 100, URx: 300, URy: 100}
	visible, err := Resolve(media, crop)
	if err != nil {
		t.Fatal(err)
	}
	left, right := Split(visible)

	if left.Midpoint != 150 || right.Midpoint != 150 {
		t.Errorf("wrong midpoint %g/%g", left.Midpoint, right.Midpoint)
	}
	want := []rect.Rect{
		{LLx: 100, URx: 150, URy: 100},
		{LLx: 150, URx: 200, URy: 100},
	}
	if d := cmp.Diff(want, []rect.Rect{left.Region, right.Region}); d != "" {
		t.Errorf("regions (-want +got)\n%s", d)
	}
	if d := cmp.Diff(rect.Rect{URx: 50, URy: 100}, right.MediaBox()); d != "" {
		t.Errorf("media box (-want +got)\n%s", d)
	}
}

func TestSplit(t *testing.T) {
	visible, err := Resolve(&rect.Rect{URx: 200, URy: 120}, &rect.Rect{LLx: 10, LLy: 10, URx: 190, URy: 110})
	if err != nil {
		t.Fatal(err)
	}
	left, right := Split(visible)

	if left.Midpoint != 100 || right.Midpoint != 100 {
		t.Errorf("wrong midpoint %g/%g", left.Midpoint, right.Midpoint)
	}
	if left.Region.URx != right.Region.LLx {
		t.Errorf("halves do not meet: %g != %g", left.Region.URx, right.Region.LLx)
	}
	if left.Width() != 90 || right.Width() != 90 {
		t.Errorf("wrong widths %g, %g", left.Width(), right.Width())
	}
	if left.Width()+right.Width() != visible.URx-visible.LLx {
		t.Error("widths do not add up")
	}
	if left.Height() != 100 || right.Height() != 100 {
		t.Errorf("wrong heights %g, %g", left.Height(), right.Height())
	}
	want := rect.Rect{URx: 90, URy: 100}
	if d := cmp.Diff(want, left.MediaBox()); d != "" {
		t.Errorf("left media box (-want +got)\n%s", d)
	}
	if d := cmp.Diff(want, right.MediaBox()); d != "" {
		t.Errorf("right media box (-want +got)\n%s", d)
	}

	// the corners of the visible area map to the corners of the new pages
	if d := cmp.Diff(vec.Vec2{}, left.Apply(vec.Vec2{X: 10, Y: 10})); d != "" {
		t.Errorf("left origin (-want +got)\n%s", d)
	}
	if d := cmp.Diff(vec.Vec2{}, right.Apply(vec.Vec2{X: 100, Y: 10})); d != "" {
		t.Errorf("right origin (-want +got)\n%s", d)
	}
	if d := cmp.Diff(vec.Vec2{X: 90, Y: 100}, right.Apply(vec.Vec2{X: 190, Y: 110})); d != "" {
		t.Errorf("right corner (-want +got)\n%s", d)
	}
}

func TestOwns(t *testing.T) {
	left, right := Split(rect.Rect{URx: 200, URy: 100})
	cases := []struct {
		pt          vec.Vec2
		left, right bool
	}{
		{vec.Vec2{X: 0, Y: 50}, true, false},
		{vec.Vec2{X: 99.9, Y: 50}, true, false},
		{vec.Vec2{X: 100, Y: 50}, false, true},
		{vec.Vec2{X: 200, Y: 100}, false, true},
		{vec.Vec2{X: 201, Y: 50}, false, false},
		{vec.Vec2{X: 50, Y: -1}, false, false},
	}
	for _, test := range cases {
		if got := left.Owns(test.pt); got != test.left {
			t.Errorf("left.Owns(%v) = %t", test.pt, got)
		}
		if got := right.Owns(test.pt); got != test.right {
			t.Errorf("right.Owns(%v) = %t", test.pt, got)
		}
	}
}

func TestContentPrefix(t *testing.T) {
	left, right := Split(rect.Rect{LLx: 10, LLy: 10, URx: 190, URy: 110})
	if got := left.ContentPrefix(); got != "q 1 0 0 1 -10 -10 cm\n" {
		t.Errorf("left: %q", got)
	}
	if got := right.ContentPrefix(); got != "q 1 0 0 1 -100 -10 cm\n" {
		t.Errorf("right: %q", got)
	}

	left, right = Split(rect.Rect{URx: 200.5, URy: 100})
	if got := left.ContentPrefix(); got != "q 1 0 0 1 0 0 cm\n" {
		t.Errorf("origin: %q", got)
	}
	if got := right.ContentPrefix(); got != "q 1 0 0 1 -100.25 0 cm\n" {
		t.Errorf("fractional: %q", got)
	}
}

func TestApplyRect(t *testing.T) {
	_, right := Split(rect.Rect{URx: 200, URy: 100})
	got := right.ApplyRect(rect.Rect{LLx: 100, LLy: 40, URx: 110, URy: 60})
	want := rect.Rect{LLx: 0, LLy: 40, URx: 10, URy: 60}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}
