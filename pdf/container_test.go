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
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"
)

func TestGetRectangle(t *testing.T) {
	src := memGetter{
		NewReference(1, 0): Real(200.5),
		NewReference(2, 0): Array{Integer(0), Integer(0), Integer(10), Integer(10)},
	}
	cases := []struct {
		in   Object
		want *rect.Rect
	}{
		{nil, nil},
		{Array{Integer(0), Integer(0), Integer(612), Integer(792)},
			&rect.Rect{URx: 612, URy: 792}},
		{Array{Integer(100), Real(50), Integer(10), NewReference(1, 0)},
			&rect.Rect{LLx: 10, LLy: 50, URx: 100, URy: 200.5}},
		{NewReference(2, 0), &rect.Rect{URx: 10, URy: 10}},
	}
	for i, test := range cases {
		got, err := GetRectangle(src, test.in)
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if d := cmp.Diff(test.want, got); d != "" {
			t.Errorf("%d: (-want +got)\n%s", i, d)
		}
	}

	for _, bad := range []Object{Array{Integer(1)}, Name("x"), Array{Name("a"), Integer(0), Integer(0), Integer(0)}} {
		_, err := GetRectangle(src, bad)
		if err == nil {
			t.Errorf("%s: missing error", Format(bad))
		}
	}
}

func TestResolveLoop(t *testing.T) {
	src := memGetter{
		NewReference(1, 0): NewReference(2, 0),
		NewReference(2, 0): NewReference(1, 0),
	}
	_, err := Resolve(src, NewReference(1, 0))
	if err == nil {
		t.Error("reference loop not detected")
	}
}

func TestRectArray(t *testing.T) {
	got := RectArray(rect.Rect{LLx: 0, LLy: 1.23456, URx: 100, URy: -0.0001})
	want := Array{Integer(0), Real(1.23456), Integer(100), Real(-0.0001)}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestRectArrayRoundTrip(t *testing.T) {
	r := rect.Rect{LLx: 10.12345, LLy: 20.56789, URx: 30.43219, URy: 40.98765}

	buf := &bytes.Buffer{}
	err := RectArray(r).PDF(buf)
	if err != nil {
		t.Fatal(err)
	}
	s := newScanner(bytes.NewReader(buf.Bytes()), nil, 0, nil)
	obj, err := s.ReadObject()
	if err != nil {
		t.Fatal(err)
	}
	got, err := GetRectangle(nil, obj)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(&r, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}
