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
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testScanner(in string) *scanner {
	r := bytes.NewReader([]byte(in))
	getInt := func(obj Object) (Integer, error) {
		x, _ := obj.(Integer)
		return x, nil
	}
	return newScanner(r, r, 0, getInt)
}

func TestRefill(t *testing.T) {
	n := scannerBufSize + 2
	buf := make([]byte, n)
	s := newScanner(bytes.NewReader(buf), nil, 0, nil)

	for _, inc := range []int{0, 1, scannerBufSize, 1} {
		s.pos += inc
		err := s.refill()
		total := int(s.total) + s.pos
		expectUsed := scannerBufSize
		if expectUsed > n-total {
			expectUsed = n - total
		}
		if err != nil || s.pos != 0 || s.used != expectUsed {
			t.Errorf("%d: s.pos = %d, s.used = %d, %v",
				total, s.pos, s.used, err)
		}
	}
}

func TestReadObject(t *testing.T) {
	cases := []struct {
		in  string
		val Object
	}{
		{"null", nil},
		{"true", Bool(true)},
		{"false", Bool(false)},

		{"0", Integer(0)},
		{"+12", Integer(12)},
		{"-4567", Integer(-4567)},
		{"999999999999999999", Integer(999999999999999999)},
		{".5", Real(.5)},
		{"-0.5", Real(-.5)},
		{"12.", Real(12)},

		{"/a", Name("a")},
		{"/A;Name_With-Various***Characters?", Name("A;Name_With-Various***Characters?")},
		{"/1.2", Name("1.2")},
		{"/A#42", Name("AB")},
		{"/F#23#20minor", Name("F# minor")},

		{"()", String(nil)},
		{"(hello)", String("hello")},
		{"(a(b)c)", String("a(b)c")},
		{`(a\nb)`, String("a\nb")},
		{`(\101\102)`, String("AB")},
		{`(\))`, String(")")},
		{"(a\\\nb)", String("ab")},
		{"<48656c6c6f>", String("Hello")},
		{"<901fa>", String{0x90, 0x1f, 0xa0}},

		{"[]", Array(nil)},
		{"[1 2 3]", Array{Integer(1), Integer(2), Integer(3)}},
		{"[1 0 R 2]", Array{NewReference(1, 0), Integer(2)}},
		{"[0 1 2 R]", Array{Integer(0), NewReference(1, 2)}},
		{"[/A (b) [null]]", Array{Name("A"), String("b"), Array{nil}}},

		{"<<>>", Dict{}},
		{"<</A 1/B 2 0 R>>", Dict{"A": Integer(1), "B": NewReference(2, 0)}},
		{"<< /Type /Page /Kids [3 0 R] >>", Dict{"Type": Name("Page"), "Kids": Array{NewReference(3, 0)}}},
		{"<</A null>>", Dict{}},
	}
	for _, test := range cases {
		s := testScanner(test.in)
		val, err := s.ReadObject()
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.in, err)
			continue
		}
		if d := cmp.Diff(test.val, val); d != "" {
			t.Errorf("%q: (-want +got)\n%s", test.in, d)
		}
	}
}

func TestReadObjectErrors(t *testing.T) {
	for _, in := range []string{"", "TRUE", "<</A 1", "[1 2", "xyz"} {
		s := testScanner(in)
		_, err := s.ReadObject()
		if err == nil {
			t.Errorf("%q: missing error", in)
		}
	}
}

func TestReadIndirectObject(t *testing.T) {
	in := "  7 1 obj\n<</Length 5>>\nstream\nhello\nendstream\nendobj\n"
	s := testScanner(in)
	obj, ref, err := s.ReadIndirectObject()
	if err != nil {
		t.Fatal(err)
	}
	if ref != NewReference(7, 1) {
		t.Errorf("wrong reference %s", ref)
	}
	stm, ok := obj.(*Stream)
	if !ok {
		t.Fatalf("expected stream, got %T", obj)
	}
	data, err := io.ReadAll(stm.R)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("wrong stream data %q", data)
	}
}

func TestReadIndirectReference(t *testing.T) {
	s := testScanner("3 0 obj 4 0 R endobj")
	obj, _, err := s.ReadIndirectObject()
	if err != nil {
		t.Fatal(err)
	}
	if obj != NewReference(4, 0) {
		t.Errorf("wrong object %s", Format(obj))
	}
}

func TestCurrentPos(t *testing.T) {
	r := bytes.NewReader([]byte("1 0 obj\n(x)\nendobj\n"))
	s := newScanner(r, r, 100, nil)
	_, _, err := s.ReadIndirectObject()
	if err != nil {
		t.Fatal(err)
	}
	if s.currentPos() != 100+18 {
		t.Errorf("wrong position %d", s.currentPos())
	}
}

func TestReadHeaderVersion(t *testing.T) {
	cases := []struct {
		in  string
		ver Version
	}{
		{"%PDF-1.4\n", V1_4},
		{"garbage\n%PDF-1.7\n", V1_7},
		{"%PDF-2.0\n%\x80\x80", V2_0},
	}
	for _, test := range cases {
		ver, err := testScanner(test.in).readHeaderVersion()
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
		} else if ver != test.ver {
			t.Errorf("%q: got %s, want %s", test.in, ver, test.ver)
		}
	}

	_, err := testScanner("%!PS-Adobe-3.0\n").readHeaderVersion()
	if err == nil {
		t.Error("missing error for non-PDF input")
	}
}
