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
	"errors"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeTestFile writes a small file with a catalog, an empty page tree, a
// string and a stream.
func writeTestFile(t *testing.T, ver Version) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, ver)
	if err != nil {
		t.Fatal(err)
	}
	w.ID = [][]byte{[]byte("0123456789abcdef"), []byte("fedcba9876543210")}

	catRef := w.Alloc()
	pagesRef := w.Alloc()
	strRef := w.Alloc()
	stmRef := w.Alloc()
	unused := w.Alloc()
	_ = unused

	objs := []struct {
		ref Reference
		obj Object
	}{
		{catRef, Dict{"Type": Name("Catalog"), "Pages": pagesRef}},
		{pagesRef, Dict{"Type": Name("Pages"), "Kids": Array{}, "Count": Integer(0)}},
		{strRef, String("hello")},
		{stmRef, &Stream{Dict: Dict{"Test": Bool(true)}, R: bytes.NewReader([]byte("stream data"))}},
	}
	for _, o := range objs {
		err = w.Put(o.ref, o.obj)
		if err != nil {
			t.Fatal(err)
		}
	}
	err = w.Close(catRef, Reference{})
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func openBytes(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := NewReader(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRoundTrip(t *testing.T) {
	data := writeTestFile(t, V1_4)
	r := openBytes(t, data)

	if r.Version != V1_4 {
		t.Errorf("wrong version %s", r.Version)
	}
	if r.Repaired {
		t.Error("file unexpectedly repaired")
	}
	wantID := [][]byte{[]byte("0123456789abcdef"), []byte("fedcba9876543210")}
	if d := cmp.Diff(wantID, r.ID); d != "" {
		t.Errorf("ID (-want +got)\n%s", d)
	}

	catalog, err := r.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if catalog["Type"] != Name("Catalog") {
		t.Errorf("wrong catalog %s", Format(catalog))
	}

	s, err := GetString(r, NewReference(3, 0))
	if err != nil {
		t.Fatal(err)
	}
	if string(s) != "hello" {
		t.Errorf("wrong string %q", s)
	}

	stm, err := GetStream(r, NewReference(4, 0))
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(stm.R)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "stream data" || stm.Dict["Test"] != Bool(true) {
		t.Errorf("wrong stream %s %q", Format(stm), body)
	}

	// unused and missing objects read as null
	for _, ref := range []Reference{NewReference(5, 0), NewReference(99, 0), NewReference(3, 1)} {
		obj, err := r.Get(ref)
		if err != nil || obj != nil {
			t.Errorf("%s: got %s, %v", ref, Format(obj), err)
		}
	}
}

func TestIncrementalUpdate(t *testing.T) {
	data := writeTestFile(t, V1_7)
	prev := bytes.Index(data, []byte("\nxref\n")) + 1

	buf := bytes.NewBuffer(data)
	pos := buf.Len()
	buf.WriteString("3 0 obj\n(updated)\nendobj\n")
	xrefPos := buf.Len()
	fmt.Fprintf(buf, "xref\n0 1\n0000000000 65535 f\r\n3 1\n%010d 00000 n\r\n", pos)
	fmt.Fprintf(buf, "trailer\n<</Size 6 /Root 1 0 R /Prev %d>>\n", prev)
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", xrefPos)

	r := openBytes(t, buf.Bytes())
	s, err := GetString(r, NewReference(3, 0))
	if err != nil {
		t.Fatal(err)
	}
	if string(s) != "updated" {
		t.Errorf("got %q, want %q", s, "updated")
	}
	if r.ID == nil {
		t.Error("ID from the older trailer was lost")
	}
}

// writeXRefStreamFile writes a file which uses a cross-reference stream and
// keeps the page tree root and an integer inside an object stream.
func writeXRefStreamFile() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.5\n%\x80\x80\x80\x80\n")

	offsets := map[int]int{}
	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<</Type/Catalog/Pages 5 0 R/Version/1.7>>\nendobj\n")

	obj5 := "<</Type/Pages/Kids[]/Count 0>>"
	header := "5 0 6 " + strconv.Itoa(len(obj5)+1) + " "
	body := header + obj5 + " 42"
	offsets[4] = buf.Len()
	fmt.Fprintf(buf, "4 0 obj\n<</Type/ObjStm/N 2/First %d/Length %d>>\nstream\n%s\nendstream\nendobj\n",
		len(header), len(body), body)

	offsets[3] = buf.Len()
	var rows []byte
	for i := 0; i < 7; i++ {
		switch i {
		case 0, 2:
			rows = append(rows, 0, 0, 0, 0)
		case 1, 3, 4:
			rows = append(rows, 1, byte(offsets[i]>>8), byte(offsets[i]), 0)
		case 5:
			rows = append(rows, 2, 0, 4, 0)
		case 6:
			rows = append(rows, 2, 0, 4, 1)
		}
	}
	fmt.Fprintf(buf, "3 0 obj\n<</Type/XRef/Size 7/W[1 2 1]/Root 1 0 R/Length %d>>\nstream\n",
		len(rows))
	buf.Write(rows)
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", offsets[3])
	return buf.Bytes()
}

func TestXRefStream(t *testing.T) {
	r := openBytes(t, writeXRefStreamFile())

	if r.Version != V1_7 {
		t.Errorf("catalog version not used, got %s", r.Version)
	}

	pages, err := GetDict(r, NewReference(5, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := Dict{"Type": Name("Pages"), "Kids": Array(nil), "Count": Integer(0)}
	if d := cmp.Diff(want, pages); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}

	x, err := GetInt(r, NewReference(6, 0))
	if err != nil {
		t.Fatal(err)
	}
	if x != 42 {
		t.Errorf("got %d, want 42", x)
	}
}

func TestRepair(t *testing.T) {
	data := writeTestFile(t, V1_4)
	idx := bytes.Index(data, []byte("\nxref\n"))
	broken := data[:idx+1]

	r := openBytes(t, broken)
	if !r.Repaired {
		t.Error("file not marked as repaired")
	}
	s, err := GetString(r, NewReference(3, 0))
	if err != nil {
		t.Fatal(err)
	}
	if string(s) != "hello" {
		t.Errorf("wrong string %q", s)
	}
}

func TestRepairWrongOffsets(t *testing.T) {
	data := writeTestFile(t, V1_4)
	// shift all objects by inserting a comment after the header
	idx := bytes.Index(data, []byte("1 0 obj"))
	shifted := append([]byte{}, data[:idx]...)
	shifted = append(shifted, "% padding\n"...)
	shifted = append(shifted, data[idx:]...)

	r, err := NewReader(bytes.NewReader(shifted), int64(len(shifted)), nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := GetString(r, NewReference(3, 0))
	if err != nil {
		t.Fatal(err)
	}
	if string(s) != "hello" {
		t.Errorf("wrong string %q", s)
	}
}

func TestEncrypted(t *testing.T) {
	data := writeTestFile(t, V1_4)
	data = bytes.Replace(data, []byte("/Root 1 0 R"), []byte("/Root 1 0 R /Encrypt 3 0 R"), 1)
	_, err := NewReader(bytes.NewReader(data), int64(len(data)), nil)
	if !errors.Is(err, ErrEncrypted) {
		t.Errorf("expected ErrEncrypted, got %v", err)
	}
}

func TestNotPDF(t *testing.T) {
	data := []byte("hello, world\n")
	_, err := NewReader(bytes.NewReader(data), int64(len(data)), nil)
	var malformed *MalformedFileError
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedFileError, got %v", err)
	}
}
