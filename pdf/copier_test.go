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
)

// memGetter is a Getter backed by a map.
type memGetter map[Reference]Object

func (m memGetter) Get(ref Reference) (Object, error) {
	return m[ref], nil
}

func TestCopier(t *testing.T) {
	src := memGetter{
		NewReference(1, 0): Dict{"Self": NewReference(1, 0), "Next": NewReference(2, 0)},
		NewReference(2, 0): Array{Integer(1), NewReference(3, 0), NewReference(4, 0)},
		NewReference(3, 0): String("three"),
		NewReference(4, 0): Name("four"),
	}

	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, V1_7)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCopier(w, src)
	c.Omit(NewReference(4, 0))

	obj, err := c.Copy(NewReference(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if obj != NewReference(1, 0) {
		t.Errorf("unexpected reference %s", Format(obj))
	}

	// copying again gives the same reference
	again, err := c.Copy(NewReference(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if again != obj {
		t.Errorf("object copied twice")
	}

	newRef, ok := c.Lookup(NewReference(2, 0))
	if !ok {
		t.Fatal("array not copied")
	}
	if newRef != NewReference(2, 0) {
		t.Errorf("unexpected reference %s", newRef)
	}
	if _, ok := c.Lookup(NewReference(4, 0)); ok {
		t.Error("omitted object was copied")
	}

	err = w.Close(NewReference(1, 0), Reference{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("[1 3 0 R null]")) {
		t.Errorf("omitted reference not replaced by null:\n%s", buf.String())
	}
}

func TestCopierRedirect(t *testing.T) {
	src := memGetter{
		NewReference(7, 0): Dict{"Type": Name("Page")},
	}
	w, err := NewWriter(&bytes.Buffer{}, V1_7)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCopier(w, src)
	target := w.Alloc()
	c.Omit(NewReference(7, 0))
	c.Redirect(NewReference(7, 0), target)

	obj, err := c.CopyDict(Dict{"P": NewReference(7, 0), "N": Integer(1)})
	if err != nil {
		t.Fatal(err)
	}
	want := Dict{"P": target, "N": Integer(1)}
	if d := cmp.Diff(want, obj); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestCopierRewrite(t *testing.T) {
	w, err := NewWriter(&bytes.Buffer{}, V1_7)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCopier(w, memGetter{})
	c.Rewrite = func(obj Object) (Object, bool, error) {
		if x, ok := obj.(Integer); ok {
			return x * 2, true, nil
		}
		return nil, false, nil
	}

	obj, err := c.Copy(Array{Integer(1), Dict{"A": Integer(2)}, Name("x")})
	if err != nil {
		t.Fatal(err)
	}
	want := Array{Integer(2), Dict{"A": Integer(4)}, Name("x")}
	if d := cmp.Diff(want, obj); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestCopyStreamDropsLength(t *testing.T) {
	lengthRef := NewReference(9, 0)
	src := memGetter{lengthRef: Integer(3)}
	w, err := NewWriter(&bytes.Buffer{}, V1_7)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCopier(w, src)
	obj, err := c.Copy(&Stream{
		Dict: Dict{"Length": lengthRef, "Filter": Name("FlateDecode")},
		R:    bytes.NewReader([]byte("abc")),
	})
	if err != nil {
		t.Fatal(err)
	}
	stm := obj.(*Stream)
	if _, hasLength := stm.Dict["Length"]; hasLength {
		t.Error("/Length was copied")
	}
	if _, copied := c.Lookup(lengthRef); copied {
		t.Error("length object was copied")
	}
}
