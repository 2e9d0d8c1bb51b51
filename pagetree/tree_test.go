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

package pagetree_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/pdfsplit/pagetree"
	"seehuhn.de/go/pdfsplit/pdf"
)

type memGetter map[pdf.Reference]pdf.Object

func (m memGetter) Get(ref pdf.Reference) (pdf.Object, error) {
	return m[ref], nil
}

func TestRoundTrip(t *testing.T) {
	for _, numPages := range []int{0, 1, 32, 33, 234, 1100} {
		buf := &bytes.Buffer{}
		w, err := pdf.NewWriter(buf, pdf.V1_7)
		if err != nil {
			t.Fatal(err)
		}
		catRef := w.Alloc()

		pageRefsIn := make([]pdf.Reference, numPages)
		tree := pagetree.NewWriter(w)
		for i := range pageRefsIn {
			pageRefsIn[i] = w.Alloc()
			err := tree.AppendPage(pageRefsIn[i], pdf.Dict{
				"Type": pdf.Name("Page"),
			})
			if err != nil {
				t.Fatal(err)
			}
		}
		treeRef, err := tree.Close()
		if err != nil {
			t.Fatal(err)
		}
		err = w.Put(catRef, pdf.Dict{"Type": pdf.Name("Catalog"), "Pages": treeRef})
		if err != nil {
			t.Fatal(err)
		}
		err = w.Close(catRef, pdf.Reference{})
		if err != nil {
			t.Fatal(err)
		}

		data := buf.Bytes()
		r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)), nil)
		if err != nil {
			t.Fatal(err)
		}
		pages, err := pagetree.Read(r, treeRef)
		if err != nil {
			t.Fatal(err)
		}
		var pageRefsOut []pdf.Reference
		for _, p := range pages.Pages {
			pageRefsOut = append(pageRefsOut, p.Ref)
		}
		if numPages == 0 {
			pageRefsIn = nil
		}
		if d := cmp.Diff(pageRefsIn, pageRefsOut); d != "" {
			t.Errorf("%d pages: unexpected pageRefs (-want +got):\n%s", numPages, d)
		}

		root, err := pdf.GetDict(r, treeRef)
		if err != nil {
			t.Fatal(err)
		}
		if root["Count"] != pdf.Integer(numPages) {
			t.Errorf("%d pages: wrong /Count %s", numPages, pdf.Format(root["Count"]))
		}
		kids, _ := root["Kids"].(pdf.Array)
		if len(kids) > 32 {
			t.Errorf("%d pages: root has %d children", numPages, len(kids))
		}
	}
}

func TestInheritance(t *testing.T) {
	ref := pdf.NewReference
	box := pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(200), pdf.Integer(100)}
	crop := pdf.Array{pdf.Integer(10), pdf.Integer(10), pdf.Integer(190), pdf.Integer(90)}
	r := memGetter{
		ref(1, 0): pdf.Dict{
			"Type":      pdf.Name("Pages"),
			"Kids":      pdf.Array{ref(2, 0), ref(3, 0)},
			"MediaBox":  box,
			"Resources": ref(9, 0),
			"Rotate":    pdf.Integer(90),
		},
		ref(2, 0): pdf.Dict{
			"Type":    pdf.Name("Page"),
			"CropBox": crop,
			"Rotate":  pdf.Integer(0),
		},
		ref(3, 0): pdf.Dict{
			"Type":    pdf.Name("Pages"),
			"Kids":    pdf.Array{ref(4, 0)},
			"CropBox": crop,
		},
		// the /Type entry is missing
		ref(4, 0): pdf.Dict{
			"Contents": ref(8, 0),
		},
	}

	tree, err := pagetree.Read(r, ref(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := []*pagetree.Page{
		{
			Ref: ref(2, 0),
			Dict: pdf.Dict{
				"Type":      pdf.Name("Page"),
				"CropBox":   crop,
				"MediaBox":  box,
				"Resources": ref(9, 0),
				"Rotate":    pdf.Integer(0),
			},
		},
		{
			Ref: ref(4, 0),
			Dict: pdf.Dict{
				"Contents":  ref(8, 0),
				"CropBox":   crop,
				"MediaBox":  box,
				"Resources": ref(9, 0),
				"Rotate":    pdf.Integer(90),
			},
		},
	}
	if d := cmp.Diff(want, tree.Pages); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
	if d := cmp.Diff([]pdf.Reference{ref(1, 0), ref(3, 0)}, tree.Nodes); d != "" {
		t.Errorf("nodes (-want +got):\n%s", d)
	}

	// the source dictionaries are not modified
	if _, ok := r[ref(4, 0)].(pdf.Dict)["MediaBox"]; ok {
		t.Error("page dictionary was modified")
	}
}

func TestLoop(t *testing.T) {
	ref := pdf.NewReference
	r := memGetter{
		ref(1, 0): pdf.Dict{"Type": pdf.Name("Pages"), "Kids": pdf.Array{ref(2, 0)}},
		ref(2, 0): pdf.Dict{"Type": pdf.Name("Pages"), "Kids": pdf.Array{ref(1, 0)}},
	}
	_, err := pagetree.Read(r, ref(1, 0))
	if err == nil {
		t.Error("page tree loop not detected")
	}
}
