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

package pagetree

import (
	"errors"

	"seehuhn.de/go/pdfsplit/pdf"
)

// maxDegree is the maximal number of children of a page tree node.
const maxDegree = 32

// Writer collects pages and writes them as a balanced page tree.
type Writer struct {
	out      *pdf.Writer
	pages    []*treeNode
	isClosed bool
}

type treeNode struct {
	ref   pdf.Reference
	dict  pdf.Dict
	count int
}

// NewWriter creates a new page tree which adds pages to the PDF document w.
func NewWriter(w *pdf.Writer) *Writer {
	return &Writer{out: w}
}

// AppendPage adds a new page to the page tree.  The reference must have
// been allocated by the underlying writer.  The page dictionary is written
// when the tree is closed, after the /Parent entry has been set.
func (t *Writer) AppendPage(ref pdf.Reference, dict pdf.Dict) error {
	if t.isClosed {
		return errors.New("page tree is closed")
	}
	dict = dict.Clone()
	if dict == nil {
		dict = pdf.Dict{}
	}
	t.pages = append(t.pages, &treeNode{ref: ref, dict: dict, count: 1})
	return nil
}

// NumPages returns the number of pages added so far.
func (t *Writer) NumPages() int {
	return len(t.pages)
}

// Close writes the page tree to the PDF file and returns a reference to the
// root node.
func (t *Writer) Close() (pdf.Reference, error) {
	if t.isClosed {
		return pdf.Reference{}, errors.New("page tree is closed")
	}
	t.isClosed = true

	var nodes []*treeNode
	level := t.pages
	for len(level) > maxDegree {
		var next []*treeNode
		for start := 0; start < len(level); start += maxDegree {
			end := min(start+maxDegree, len(level))
			parent := t.makeNode(level[start:end])
			nodes = append(nodes, parent)
			next = append(next, parent)
		}
		level = next
	}
	root := t.makeNode(level)
	nodes = append(nodes, root)

	for _, p := range t.pages {
		err := t.out.Put(p.ref, p.dict)
		if err != nil {
			return pdf.Reference{}, err
		}
	}
	for _, node := range nodes {
		err := t.out.Put(node.ref, node.dict)
		if err != nil {
			return pdf.Reference{}, err
		}
	}
	return root.ref, nil
}

func (t *Writer) makeNode(kids []*treeNode) *treeNode {
	ref := t.out.Alloc()
	kidRefs := make(pdf.Array, len(kids))
	count := 0
	for i, kid := range kids {
		kid.dict["Parent"] = ref
		kidRefs[i] = kid.ref
		count += kid.count
	}
	return &treeNode{
		ref: ref,
		dict: pdf.Dict{
			"Type":  pdf.Name("Pages"),
			"Kids":  kidRefs,
			"Count": pdf.Integer(count),
		},
		count: count,
	}
}
