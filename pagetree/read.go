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

// Package pagetree reads and writes PDF page trees.
package pagetree

import (
	"errors"

	"seehuhn.de/go/pdfsplit/pdf"
)

var errInvalidPageTree = errors.New("invalid page tree")

// inheritable lists the page attributes which can be set on intermediate
// nodes of the page tree.
var inheritable = []pdf.Name{"Resources", "MediaBox", "CropBox", "Rotate"}

// Page is a leaf of the page tree.
type Page struct {
	// Ref is the reference of the page dictionary.  This is zero if the
	// page dictionary is stored as a direct object.
	Ref pdf.Reference

	// Dict is a copy of the page dictionary, with inherited attributes
	// filled in from the ancestors of the page.
	Dict pdf.Dict
}

// Tree describes the page tree of a document.
type Tree struct {
	// Pages lists the pages of the document, in order.
	Pages []*Page

	// Nodes lists the intermediate nodes of the tree, including the root.
	Nodes []pdf.Reference
}

// Read walks the page tree starting at root.
func Read(r pdf.Getter, root pdf.Object) (*Tree, error) {
	type todoItem struct {
		obj       pdf.Object
		inherited pdf.Dict
	}

	tree := &Tree{}
	todo := []todoItem{{obj: root, inherited: pdf.Dict{}}}
	seen := map[pdf.Reference]bool{}
	for len(todo) > 0 {
		k := len(todo) - 1
		item := todo[k]
		todo = todo[:k]

		ref, isRef := item.obj.(pdf.Reference)
		if isRef {
			if seen[ref] {
				return nil, errInvalidPageTree
			}
			seen[ref] = true
		}
		node, err := pdf.GetDict(r, item.obj)
		if err != nil {
			return nil, err
		}
		if node == nil {
			// missing nodes are skipped
			continue
		}

		tp, err := pdf.GetName(r, node["Type"])
		if err != nil {
			return nil, err
		}
		isNode := tp == "Pages" || tp != "Page" && node["Kids"] != nil
		if !isNode {
			dict := node.Clone()
			for _, name := range inheritable {
				if _, present := dict[name]; present {
					continue
				}
				if val, ok := item.inherited[name]; ok {
					dict[name] = val
				}
			}
			tree.Pages = append(tree.Pages, &Page{Ref: ref, Dict: dict})
			continue
		}

		if isRef {
			tree.Nodes = append(tree.Nodes, ref)
		}
		inherited := item.inherited
		cloned := false
		for _, name := range inheritable {
			if val, ok := node[name]; ok {
				if !cloned {
					inherited = item.inherited.Clone()
					cloned = true
				}
				inherited[name] = val
			}
		}

		kids, err := pdf.GetArray(r, node["Kids"])
		if err != nil {
			return nil, err
		}
		for i := len(kids) - 1; i >= 0; i-- {
			todo = append(todo, todoItem{obj: kids[i], inherited: inherited})
		}
	}

	return tree, nil
}
