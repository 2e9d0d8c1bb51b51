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

package pdfsplit

import (
	"seehuhn.de/go/pdfsplit/pdf"
)

// PDF 2.0 sections: 12.7.3 12.7.4

// fieldKeys lists the entries which belong to the field part of a merged
// field and widget dictionary.
var fieldKeys = []pdf.Name{
	"DS", "DV", "FT", "Ff", "I", "Kids", "Lock", "MaxLen", "Opt", "RV", "SV",
	"T", "TI", "TM", "TU", "V",
}

// dropFormKeys lists the entries of the interactive form dictionary which
// are not carried over.  The calculation order refers to fields which may
// have been removed, and XFA forms describe the page layout of the input.
var dropFormKeys = map[pdf.Name]bool{
	"CO":     true,
	"Fields": true,
	"XFA":    true,
}

// form rebuilds the field hierarchy of an interactive form for the widget
// annotations which are placed in the output.
type form struct {
	r   pdf.Getter
	c   *pdf.Copier
	out *pdf.Writer

	dict pdf.Dict

	// fields holds the non-terminal nodes of the field tree, and the
	// terminal fields which are not merged with a widget annotation.
	fields map[pdf.Reference]*field

	// widgetParent maps widget annotations to their parent field.  Widgets
	// at the top level of the field tree map to the zero reference.
	widgetParent map[pdf.Reference]pdf.Reference

	// roots lists the /Fields array of the form, in order.
	roots []pdf.Reference

	// topLevel holds the new fields made from the widgets at the top level
	// of the field tree.
	topLevel map[pdf.Reference][]pdf.Reference
}

type field struct {
	dict     pdf.Dict
	ref      pdf.Reference
	parent   pdf.Reference
	children []pdf.Reference
	widgets  []pdf.Reference
}

// fieldPlacement describes how a copy of a widget annotation is attached
// to the field tree.
type fieldPlacement struct {
	// parent is the new /Parent entry of the widget, or zero for top-level
	// widgets.
	parent pdf.Reference

	// strip is set if the field entries have been moved to a new parent.
	strip bool
}

// newForm reads the field tree of an interactive form.  References to the
// fields are redirected to the new field dictionaries.  Fields without
// any remaining widgets are never written, so that references to them
// resolve to null.
func newForm(r pdf.Getter, c *pdf.Copier, out *pdf.Writer, dict pdf.Dict) (*form, error) {
	f := &form{
		r:            r,
		c:            c,
		out:          out,
		dict:         dict,
		fields:       make(map[pdf.Reference]*field),
		widgetParent: make(map[pdf.Reference]pdf.Reference),
		topLevel:     make(map[pdf.Reference][]pdf.Reference),
	}

	seen := make(map[pdf.Reference]bool)
	var visit func(obj pdf.Object, parent pdf.Reference) error
	visit = func(obj pdf.Object, parent pdf.Reference) error {
		ref, ok := obj.(pdf.Reference)
		if !ok || seen[ref] {
			return nil
		}
		seen[ref] = true

		node, err := pdf.GetDict(r, ref)
		if err != nil {
			return err
		}
		if node == nil {
			return nil
		}
		if parent.IsZero() {
			f.roots = append(f.roots, ref)
		}

		if subtype, _ := node["Subtype"].(pdf.Name); subtype == "Widget" {
			f.widgetParent[ref] = parent
			return nil
		}

		fl := &field{dict: node, ref: out.Alloc(), parent: parent}
		f.fields[ref] = fl
		c.Redirect(ref, fl.ref)
		if !parent.IsZero() {
			p := f.fields[parent]
			p.children = append(p.children, ref)
		}

		kids, err := pdf.GetArray(r, node["Kids"])
		if err != nil {
			return err
		}
		for _, kid := range kids {
			err := visit(kid, ref)
			if err != nil {
				return err
			}
		}
		return nil
	}

	fields, err := pdf.GetArray(r, dict["Fields"])
	if err != nil {
		return nil, err
	}
	for _, obj := range fields {
		err := visit(obj, pdf.Reference{})
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// place attaches the copies of the widget annotation ref to the field
// tree.  If a widget which is merged with its field dictionary is
// duplicated, a new field is created and the copies become its kids.
func (f *form) place(ref pdf.Reference, dict pdf.Dict, copies []pdf.Reference) (fieldPlacement, error) {
	srcParent, known := f.widgetParent[ref]
	if !known {
		p, _ := dict["Parent"].(pdf.Reference)
		if f.fields[p] == nil {
			return fieldPlacement{}, nil
		}
		srcParent = p
	}
	parent := f.fields[srcParent]

	var res fieldPlacement
	if parent != nil {
		res.parent = parent.ref
	}
	kids := copies
	if len(copies) > 1 && isMerged(dict) {
		newRef := f.out.Alloc()
		fieldDict := pdf.Dict{}
		for _, key := range fieldKeys {
			if key == "Kids" {
				continue
			}
			val, err := f.c.Copy(dict[key])
			if err != nil {
				return res, err
			}
			if val != nil {
				fieldDict[key] = val
			}
		}
		fieldDict["Kids"] = append(pdf.Array{}, toObjects(copies)...)
		if parent != nil {
			fieldDict["Parent"] = parent.ref
		}
		err := f.out.Put(newRef, fieldDict)
		if err != nil {
			return res, err
		}

		res = fieldPlacement{parent: newRef, strip: true}
		kids = []pdf.Reference{newRef}
	}

	if parent != nil {
		parent.widgets = append(parent.widgets, kids...)
	} else {
		f.topLevel[ref] = append(f.topLevel[ref], kids...)
	}
	return res, nil
}

// finish writes the field tree and returns the new interactive form
// dictionary.  If no fields remain, nil is returned.
func (f *form) finish() (pdf.Dict, error) {
	var write func(ref pdf.Reference) (bool, error)
	write = func(ref pdf.Reference) (bool, error) {
		fl := f.fields[ref]

		var kids pdf.Array
		for _, child := range fl.children {
			ok, err := write(child)
			if err != nil {
				return false, err
			}
			if ok {
				kids = append(kids, f.fields[child].ref)
			}
		}
		kids = append(kids, toObjects(fl.widgets)...)
		if len(kids) == 0 {
			return false, nil
		}

		dict := pdf.Dict{}
		for _, key := range pdf.SortedKeys(fl.dict) {
			if key == "Kids" || key == "Parent" {
				continue
			}
			val, err := f.c.Copy(fl.dict[key])
			if err != nil {
				return false, err
			}
			if val != nil {
				dict[key] = val
			}
		}
		dict["Kids"] = kids
		if !fl.parent.IsZero() {
			dict["Parent"] = f.fields[fl.parent].ref
		}
		return true, f.out.Put(fl.ref, dict)
	}

	var fields pdf.Array
	for _, ref := range f.roots {
		if fl, isField := f.fields[ref]; isField {
			ok, err := write(ref)
			if err != nil {
				return nil, err
			}
			if ok {
				fields = append(fields, fl.ref)
			}
		} else {
			fields = append(fields, toObjects(f.topLevel[ref])...)
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}

	res := pdf.Dict{}
	for _, key := range pdf.SortedKeys(f.dict) {
		if dropFormKeys[key] {
			continue
		}
		val, err := f.c.Copy(f.dict[key])
		if err != nil {
			return nil, err
		}
		if val != nil {
			res[key] = val
		}
	}
	res["Fields"] = fields
	return res, nil
}

// isMerged reports whether a widget annotation dictionary also contains
// the entries of a field.
func isMerged(dict pdf.Dict) bool {
	return dict["T"] != nil || dict["FT"] != nil
}

func toObjects(refs []pdf.Reference) []pdf.Object {
	res := make([]pdf.Object, len(refs))
	for i, ref := range refs {
		res[i] = ref
	}
	return res
}
