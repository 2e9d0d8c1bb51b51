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

// A Copier is used to copy objects from one PDF file to another. The Copier
// keeps track of the objects that have already been copied and ensures that
// each object is copied only once.
//
// Indirect objects are allocated in the target file as needed, and references
// are translated accordingly.  Dictionary entries are visited in sorted key
// order, so that copying the same input always gives the same output.
type Copier struct {
	// Rewrite, if set, is called for every object before it is copied.  If
	// the function returns true, the returned object is used in the target
	// file as it is, instead of copying the original object.
	Rewrite func(obj Object) (Object, bool, error)

	trans map[Reference]Reference
	omit  map[Reference]bool
	r     Getter
	w     *Writer
}

// NewCopier creates a new Copier.
func NewCopier(w *Writer, r Getter) *Copier {
	c := &Copier{
		trans: make(map[Reference]Reference),
		omit:  make(map[Reference]bool),
		w:     w,
		r:     r,
	}
	return c
}

// Copy copies an object from the source file to the target file, recursively.
func (c *Copier) Copy(obj Object) (Object, error) {
	if c.Rewrite != nil {
		repl, done, err := c.Rewrite(obj)
		if err != nil {
			return nil, err
		}
		if done {
			return repl, nil
		}
	}

	switch x := obj.(type) {
	case Dict:
		return c.CopyDict(x)
	case Array:
		return c.CopyArray(x)
	case *Stream:
		dict, err := c.copyDict(x.Dict, "Length")
		if err != nil {
			return nil, err
		}
		res := &Stream{
			Dict: dict,
			R:    x.R,
		}
		return res, nil
	case Reference:
		return c.CopyReference(x)
	default:
		return obj, nil
	}
}

// CopyDict copies a dictionary from the source file to the target file.
func (c *Copier) CopyDict(obj Dict) (Dict, error) {
	return c.copyDict(obj, "")
}

func (c *Copier) copyDict(obj Dict, skip Name) (Dict, error) {
	if obj == nil {
		return nil, nil
	}
	res := Dict{}
	for _, key := range SortedKeys(obj) {
		if key == skip {
			continue
		}
		repl, err := c.Copy(obj[key])
		if err != nil {
			return nil, err
		}
		if repl != nil {
			res[key] = repl
		}
	}
	return res, nil
}

// CopyArray copies an array from the source file to the target file.
// Elements which refer to omitted objects are replaced by null.
func (c *Copier) CopyArray(obj Array) (Array, error) {
	if obj == nil {
		return nil, nil
	}
	res := make(Array, len(obj))
	for i, val := range obj {
		repl, err := c.Copy(val)
		if err != nil {
			return nil, err
		}
		res[i] = repl
	}
	return res, nil
}

// CopyReference copies a reference from the source file to the target file.
// The referenced object is copied the first time it is seen.  If the object
// has been omitted, nil is returned.
func (c *Copier) CopyReference(ref Reference) (Object, error) {
	if newRef, ok := c.trans[ref]; ok {
		return newRef, nil
	}
	if c.omit[ref] {
		return nil, nil
	}

	val, err := c.r.Get(ref)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}

	// Allocate before recursing, so that reference cycles terminate.
	newRef := c.w.Alloc()
	c.trans[ref] = newRef

	trans, err := c.Copy(val)
	if err != nil {
		return nil, err
	}
	err = c.w.Put(newRef, trans)
	if err != nil {
		return nil, err
	}

	return newRef, nil
}

// Redirect replaces an indirect object in the old file with one in the new
// file.  This overrides an earlier call to Omit.
func (c *Copier) Redirect(origRef, newRef Reference) {
	c.trans[origRef] = newRef
	delete(c.omit, origRef)
}

// Omit marks an object as not to be copied.  References to the object are
// replaced by null.
func (c *Copier) Omit(ref Reference) {
	if _, redirected := c.trans[ref]; !redirected {
		c.omit[ref] = true
	}
}

// Lookup returns the reference in the target file which corresponds to ref,
// if ref has already been copied or redirected.
func (c *Copier) Lookup(ref Reference) (Reference, bool) {
	newRef, ok := c.trans[ref]
	return newRef, ok
}
