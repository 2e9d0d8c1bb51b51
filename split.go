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
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdfsplit/annotation"
	"seehuhn.de/go/pdfsplit/page"
	"seehuhn.de/go/pdfsplit/pdf"
)

// HalfPage is one of the two pages made from a page of the input document.
type HalfPage struct {
	page.Half

	// Ref is the reference of the new page in the output.
	Ref pdf.Reference

	// Dict is the new page dictionary.  The /Parent entry is set when the
	// page is added to the page tree.
	Dict pdf.Dict

	// Annots lists the annotations of the new page, in the order of the
	// input page.
	Annots []*annotation.Annotation
}

// plan records where a page of the input goes in the output.
type plan struct {
	number int
	halves [2]page.Half
	refs   [2]pdf.Reference
}

// copiedPageKeys lists the page attributes which are copied unchanged to
// both halves.
var copiedPageKeys = []pdf.Name{
	"AA", "Dur", "Group", "LastModified", "Metadata", "PieceInfo", "Tabs",
	"Trans", "UserUnit",
}

// Splitter builds the two halves of the pages of a document.
type Splitter struct {
	r      pdf.Getter
	out    *pdf.Writer
	c      *pdf.Copier
	form   *form
	logger *slog.Logger
	report *Report

	plans  map[int]*plan
	byRef  map[pdf.Reference]*plan
	suffix pdf.Reference
}

func newSplitter(r pdf.Getter, out *pdf.Writer, logger *slog.Logger, report *Report) *Splitter {
	s := &Splitter{
		r:      r,
		out:    out,
		c:      pdf.NewCopier(out, r),
		logger: logger,
		report: report,
		plans:  make(map[int]*plan),
		byRef:  make(map[pdf.Reference]*plan),
	}
	s.c.Rewrite = s.rewriteDest
	return s
}

// plan computes the geometry of page number n and allocates the references
// for the two new pages.  This must be called for all pages before the
// first call to Split, so that links to later pages can be resolved.
func (s *Splitter) plan(n int, p *page.Page) error {
	visible, err := page.Effective(p)
	if err != nil {
		return err
	}
	left, right := page.Split(visible)
	pl := &plan{
		number: n,
		halves: [2]page.Half{left, right},
		refs:   [2]pdf.Reference{s.out.Alloc(), s.out.Alloc()},
	}
	s.plans[n] = pl
	if !p.Ref.IsZero() {
		s.byRef[p.Ref] = pl
		s.c.Redirect(p.Ref, pl.refs[0])
	}
	return nil
}

// omitAnnots stops the copier from following references to the
// annotations of a page.  Annotations are written by Split, which
// redirects the references to the new copies.
func (s *Splitter) omitAnnots(p *page.Page) {
	for _, obj := range p.Annots {
		if ref, ok := obj.(pdf.Reference); ok {
			s.c.Omit(ref)
		}
	}
}

// Split builds the two halves of page number n and writes the content
// streams and annotations of the new pages.  The page dictionaries are
// returned to the caller, who adds them to the page tree.
func (s *Splitter) Split(n int, p *page.Page) (left, right *HalfPage, err error) {
	pl := s.plans[n]
	if pl == nil {
		err := s.plan(n, p)
		if err != nil {
			return nil, nil, err
		}
		pl = s.plans[n]
	}

	var halves [2]*HalfPage
	for i := range halves {
		halves[i] = &HalfPage{Half: pl.halves[i], Ref: pl.refs[i]}
	}

	orig := s.remapAnnots(n, p, halves)

	contents, err := s.copyContents(p.Contents)
	if err != nil {
		return nil, nil, err
	}
	shared := pdf.Dict{}
	for _, key := range append([]pdf.Name{"Resources"}, copiedPageKeys...) {
		val, err := s.c.Copy(p.Dict[key])
		if err != nil {
			return nil, nil, err
		}
		if val != nil {
			shared[key] = val
		}
	}
	if p.Rotate != 0 {
		shared["Rotate"] = pdf.Integer(p.Rotate)
	}

	annots, err := s.writeAnnots(orig, halves)
	if err != nil {
		return nil, nil, err
	}

	suffix, err := s.contentSuffix()
	if err != nil {
		return nil, nil, err
	}
	for i, hp := range halves {
		dict := shared.Clone()
		dict["Type"] = pdf.Name("Page")
		dict["MediaBox"] = pdf.RectArray(hp.MediaBox())

		for _, box := range []struct {
			name pdf.Name
			r    *rect.Rect
		}{
			{"BleedBox", p.BleedBox},
			{"TrimBox", p.TrimBox},
			{"ArtBox", p.ArtBox},
		} {
			if box.r == nil {
				continue
			}
			if clipped, ok := hp.Clip(*box.r); ok {
				dict[box.name] = pdf.RectArray(hp.ApplyRect(clipped))
			}
		}

		prefix := s.out.Alloc()
		err := s.out.Put(prefix, &pdf.Stream{
			Dict: pdf.Dict{},
			R:    strings.NewReader(hp.ContentPrefix()),
		})
		if err != nil {
			return nil, nil, err
		}
		parts := make(pdf.Array, 0, len(contents)+2)
		parts = append(parts, prefix)
		parts = append(parts, contents...)
		parts = append(parts, suffix)
		dict["Contents"] = parts

		if len(annots[i]) > 0 {
			dict["Annots"] = annots[i]
		}
		hp.Dict = dict
	}

	return halves[0], halves[1], nil
}

// copyContents copies the content streams of a page.
func (s *Splitter) copyContents(obj pdf.Object) (pdf.Array, error) {
	if ref, ok := obj.(pdf.Reference); ok {
		val, err := s.r.Get(ref)
		if err != nil {
			return nil, err
		}
		if a, isArray := val.(pdf.Array); isArray {
			obj = a
		}
	}

	var parts pdf.Array
	if a, ok := obj.(pdf.Array); ok {
		for _, elem := range a {
			repl, err := s.c.Copy(elem)
			if err != nil {
				return nil, err
			}
			if repl != nil {
				parts = append(parts, repl)
			}
		}
	} else if obj != nil {
		repl, err := s.c.Copy(obj)
		if err != nil {
			return nil, err
		}
		if repl != nil {
			parts = append(parts, repl)
		}
	}
	return parts, nil
}

// contentSuffix returns the content stream which closes the graphics state
// opened by the content prefix.  The stream is shared by all pages.
func (s *Splitter) contentSuffix() (pdf.Reference, error) {
	if !s.suffix.IsZero() {
		return s.suffix, nil
	}
	ref := s.out.Alloc()
	err := s.out.Put(ref, &pdf.Stream{
		Dict: pdf.Dict{},
		R:    strings.NewReader("\nQ\n"),
	})
	if err != nil {
		return pdf.Reference{}, err
	}
	s.suffix = ref
	return ref, nil
}

// remapAnnots decodes the annotations of page number n and distributes
// them over the two halves.  The decoded annotations are returned, indexed
// by their position in the /Annots array.
func (s *Splitter) remapAnnots(n int, p *page.Page, halves [2]*HalfPage) map[int]*annotation.Annotation {
	orig := make(map[int]*annotation.Annotation)

	place := func(a *annotation.Annotation) bool {
		found := false
		for _, hp := range halves {
			if b, ok := annotation.Remap(a, &hp.Half); ok {
				hp.Annots = append(hp.Annots, b)
				found = true
			}
		}
		return found
	}

	var popups []*annotation.Annotation
	for i, obj := range p.Annots {
		a, err := annotation.Decode(s.r, i, obj)
		if err != nil {
			s.skip(Skip{Page: n, Annotation: i, Err: err}, nil)
			continue
		}
		orig[i] = a
		if a.Kind == annotation.KindPopup {
			popups = append(popups, a)
			continue
		}
		if !place(a) {
			s.skip(Skip{Page: n, Annotation: i, Kind: a.Kind, Err: ErrAnnotationOutOfBounds}, a.Dict)
		}
	}

	// Pop-up annotations are placed next to their parent annotation.
	for _, a := range popups {
		hasParent := false
		parentRef, _ := a.Dict["Parent"].(pdf.Reference)
		if !parentRef.IsZero() {
			for _, hp := range halves {
				idx := slices.IndexFunc(hp.Annots, func(b *annotation.Annotation) bool {
					return b.Ref == parentRef
				})
				if idx < 0 {
					continue
				}
				hp.Annots = append(hp.Annots, annotation.Follow(a, hp.Annots[idx], &hp.Half))
				hasParent = true
			}
		}
		if !hasParent && !place(a) {
			s.skip(Skip{Page: n, Annotation: a.Index, Kind: a.Kind, Err: ErrAnnotationOutOfBounds}, a.Dict)
		}
	}

	for _, hp := range halves {
		slices.SortStableFunc(hp.Annots, func(a, b *annotation.Annotation) int {
			return cmp.Compare(a.Index, b.Index)
		})
	}
	return orig
}

// writeAnnots allocates references for the remapped annotations of both
// halves and writes the annotation dictionaries.  The /Annots arrays of the
// two new pages are returned.
func (s *Splitter) writeAnnots(orig map[int]*annotation.Annotation, halves [2]*HalfPage) ([2]pdf.Array, error) {
	var annots [2]pdf.Array
	var newRefs [2][]pdf.Reference
	var refs [2]map[pdf.Reference]pdf.Reference
	copies := make(map[int][]pdf.Reference)
	for i, hp := range halves {
		refs[i] = make(map[pdf.Reference]pdf.Reference)
		for _, a := range hp.Annots {
			ref := s.out.Alloc()
			annots[i] = append(annots[i], ref)
			newRefs[i] = append(newRefs[i], ref)
			copies[a.Index] = append(copies[a.Index], ref)
			if !a.Ref.IsZero() {
				refs[i][a.Ref] = ref
			}
		}
	}

	// References from elsewhere in the document point to the first copy.
	for _, hp := range halves {
		for _, a := range hp.Annots {
			if a.Ref.IsZero() {
				continue
			}
			if _, done := s.c.Lookup(a.Ref); !done {
				s.c.Redirect(a.Ref, copies[a.Index][0])
			}
		}
	}

	widgets := make(map[int]fieldPlacement)
	indices := maps.Keys(orig)
	slices.Sort(indices)
	for _, idx := range indices {
		a := orig[idx]
		if a.Kind != annotation.KindWidget || len(copies[idx]) == 0 || s.form == nil {
			continue
		}
		fp, err := s.form.place(a.Ref, a.Dict, copies[idx])
		if err != nil {
			return annots, err
		}
		widgets[idx] = fp
	}

	for i, hp := range halves {
		other := refs[1-i]
		for j, a := range hp.Annots {
			dict, err := s.annotDict(a, orig[a.Index], hp.Ref)
			if err != nil {
				return annots, err
			}

			lookup := func(key pdf.Name, fallback bool) {
				ref, _ := a.Dict[key].(pdf.Reference)
				if ref.IsZero() {
					return
				}
				if newRef, ok := refs[i][ref]; ok {
					dict[key] = newRef
				} else if newRef, ok := other[ref]; ok && fallback {
					dict[key] = newRef
				}
			}
			lookup("Popup", false)
			lookup("IRT", true)
			switch a.Kind {
			case annotation.KindPopup:
				lookup("Parent", false)
			case annotation.KindWidget:
				if fp, ok := widgets[a.Index]; ok {
					if !fp.parent.IsZero() {
						dict["Parent"] = fp.parent
					}
					if fp.strip {
						for _, key := range fieldKeys {
							delete(dict, key)
						}
					}
				}
			}

			err = s.out.Put(newRefs[i][j], dict)
			if err != nil {
				return annots, err
			}
		}
	}
	return annots, nil
}

// annotSpecialKeys lists the annotation entries which are not copied
// verbatim.
var annotSpecialKeys = map[pdf.Name]bool{
	"AP":           true,
	"IRT":          true,
	"P":            true,
	"Parent":       true,
	"Popup":        true,
	"StructParent": true,
}

// annotDict builds the dictionary of the remapped annotation a.  The
// decoded annotation before remapping is orig.
func (s *Splitter) annotDict(a, orig *annotation.Annotation, pageRef pdf.Reference) (pdf.Dict, error) {
	// Pop-ups may have been moved next to their parent.
	clipped := a.Source != orig.Rect && a.Kind != annotation.KindPopup

	dict := pdf.Dict{}
	for _, key := range pdf.SortedKeys(a.Dict) {
		if annotSpecialKeys[key] || slices.Contains(annotation.GeometryKeys, key) {
			continue
		}
		if key == "RD" && clipped {
			continue
		}
		val, err := s.c.Copy(a.Dict[key])
		if err != nil {
			return nil, err
		}
		if val != nil {
			dict[key] = val
		}
	}
	for key, val := range a.Encode() {
		if val != nil {
			dict[key] = val
		}
	}
	dict["P"] = pageRef

	if ap := a.Dict["AP"]; ap != nil {
		var val pdf.Object
		var err error
		if clipped {
			val, err = s.wrapAppearance(ap, orig.Rect, a.Source)
		} else {
			val, err = s.c.Copy(ap)
		}
		if err != nil {
			return nil, err
		}
		if val != nil {
			dict["AP"] = val
		}
	}

	return dict, nil
}

// skip records a page or an annotation which is left out of the output.
func (s *Splitter) skip(sk Skip, dict pdf.Dict) {
	var name string
	if nm, err := pdf.GetString(s.r, dict["NM"]); err == nil && nm != nil {
		name = pdf.AsTextString(nm)
	}
	s.report.add(s.logger, sk, name)
}
