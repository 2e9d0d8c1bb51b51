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
	"errors"
	"io"
	"log/slog"

	"golang.org/x/text/language"
	"seehuhn.de/go/pdfsplit/page"
	"seehuhn.de/go/pdfsplit/pagetree"
	"seehuhn.de/go/pdfsplit/pdf"
)

// catalogKeys lists the entries of the document catalog which are copied
// to the output.  Page labels, threads and the structure tree refer to
// the pages of the input and are left out.
var catalogKeys = []pdf.Name{
	"AA", "Dests", "Metadata", "Names", "OCProperties", "OpenAction",
	"Outlines", "PageLayout", "PageMode", "URI", "ViewerPreferences",
}

// Assemble splits all pages of the document r and writes the resulting
// document to w.  The pages of the output are the left and right halves of
// the input pages, in order.
//
// Pages and annotations which cannot be placed are left out and are listed
// in the returned report.  Errors are returned for problems reading the
// input or writing the output only.  The output does not depend on
// anything but the input, so that splitting the same document twice gives
// identical files.
func Assemble(r *pdf.Reader, w io.Writer, opt *Options) (*Report, error) {
	if opt == nil {
		opt = &Options{}
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	catalog, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	tree, err := pagetree.Read(r, catalog["Pages"])
	if err != nil {
		return nil, err
	}

	out, err := pdf.NewWriter(w, r.Version)
	if err != nil {
		return nil, err
	}
	out.ID = r.ID

	report := &Report{Pages: len(tree.Pages)}
	s := newSplitter(r, out, logger, report)

	for _, ref := range tree.Nodes {
		s.c.Omit(ref)
	}
	if ref, ok := catalog["StructTreeRoot"].(pdf.Reference); ok {
		s.c.Omit(ref)
	}

	pages := make([]*page.Page, len(tree.Pages))
	for i, leaf := range tree.Pages {
		p, err := page.Decode(r, leaf.Ref, leaf.Dict)
		if err != nil {
			return report, err
		}
		pages[i] = p
		s.omitAnnots(p)

		err = s.plan(i+1, p)
		if errors.Is(err, ErrDegenerateGeometry) {
			s.skip(Skip{Page: i + 1, Annotation: -1, Err: err}, nil)
			if !p.Ref.IsZero() {
				s.c.Omit(p.Ref)
			}
		} else if err != nil {
			return report, err
		}
	}

	if acroForm, _ := pdf.GetDict(r, catalog["AcroForm"]); acroForm != nil {
		s.form, err = newForm(r, s.c, out, acroForm)
		if err != nil {
			return report, err
		}
	}

	pageTree := pagetree.NewWriter(out)
	for i, p := range pages {
		if s.plans[i+1] != nil {
			left, right, err := s.Split(i+1, p)
			if err != nil {
				return report, err
			}
			for _, hp := range []*HalfPage{left, right} {
				err = pageTree.AppendPage(hp.Ref, hp.Dict)
				if err != nil {
					return report, err
				}
			}
			report.Split++
		}
		if opt.Progress != nil {
			opt.Progress(i+1, len(pages))
		}
	}
	pagesRef, err := pageTree.Close()
	if err != nil {
		return report, err
	}

	newCatalog := pdf.Dict{
		"Type":  pdf.Name("Catalog"),
		"Pages": pagesRef,
	}
	for _, key := range catalogKeys {
		val, err := s.c.Copy(catalog[key])
		if err != nil {
			return report, err
		}
		if val != nil {
			newCatalog[key] = val
		}
	}
	if lang, err := pdf.GetString(r, catalog["Lang"]); err == nil && lang != nil {
		newCatalog["Lang"] = normalizeLang(lang)
	}
	if s.form != nil {
		acroForm, err := s.form.finish()
		if err != nil {
			return report, err
		}
		if acroForm != nil {
			newCatalog["AcroForm"] = acroForm
		}
	}
	catalogRef := out.Alloc()
	err = out.Put(catalogRef, newCatalog)
	if err != nil {
		return report, err
	}

	var infoRef pdf.Reference
	info, err := s.c.Copy(r.Trailer["Info"])
	if err != nil {
		return report, err
	}
	switch info := info.(type) {
	case pdf.Reference:
		infoRef = info
	case pdf.Dict:
		infoRef = out.Alloc()
		err = out.Put(infoRef, info)
		if err != nil {
			return report, err
		}
	}

	err = out.Close(catalogRef, infoRef)
	if err != nil {
		return report, err
	}
	return report, nil
}

// normalizeLang converts the /Lang entry of the catalog into a canonical
// BCP 47 language tag.  Invalid tags are kept unchanged.
func normalizeLang(lang pdf.String) pdf.String {
	tag, err := language.Parse(pdf.AsTextString(lang))
	if err != nil {
		return lang
	}
	return pdf.TextString(tag.String())
}
