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
	"fmt"
	"log/slog"

	"seehuhn.de/go/pdfsplit/annotation"
)

// Options controls how a document is split.  A nil *Options is equivalent
// to the zero value.
type Options struct {
	// Logger, if set, receives a warning for every page or annotation left
	// out of the output.
	Logger *slog.Logger

	// Progress, if set, is called after each page of the input has been
	// processed.  Pages are numbered starting from 1.
	Progress func(page, total int)
}

// Report summarizes a run.
type Report struct {
	// Pages is the number of pages of the input document.
	Pages int

	// Split is the number of input pages which were split.
	// The output document has 2*Split pages.
	Split int

	// Skips lists the pages and annotations left out of the output, in
	// document order.
	Skips []Skip
}

// Skip describes a page or an annotation which was left out of the output.
type Skip struct {
	// Page is the number of the page in the input document, starting
	// from 1.
	Page int

	// Annotation is the position of the annotation in the /Annots array of
	// the page, or -1 if the whole page was left out.
	Annotation int

	// Kind is the annotation type, if known.
	Kind annotation.Kind

	// Err gives the reason.  This wraps one of ErrDegenerateGeometry,
	// ErrAnnotationOutOfBounds or ErrAnnotationInvalid.
	Err error
}

func (s Skip) String() string {
	if s.Annotation < 0 {
		return fmt.Sprintf("page %d: %s", s.Page, s.Err)
	}
	return fmt.Sprintf("page %d, annotation %d (%s): %s",
		s.Page, s.Annotation, s.Kind, s.Err)
}

// add records a skip and logs it.
func (r *Report) add(logger *slog.Logger, s Skip, name string) {
	r.Skips = append(r.Skips, s)

	attrs := []any{slog.Int("page", s.Page)}
	msg := "page skipped"
	if s.Annotation >= 0 {
		msg = "annotation skipped"
		attrs = append(attrs,
			slog.Int("annotation", s.Annotation),
			slog.String("kind", s.Kind.String()))
		if name != "" {
			attrs = append(attrs, slog.String("name", name))
		}
	}
	attrs = append(attrs, slog.String("reason", s.Err.Error()))
	logger.Warn(msg, attrs...)
}
