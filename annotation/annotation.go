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

// Package annotation decodes PDF annotations and maps their geometry onto
// one half of a split page.
package annotation

import (
	"errors"
	"fmt"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdfsplit/pdf"
)

// PDF 2.0 sections: 12.5.2 12.5.6

var (
	// ErrInvalid indicates an annotation without a valid /Rect entry.
	ErrInvalid = errors.New("invalid annotation")

	// ErrOutOfBounds indicates an annotation outside the visible area of
	// the page.
	ErrOutOfBounds = errors.New("annotation outside the visible page area")
)

// Kind is the annotation type, as given by the /Subtype entry.
type Kind pdf.Name

// These are the annotation types defined in PDF 2.0.
const (
	KindText           Kind = "Text"
	KindLink           Kind = "Link"
	KindFreeText       Kind = "FreeText"
	KindLine           Kind = "Line"
	KindSquare         Kind = "Square"
	KindCircle         Kind = "Circle"
	KindPolygon        Kind = "Polygon"
	KindPolyLine       Kind = "PolyLine"
	KindHighlight      Kind = "Highlight"
	KindUnderline      Kind = "Underline"
	KindSquiggly       Kind = "Squiggly"
	KindStrikeOut      Kind = "StrikeOut"
	KindCaret          Kind = "Caret"
	KindStamp          Kind = "Stamp"
	KindInk            Kind = "Ink"
	KindPopup          Kind = "Popup"
	KindFileAttachment Kind = "FileAttachment"
	KindSound          Kind = "Sound"
	KindMovie          Kind = "Movie"
	KindScreen         Kind = "Screen"
	KindWidget         Kind = "Widget"
	KindPrinterMark    Kind = "PrinterMark"
	KindTrapNet        Kind = "TrapNet"
	KindWatermark      Kind = "Watermark"
	Kind3D             Kind = "3D"
	KindRedact         Kind = "Redact"
	KindProjection     Kind = "Projection"
	KindRichMedia      Kind = "RichMedia"

	// KindUnknown is used for all other subtypes.  Annotations of unknown
	// type are placed using their /Rect entry only.
	KindUnknown Kind = ""
)

var knownKinds = map[Kind]bool{
	KindText: true, KindLink: true, KindFreeText: true, KindLine: true,
	KindSquare: true, KindCircle: true, KindPolygon: true, KindPolyLine: true,
	KindHighlight: true, KindUnderline: true, KindSquiggly: true,
	KindStrikeOut: true, KindCaret: true, KindStamp: true, KindInk: true,
	KindPopup: true, KindFileAttachment: true, KindSound: true,
	KindMovie: true, KindScreen: true, KindWidget: true,
	KindPrinterMark: true, KindTrapNet: true, KindWatermark: true,
	Kind3D: true, KindRedact: true, KindProjection: true, KindRichMedia: true,
}

// ParseKind maps an annotation subtype to a Kind.
func ParseKind(subtype pdf.Name) Kind {
	k := Kind(subtype)
	if knownKinds[k] {
		return k
	}
	return KindUnknown
}

func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Quad is a quadrilateral, as used in /QuadPoints arrays.
type Quad [4]vec.Vec2

// Geometry holds the geometric data of an annotation.
type Geometry struct {
	// Rect is the annotation rectangle.
	Rect rect.Rect

	// Quads holds the /QuadPoints of link, text markup and redaction
	// annotations.
	Quads []Quad

	// Vertices holds the /Vertices of polygon and polyline annotations.
	Vertices []vec.Vec2

	// Line holds the two end points (/L) of a line annotation.
	Line []vec.Vec2

	// Callout holds the callout line (/CL) of a free text annotation.
	Callout []vec.Vec2

	// Ink holds the paths (/InkList) of an ink annotation.
	Ink [][]vec.Vec2
}

// HasPoints reports whether the annotation geometry is given by a list of
// points, in addition to the rectangle.
func (g *Geometry) HasPoints() bool {
	return len(g.Quads) > 0 || len(g.Vertices) > 0 || len(g.Line) > 0 || len(g.Ink) > 0
}

// GeometryKeys lists the annotation dictionary entries which are described
// by [Geometry].
var GeometryKeys = []pdf.Name{"Rect", "QuadPoints", "Vertices", "L", "CL", "InkList"}

// Annotation is an annotation of a source page.
type Annotation struct {
	// Index is the position of the annotation in the /Annots array of the
	// page.
	Index int

	// Ref is the reference of the annotation dictionary, or zero if the
	// annotation is stored as a direct object.
	Ref pdf.Reference

	// Kind is the annotation type.
	Kind Kind

	// Subtype is the /Subtype entry, as found in the file.
	Subtype pdf.Name

	Geometry

	// Source is the part of the annotation rectangle covered by this
	// annotation, in source page coordinates.  For decoded annotations this
	// equals Rect.  After remapping, this is the clipped rectangle before
	// translation.
	Source rect.Rect

	// Dict is the annotation dictionary.  This is shared between an
	// annotation and its remapped copies and must not be modified.
	Dict pdf.Dict
}

// Decode reads the annotation with the given position in the /Annots array.
// Malformed auxiliary geometry is ignored.
func Decode(r pdf.Getter, index int, obj pdf.Object) (*Annotation, error) {
	a := &Annotation{Index: index}
	if ref, ok := obj.(pdf.Reference); ok {
		a.Ref = ref
	}

	dict, err := pdf.GetDict(r, obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if dict == nil {
		return nil, fmt.Errorf("%w: missing dictionary", ErrInvalid)
	}
	a.Dict = dict

	subtype, _ := pdf.GetName(r, dict["Subtype"])
	a.Subtype = subtype
	a.Kind = ParseKind(subtype)

	bbox, err := pdf.GetRectangle(r, dict["Rect"])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if bbox == nil {
		return nil, fmt.Errorf("%w: missing /Rect", ErrInvalid)
	}
	a.Rect = *bbox
	a.Source = *bbox

	if pts, _ := getPoints(r, dict["QuadPoints"]); len(pts) >= 4 {
		for i := 0; i+4 <= len(pts); i += 4 {
			a.Quads = append(a.Quads, Quad{pts[i], pts[i+1], pts[i+2], pts[i+3]})
		}
	}
	a.Vertices, _ = getPoints(r, dict["Vertices"])
	if pts, _ := getPoints(r, dict["L"]); len(pts) == 2 {
		a.Line = pts
	}
	if pts, _ := getPoints(r, dict["CL"]); len(pts) == 2 || len(pts) == 3 {
		a.Callout = pts
	}
	if inkList, _ := pdf.GetArray(r, dict["InkList"]); inkList != nil {
		for _, path := range inkList {
			pts, err := getPoints(r, path)
			if err == nil && len(pts) > 0 {
				a.Ink = append(a.Ink, pts)
			}
		}
	}

	return a, nil
}

// getPoints reads an array of numbers as a list of points.
func getPoints(r pdf.Getter, obj pdf.Object) ([]vec.Vec2, error) {
	xx, err := pdf.GetFloatArray(r, obj)
	if err != nil || xx == nil {
		return nil, err
	}
	if len(xx)%2 != 0 {
		return nil, errors.New("odd number of coordinates")
	}
	res := make([]vec.Vec2, len(xx)/2)
	for i := range res {
		res[i] = vec.Vec2{X: xx[2*i], Y: xx[2*i+1]}
	}
	return res, nil
}

// Points converts a list of points to a PDF array.
func Points(pts []vec.Vec2) pdf.Array {
	xx := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		xx = append(xx, p.X, p.Y)
	}
	return pdf.FloatArray(xx...)
}

// Encode returns the dictionary entries for the geometry.  Entries for
// absent geometry are set to nil.
func (g *Geometry) Encode() pdf.Dict {
	res := pdf.Dict{
		"Rect": pdf.RectArray(g.Rect),
	}
	for _, key := range GeometryKeys[1:] {
		res[key] = nil
	}

	if len(g.Quads) > 0 {
		var pts []vec.Vec2
		for _, q := range g.Quads {
			pts = append(pts, q[:]...)
		}
		res["QuadPoints"] = Points(pts)
	}
	if len(g.Vertices) > 0 {
		res["Vertices"] = Points(g.Vertices)
	}
	if len(g.Line) > 0 {
		res["L"] = Points(g.Line)
	}
	if len(g.Callout) > 0 {
		res["CL"] = Points(g.Callout)
	}
	if len(g.Ink) > 0 {
		inkList := make(pdf.Array, len(g.Ink))
		for i, path := range g.Ink {
			inkList[i] = Points(path)
		}
		res["InkList"] = inkList
	}
	return res
}
