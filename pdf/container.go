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
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
)

// Getter gives access to the indirect objects of a PDF file.
type Getter interface {
	Get(Reference) (Object, error)
}

var errNoRectangle = errors.New("not a valid PDF rectangle")

// Resolve resolves references to indirect objects.
//
// If obj is a [Reference], the function reads the corresponding object from
// the file and returns the result.  If obj is not a [Reference], it is
// returned unchanged.  The function recursively follows chains of references
// until it resolves to a non-reference object.
//
// If a reference loop is encountered, the function returns an error of type
// [MalformedFileError].
func Resolve(r Getter, obj Object) (Object, error) {
	count := 0
	for {
		ref, isReference := obj.(Reference)
		if !isReference {
			break
		}
		count++
		if count > 16 {
			return nil, &MalformedFileError{
				Err: fmt.Errorf("too many levels of indirection for %s", ref),
			}
		}

		var err error
		obj, err = r.Get(ref)
		if err != nil {
			return nil, err
		}
	}

	return obj, nil
}

func resolveAndCast[T Object](r Getter, obj Object) (x T, err error) {
	obj, err = Resolve(r, obj)
	if err != nil {
		return x, err
	}

	if obj == nil {
		return x, nil
	}

	var isCorrectType bool
	x, isCorrectType = obj.(T)
	if isCorrectType {
		return x, nil
	}

	return x, &MalformedFileError{
		Err: fmt.Errorf("expected %T but got %T", x, obj),
	}
}

// Helper functions for getting objects of a specific type.  Each of these
// functions calls Resolve on the object before attempting to convert it to the
// desired type.  If the object is `null`, a zero object is returned without
// error.  If the object is of the wrong type, an error is returned.
var (
	GetArray  = resolveAndCast[Array]
	GetBool   = resolveAndCast[Bool]
	GetDict   = resolveAndCast[Dict]
	GetInt    = resolveAndCast[Integer]
	GetName   = resolveAndCast[Name]
	GetStream = resolveAndCast[*Stream]
	GetString = resolveAndCast[String]
)

// GetNumber resolves references and makes sure the result is an Integer or
// a Real.
func GetNumber(r Getter, obj Object) (float64, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	switch x := obj.(type) {
	case Integer:
		return float64(x), nil
	case Real:
		return float64(x), nil
	default:
		return 0, &MalformedFileError{
			Err: fmt.Errorf("expected number but got %T", obj),
		}
	}
}

// GetFloatArray reads an array of numbers.
// If the object is null, nil is returned.
func GetFloatArray(r Getter, obj Object) ([]float64, error) {
	a, err := GetArray(r, obj)
	if err != nil || a == nil {
		return nil, err
	}
	res := make([]float64, len(a))
	for i, elem := range a {
		res[i], err = GetNumber(r, elem)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// GetRectangle resolves references to indirect objects and makes sure the
// resulting object is a PDF rectangle object.  The corners of the returned
// rectangle are normalized so that LLx <= URx and LLy <= URy.
// If the object is null, nil is returned.
func GetRectangle(r Getter, obj Object) (*rect.Rect, error) {
	a, err := GetFloatArray(r, obj)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	if len(a) != 4 {
		return nil, &MalformedFileError{Err: errNoRectangle}
	}
	return &rect.Rect{
		LLx: math.Min(a[0], a[2]),
		LLy: math.Min(a[1], a[3]),
		URx: math.Max(a[0], a[2]),
		URy: math.Max(a[1], a[3]),
	}, nil
}

// RectArray converts a rectangle into a PDF array.
func RectArray(r rect.Rect) Array {
	return FloatArray(r.LLx, r.LLy, r.URx, r.URy)
}

// FloatArray converts a list of numbers into a PDF array.  The numbers are
// stored exactly, integral values as integers.
func FloatArray(xx ...float64) Array {
	res := make(Array, len(xx))
	for i, x := range xx {
		res[i] = Number(x)
	}
	return res
}

// Round rounds x to the given number of decimal digits.
func Round(x float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	res := math.Round(x*scale) / scale
	if res == 0 {
		res = 0 // avoid negative zero
	}
	return res
}
