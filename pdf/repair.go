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
	"bytes"
	"errors"
	"io"
	"regexp"
	"slices"
	"strconv"

	"golang.org/x/exp/maps"
)

var (
	objectHeader  = regexp.MustCompile(`(?:^|[^0-9])([0-9]{1,10})[ \t\r\n\f\x00]+([0-9]{1,5})[ \t\r\n\f\x00]+obj\b`)
	trailerHeader = regexp.MustCompile(`trailer[ \t\r\n\f\x00]*<<`)
)

// reconstruct rebuilds the cross-reference information by scanning the whole
// file for object headers.  This is used when the xref table is missing or
// damaged.
func (r *Reader) reconstruct() (Dict, error) {
	r.Repaired = true

	data := make([]byte, r.size)
	n, err := r.r.ReadAt(data, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	data = data[:n]

	xref := make(map[uint32]*xRefEntry)
	for _, m := range objectHeader.FindAllSubmatchIndex(data, -1) {
		number, err1 := strconv.ParseUint(string(data[m[2]:m[3]]), 10, 32)
		generation, err2 := strconv.ParseUint(string(data[m[4]:m[5]]), 10, 16)
		if err1 != nil || err2 != nil || number == 0 {
			continue
		}
		// later definitions override earlier ones, as for incremental updates
		xref[uint32(number)] = &xRefEntry{
			Pos:        int64(m[2]),
			Generation: uint16(generation),
		}
	}
	if len(xref) == 0 {
		return nil, &MalformedFileError{Err: errors.New("no objects found")}
	}
	r.xref = xref
	r.cache = newObjectCache(r.cache.capacity)
	r.objStm = make(map[Reference]*objStmData)

	// Objects inside object streams.  Direct definitions take precedence.
	trailer := Dict{}
	var catalogs []Reference
	numbers := maps.Keys(xref)
	slices.Sort(numbers)
	for _, number := range numbers {
		entry := xref[number]
		if !entry.InStream.IsZero() {
			continue
		}
		ref := NewReference(number, entry.Generation)
		obj, err := r.get(ref)
		if err != nil {
			continue
		}
		switch obj := obj.(type) {
		case *Stream:
			tp, _ := obj.Dict["Type"].(Name)
			switch tp {
			case "ObjStm":
				contents, err := decodeObjectStream(r, obj)
				if err != nil {
					continue
				}
				r.objStm[ref] = contents
				for idx, n := range contents.numbers {
					if _, exists := xref[n]; exists {
						continue
					}
					xref[n] = &xRefEntry{Pos: int64(idx), InStream: ref}
					if inner, err := contents.objectAt(idx); err == nil && isCatalog(inner) {
						catalogs = append(catalogs, NewReference(n, 0))
					}
				}
			case "XRef":
				mergeTrailer(trailer, obj.Dict)
			}
		case Dict:
			if isCatalog(obj) {
				catalogs = append(catalogs, ref)
			}
		}
	}

	// Classic trailers, the last one in the file is the newest.
	matches := trailerHeader.FindAllIndex(data, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		s := newScanner(bytes.NewReader(data[matches[i][1]-2:]), nil, 0, nil)
		dict, err := s.ReadDict()
		if err != nil {
			continue
		}
		mergeTrailer(trailer, dict)
	}

	if root, ok := trailer["Root"].(Reference); !ok || !r.isCatalogRef(root) {
		delete(trailer, "Root")
		if len(catalogs) > 0 {
			trailer["Root"] = catalogs[len(catalogs)-1]
		}
	}
	if trailer["Root"] == nil {
		return nil, &MalformedFileError{Err: errors.New("document catalog not found")}
	}
	return trailer, nil
}

func (r *Reader) isCatalogRef(ref Reference) bool {
	obj, err := r.Get(ref)
	return err == nil && isCatalog(obj)
}

func isCatalog(obj Object) bool {
	dict, ok := obj.(Dict)
	if !ok {
		return false
	}
	tp, _ := dict["Type"].(Name)
	return tp == "Catalog" && dict["Pages"] != nil
}

// mergeTrailer copies trailer entries from src which are not yet set in dst.
func mergeTrailer(dst, src Dict) {
	for _, key := range []Name{"Root", "Encrypt", "Info", "ID"} {
		if _, done := dst[key]; done {
			continue
		}
		if val, ok := src[key]; ok {
			dst[key] = val
		}
	}
}
