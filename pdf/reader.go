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
	"fmt"
	"io"
	"os"
)

// Reader represents a pdf file opened for reading.  Use the function Open()
// or NewReader() to create a new Reader.
type Reader struct {
	// Version is the PDF version used in this file.  This is specified in
	// the initial comment at the start of the file, and may be overridden by
	// the /Version entry in the document catalog.
	Version Version

	// The ID of the file.  This is either a slice of two byte slices (the
	// original ID of the file, and the ID of the current version), or nil if
	// the file does not specify an ID.
	ID [][]byte

	// Trailer holds the /Root, /Info and /ID entries of the file trailer.
	Trailer Dict

	// Repaired is set if the cross-reference information of the file was
	// damaged and had to be reconstructed.
	Repaired bool

	size   int64
	r      io.ReaderAt
	closer io.Closer

	xref   map[uint32]*xRefEntry
	cache  *objectCache
	objStm map[Reference]*objStmData
}

// ReaderOptions controls how a file is read.  A nil *ReaderOptions is
// equivalent to the zero value.
type ReaderOptions struct {
	// CacheSize is the number of objects kept in memory.
	// If this is zero, a default size is used.
	CacheSize int
}

const defaultCacheSize = 256

// Open opens the named PDF file for reading.  After use, Close() must be
// called to close the file the Reader is reading from.
func Open(fname string, opt *ReaderOptions) (*Reader, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	fi, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, err
	}
	r, err := NewReader(fd, fi.Size(), opt)
	if err != nil {
		fd.Close()
		return nil, err
	}
	r.closer = fd
	return r, nil
}

// NewReader creates a new Reader object.
func NewReader(data io.ReaderAt, size int64, opt *ReaderOptions) (*Reader, error) {
	if opt == nil {
		opt = &ReaderOptions{}
	}
	cacheSize := opt.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}

	r := &Reader{
		size:   size,
		r:      data,
		cache:  newObjectCache(cacheSize),
		objStm: make(map[Reference]*objStmData),
	}

	s := r.scannerAt(0)
	version, err := s.readHeaderVersion()
	if err != nil {
		return nil, err
	}
	r.Version = version

	trailer, err := r.readXRef()
	if err != nil {
		trailer, err = r.reconstruct()
		if err != nil {
			return nil, err
		}
	}

	if trailer["Encrypt"] != nil {
		return nil, ErrEncrypted
	}

	catalog, err := r.catalogFrom(trailer)
	if (err != nil || catalog == nil) && !r.Repaired {
		trailer, err = r.reconstruct()
		if err != nil {
			return nil, err
		}
		catalog, err = r.catalogFrom(trailer)
	}
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, &MalformedFileError{Err: errors.New("document catalog not found")}
	}
	r.Trailer = trailer

	if verName, _ := GetName(r, catalog["Version"]); verName != "" {
		catVersion, err := ParseVersion(string(verName))
		if err == nil && catVersion > r.Version {
			r.Version = catVersion
		}
	}

	ID, ok := trailer["ID"].(Array)
	if ok && len(ID) >= 2 {
		for i := 0; i < 2; i++ {
			s, ok := ID[i].(String)
			if !ok {
				break
			}
			r.ID = append(r.ID, []byte(s))
		}
		if len(r.ID) != 2 {
			r.ID = nil
		}
	}

	return r, nil
}

func (r *Reader) catalogFrom(trailer Dict) (Dict, error) {
	catalog, err := GetDict(r, trailer["Root"])
	if err != nil {
		return nil, err
	}
	if catalog != nil && catalog["Pages"] == nil {
		return nil, &MalformedFileError{Err: errNoPages}
	}
	return catalog, nil
}

// Close closes the underlying file, if the reader was created by Open().
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Catalog returns the document catalog.
func (r *Reader) Catalog() (Dict, error) {
	return GetDict(r, r.Trailer["Root"])
}

// Get reads an indirect object from the PDF file.  If the object is not
// present, nil is returned without an error.
//
// Streams are returned with their data unread, and the stream data can only
// be read once.
func (r *Reader) Get(ref Reference) (Object, error) {
	if obj, ok := r.cache.Get(ref); ok {
		return obj, nil
	}

	obj, err := r.get(ref)
	if err != nil && !r.Repaired {
		// The xref information may be stale.  Try again with
		// reconstructed cross-reference data.
		if _, repairErr := r.reconstruct(); repairErr == nil {
			obj, err = r.get(ref)
		}
	}
	if err != nil {
		return nil, err
	}

	r.cache.Put(ref, obj)
	return obj, nil
}

func (r *Reader) get(ref Reference) (Object, error) {
	entry := r.xref[ref.Number]
	if entry == nil || entry.Free {
		return nil, nil
	}

	if !entry.InStream.IsZero() {
		if ref.Generation != 0 {
			return nil, nil
		}
		return r.getFromObjectStream(ref.Number, entry.InStream, int(entry.Pos))
	}

	if entry.Generation != ref.Generation {
		return nil, nil
	}
	if entry.Pos < 0 || entry.Pos >= r.size {
		return nil, &MalformedFileError{
			Err: fmt.Errorf("object %s outside the file", ref),
		}
	}

	s := r.scannerAt(entry.Pos)
	obj, fileRef, err := s.ReadIndirectObject()
	if err != nil {
		return nil, err
	}
	if fileRef != ref {
		return nil, &MalformedFileError{
			Pos: entry.Pos,
			Err: fmt.Errorf("expected object %s but found %s", ref, fileRef),
		}
	}
	return obj, nil
}

// objStmData holds the decoded contents of an object stream.
type objStmData struct {
	numbers []uint32
	offsets []int64 // relative to the start of data
	data    []byte
}

func (r *Reader) getFromObjectStream(number uint32, stmRef Reference, idx int) (Object, error) {
	contents, err := r.loadObjectStream(stmRef)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(contents.numbers) || contents.numbers[idx] != number {
		// fall back to a linear search, some writers get the index wrong
		idx = -1
		for i, n := range contents.numbers {
			if n == number {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, &MalformedFileError{
				Err: fmt.Errorf("object %d not found in object stream %s", number, stmRef),
			}
		}
	}
	return contents.objectAt(idx)
}

func (c *objStmData) objectAt(idx int) (Object, error) {
	start := c.offsets[idx]
	if start < 0 || start > int64(len(c.data)) {
		return nil, &MalformedFileError{Err: errors.New("invalid object stream offset")}
	}
	s := newScanner(bytes.NewReader(c.data[start:]), nil, 0, nil)
	err := s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	return s.ReadObject()
}

func (r *Reader) loadObjectStream(stmRef Reference) (*objStmData, error) {
	if contents, ok := r.objStm[stmRef]; ok {
		return contents, nil
	}

	stm, err := GetStream(r, stmRef)
	if err != nil {
		return nil, err
	}
	if stm == nil {
		return nil, &MalformedFileError{
			Err: fmt.Errorf("missing object stream %s", stmRef),
		}
	}
	contents, err := decodeObjectStream(r, stm)
	if err != nil {
		return nil, err
	}
	r.objStm[stmRef] = contents
	return contents, nil
}

func decodeObjectStream(r Getter, stm *Stream) (*objStmData, error) {
	n, err := GetInt(r, stm.Dict["N"])
	if err != nil {
		return nil, err
	}
	first, err := GetInt(r, stm.Dict["First"])
	if err != nil {
		return nil, err
	}
	if n < 0 || first < 0 {
		return nil, &MalformedFileError{Err: errors.New("invalid object stream header")}
	}

	decoded, err := DecodeStream(r, stm)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, err
	}
	if int64(first) > int64(len(data)) {
		return nil, &MalformedFileError{Err: errors.New("invalid object stream header")}
	}

	s := newScanner(bytes.NewReader(data[:first]), nil, 0, nil)
	contents := &objStmData{data: data[first:]}
	for i := 0; i < int(n); i++ {
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		number, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		offset, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		if number < 0 || number > 1<<32-1 {
			return nil, &MalformedFileError{Err: errInvalidReference}
		}
		contents.numbers = append(contents.numbers, uint32(number))
		contents.offsets = append(contents.offsets, int64(offset))
	}
	return contents, nil
}

func (r *Reader) scannerAt(pos int64) *scanner {
	section := io.NewSectionReader(r.r, pos, r.size-pos)
	return newScanner(section, r.r, pos, r.getInt)
}

// getInt is used by the scanner to read stream lengths.
func (r *Reader) getInt(obj Object) (Integer, error) {
	if ref, ok := obj.(Reference); ok {
		var err error
		obj, err = r.get(ref)
		if err != nil {
			return 0, err
		}
	}
	x, ok := obj.(Integer)
	if !ok {
		return 0, &MalformedFileError{
			Err: fmt.Errorf("invalid stream length %s", Format(obj)),
		}
	}
	return x, nil
}
