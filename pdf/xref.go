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
	"math"
)

type xRefEntry struct {
	Pos        int64 // file offset, or index inside an object stream
	Generation uint16
	InStream   Reference // object stream containing the object, if any
	Free       bool
}

type xRefSubSection struct {
	Start, Size int
}

func (r *Reader) findXRef() (int64, error) {
	pos, err := r.lastOccurence("startxref")
	if err != nil {
		return 0, err
	}
	s := r.scannerAt(pos + 9)
	err = s.SkipWhiteSpace()
	if err != nil {
		return 0, err
	}

	xRefPos, err := s.ReadInteger()
	if err != nil {
		return 0, err
	}

	if xRefPos <= 0 || int64(xRefPos) >= r.size {
		return 0, &MalformedFileError{
			Pos: s.currentPos(),
			Err: errors.New("invalid xref position"),
		}
	}

	return int64(xRefPos), nil
}

func (r *Reader) lastOccurence(pat string) (int64, error) {
	const chunkSize = 1024

	buf := make([]byte, chunkSize)
	k := int64(len(pat))
	pos := r.size
	for pos >= k {
		start := pos - chunkSize
		if start < 0 {
			start = 0
		}
		n, err := r.r.ReadAt(buf[:pos-start], start)
		if err != nil && err != io.EOF {
			return 0, err
		}

		idx := bytes.LastIndex(buf[:n], []byte(pat))
		if idx >= 0 {
			return start + int64(idx), nil
		}

		if start == 0 {
			break
		}
		pos = start + k - 1
	}
	return 0, &MalformedFileError{
		Err: fmt.Errorf("%q not found", pat),
	}
}

// readXRef reads all cross-reference sections of the file, following the
// /Prev chain from the newest section to the oldest.  Entries from newer
// sections take precedence.
func (r *Reader) readXRef() (Dict, error) {
	start, err := r.findXRef()
	if err != nil {
		return nil, err
	}

	r.xref = make(map[uint32]*xRefEntry)
	trailer := Dict{}
	seen := make(map[int64]bool)
	for {
		// avoid xref loops
		if seen[start] {
			break
		}
		seen[start] = true

		s := r.scannerAt(start)
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		buf, err := s.Peek(4)
		if err != nil {
			return nil, err
		}
		var dict Dict
		if bytes.Equal(buf, []byte("xref")) {
			dict, err = r.readXRefTable(s)
			if err != nil {
				return nil, err
			}

			// hybrid files store the compressed objects in a separate stream
			if zStart, ok := dict["XRefStm"].(Integer); ok {
				if zStart <= 0 || int64(zStart) >= r.size {
					return nil, &MalformedFileError{
						Pos: start,
						Err: errors.New("invalid /XRefStm"),
					}
				}
				_, err = r.readXRefStream(r.scannerAt(int64(zStart)))
				if err != nil {
					return nil, err
				}
			}
		} else {
			dict, err = r.readXRefStream(s)
			if err != nil {
				return nil, err
			}
		}

		mergeTrailer(trailer, dict)

		prev := dict["Prev"]
		if prev == nil {
			break
		}
		prevStart, ok := prev.(Integer)
		if !ok || prevStart <= 0 || int64(prevStart) >= r.size {
			return nil, &MalformedFileError{
				Pos: start,
				Err: fmt.Errorf("invalid /Prev value %s", Format(prev)),
			}
		}
		start = int64(prevStart)
	}

	return trailer, nil
}

func (r *Reader) readXRefTable(s *scanner) (Dict, error) {
	err := s.SkipString("xref")
	if err != nil {
		return nil, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}

	for {
		buf, err := s.Peek(1)
		if err != nil {
			return nil, err
		}
		if len(buf) == 0 || buf[0] < '0' || buf[0] > '9' {
			break
		}

		start, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		length, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		if start < 0 || length < 0 || start+length > math.MaxUint32 {
			return nil, &MalformedFileError{
				Pos: s.currentPos(),
				Err: errors.New("invalid xref subsection"),
			}
		}

		err = r.decodeXRefSection(s, uint32(start), uint32(start+length))
		if err != nil {
			return nil, err
		}
	}

	err = s.SkipString("trailer")
	if err != nil {
		return nil, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	return s.ReadDict()
}

// decodeXRefSection reads the entries of one xref subsection.  Each entry
// has the form "oooooooooo ggggg n" followed by an end-of-line marker, but
// some writers use non-standard widths, so the entries are read as tokens.
func (r *Reader) decodeXRefSection(s *scanner, start, end uint32) error {
	for i := start; i < end; i++ {
		a, err := s.ReadInteger()
		if err != nil {
			return err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return err
		}
		b, err := s.ReadInteger()
		if err != nil {
			return err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return err
		}
		buf, err := s.Peek(1)
		if err != nil {
			return err
		}
		if len(buf) == 0 {
			return &MalformedFileError{Pos: s.currentPos(), Err: io.ErrUnexpectedEOF}
		}
		c := buf[0]
		s.pos++
		err = s.SkipWhiteSpace()
		if err != nil {
			return err
		}

		if r.xref[i] != nil {
			continue
		}
		// fix a common error in some PDF files
		if b > math.MaxUint16 {
			b = math.MaxUint16
		}
		switch c {
		case 'f':
			r.xref[i] = &xRefEntry{Free: true, Generation: uint16(b)}
		case 'n':
			if a <= 0 {
				// some writers mark missing objects as in use at offset 0
				r.xref[i] = &xRefEntry{Free: true}
				continue
			}
			r.xref[i] = &xRefEntry{Pos: int64(a), Generation: uint16(b)}
		default:
			return &MalformedFileError{
				Pos: s.currentPos(),
				Err: errors.New("malformed xref table"),
			}
		}
	}
	return nil
}

func (r *Reader) readXRefStream(s *scanner) (Dict, error) {
	obj, _, err := s.ReadIndirectObject()
	if err != nil {
		return nil, err
	}
	stream, ok := obj.(*Stream)
	if !ok {
		return nil, &MalformedFileError{
			Pos: s.currentPos(),
			Err: errors.New("invalid xref stream"),
		}
	}
	dict := stream.Dict

	w, ss, err := checkXRefStreamDict(dict)
	if err != nil {
		return nil, err
	}
	data, err := DecodeStream(r, stream)
	if err != nil {
		return nil, err
	}
	err = r.decodeXRefStream(data, w, ss)
	if err != nil {
		return nil, err
	}

	return dict, nil
}

func checkXRefStreamDict(dict Dict) ([]int, []xRefSubSection, error) {
	errBadDict := &MalformedFileError{Err: errors.New("invalid xref stream dictionary")}

	size, ok := dict["Size"].(Integer)
	if !ok || size < 0 {
		return nil, nil, errBadDict
	}
	W, ok := dict["W"].(Array)
	if !ok || len(W) < 3 {
		return nil, nil, errBadDict
	}
	var w []int
	for _, Wi := range W {
		wi, ok := Wi.(Integer)
		if !ok || wi < 0 || wi > 8 {
			return nil, nil, errBadDict
		}
		w = append(w, int(wi))
	}

	var ss []xRefSubSection
	switch ind := dict["Index"].(type) {
	case nil:
		ss = append(ss, xRefSubSection{0, int(size)})
	case Array:
		if len(ind)%2 != 0 {
			return nil, nil, errBadDict
		}
		for i := 0; i < len(ind); i += 2 {
			start, ok1 := ind[i].(Integer)
			size, ok2 := ind[i+1].(Integer)
			if !ok1 || !ok2 || start < 0 || size < 0 || start+size > math.MaxUint32 {
				return nil, nil, errBadDict
			}
			ss = append(ss, xRefSubSection{int(start), int(size)})
		}
	default:
		return nil, nil, errBadDict
	}
	return w, ss, nil
}

func (r *Reader) decodeXRefStream(data io.Reader, w []int, ss []xRefSubSection) error {
	wTotal := 0
	for _, wi := range w {
		wTotal += wi
	}
	buf := make([]byte, wTotal)

	w0 := w[0]
	w1 := w[1]
	w2 := w[2]
	for _, sec := range ss {
		for j := sec.Start; j < sec.Start+sec.Size; j++ {
			_, err := io.ReadFull(data, buf)
			if err != nil {
				return &MalformedFileError{Err: fmt.Errorf("xref stream: %w", err)}
			}

			i := uint32(j)
			if r.xref[i] != nil {
				continue
			}

			tp := decodeInt(buf[:w0])
			if w0 == 0 {
				tp = 1
			}
			a := decodeInt(buf[w0 : w0+w1])
			b := decodeInt(buf[w0+w1 : w0+w1+w2])
			switch tp {
			case 0:
				// free object, b is the next generation number
				r.xref[i] = &xRefEntry{Free: true, Generation: uint16(b)}
			case 1:
				// a is the byte offset, b the generation number
				r.xref[i] = &xRefEntry{Pos: a, Generation: uint16(b)}
			case 2:
				// a is the object stream number, b the index inside the stream
				if a <= 0 || a > math.MaxUint32 {
					continue
				}
				r.xref[i] = &xRefEntry{
					Pos:      b,
					InStream: NewReference(uint32(a), 0),
				}
			}
		}
	}
	return nil
}

func decodeInt(buf []byte) (res int64) {
	for _, x := range buf {
		res = res<<8 | int64(x)
	}
	return res
}
