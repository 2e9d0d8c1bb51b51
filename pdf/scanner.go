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
	"strconv"
)

const scannerBufSize = 1024

// scanner tokenizes PDF objects from a buffered input stream.
type scanner struct {
	r    io.Reader
	file io.ReaderAt // used for stream data; nil inside object streams

	buf       []byte
	pos, used int
	base      int64 // file offset of the start of r
	total     int64 // number of bytes discarded from the buffer

	getInt func(Object) (Integer, error)
}

func newScanner(r io.Reader, file io.ReaderAt, base int64, getInt func(Object) (Integer, error)) *scanner {
	return &scanner{
		r:      r,
		file:   file,
		buf:    make([]byte, scannerBufSize),
		base:   base,
		getInt: getInt,
	}
}

// currentPos returns the file offset of the next unread byte.
func (s *scanner) currentPos() int64 {
	return s.base + s.total + int64(s.pos)
}

// bytesRead returns the number of bytes consumed since the scanner was
// created.
func (s *scanner) bytesRead() int64 {
	return s.total + int64(s.pos)
}

// ReadIndirectObject reads an object of the form "n g obj ... endobj".
func (s *scanner) ReadIndirectObject() (Object, Reference, error) {
	// Some files point the xref entries at the end of the previous line.
	err := s.SkipWhiteSpace()
	if err != nil {
		return nil, Reference{}, err
	}

	number, err := s.ReadInteger()
	if err != nil {
		return nil, Reference{}, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, Reference{}, err
	}
	generation, err := s.ReadInteger()
	if err != nil {
		return nil, Reference{}, err
	}
	if number < 0 || number > math.MaxUint32 || generation < 0 || generation > math.MaxUint16 {
		return nil, Reference{}, &MalformedFileError{
			Pos: s.currentPos(),
			Err: errInvalidReference,
		}
	}
	ref := NewReference(uint32(number), uint16(generation))

	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, ref, err
	}
	err = s.SkipString("obj")
	if err != nil {
		return nil, ref, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, ref, err
	}

	obj, err := s.ReadObject()
	if err != nil {
		return nil, ref, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, ref, err
	}

	if a, ok := obj.(Integer); ok {
		// check whether this is a reference to another indirect object
		buf, err := s.Peek(6)
		if err != nil {
			return nil, ref, err
		}
		if !bytes.Equal(buf, []byte("endobj")) {
			obj, err = s.finishReference(a)
			if err != nil {
				return nil, ref, err
			}
		}
	}

	if _, isStream := obj.(*Stream); isStream {
		// some writers omit "endobj" after streams
		s.SkipString("endobj")
		return obj, ref, nil
	}

	err = s.SkipString("endobj")
	if err != nil {
		return nil, ref, err
	}
	return obj, ref, nil
}

// finishReference reads the "g R" part of a reference, after the object
// number a has already been read.
func (s *scanner) finishReference(a Integer) (Reference, error) {
	b, err := s.ReadInteger()
	if err != nil {
		return Reference{}, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return Reference{}, err
	}
	err = s.SkipString("R")
	if err != nil {
		return Reference{}, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return Reference{}, err
	}
	if a < 0 || a > math.MaxUint32 || b < 0 || b > math.MaxUint16 {
		return Reference{}, &MalformedFileError{
			Pos: s.currentPos(),
			Err: errInvalidReference,
		}
	}
	return NewReference(uint32(a), uint16(b)), nil
}

// ReadObject reads a direct object.  The caller is responsible for checking
// whether an Integer is the start of a reference.
func (s *scanner) ReadObject() (Object, error) {
	buf, err := s.Peek(5) // len("false") == 5
	if err == nil {
		if len(buf) < 5 {
			err = &MalformedFileError{Pos: s.currentPos(), Err: io.ErrUnexpectedEOF}
		} else {
			err = &MalformedFileError{
				Pos: s.currentPos(),
				Err: fmt.Errorf("unexpected input %q", buf),
			}
		}
	}

	switch {
	case len(buf) == 0:
		return nil, err
	case bytes.HasPrefix(buf, []byte("null")):
		s.pos += 4
		return nil, nil
	case bytes.HasPrefix(buf, []byte("true")):
		s.pos += 4
		return Bool(true), nil
	case bytes.HasPrefix(buf, []byte("false")):
		s.pos += 5
		return Bool(false), nil
	case buf[0] == '/':
		return s.ReadName()
	case buf[0] >= '0' && buf[0] <= '9', buf[0] == '+', buf[0] == '-', buf[0] == '.':
		return s.ReadNumber()
	case bytes.HasPrefix(buf, []byte("<<")):
		dict, err := s.ReadDict()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		buf, _ = s.Peek(6) // len("stream") == 6
		if !bytes.HasPrefix(buf, []byte("stream")) {
			return dict, nil
		}
		return s.ReadStreamData(dict)
	case buf[0] == '(':
		s.pos++
		return s.ReadQuotedString()
	case buf[0] == '<':
		s.pos++
		return s.ReadHexString()
	case buf[0] == '[':
		s.pos++
		return s.ReadArray()
	}
	return nil, err
}

// ReadInteger reads an integer.
func (s *scanner) ReadInteger() (Integer, error) {
	first := true
	var res []byte
	err := s.ScanBytes(func(c byte) bool {
		if first && (c == '+' || c == '-') {
			res = append(res, c)
		} else if c >= '0' && c <= '9' {
			res = append(res, c)
		} else {
			return false
		}
		first = false
		return true
	})
	if err != nil {
		return 0, err
	}

	x, err := strconv.ParseInt(string(res), 10, 64)
	if err != nil {
		return 0, &MalformedFileError{Pos: s.currentPos(), Err: err}
	}
	return Integer(x), nil
}

// ReadNumber reads an integer or real number.
func (s *scanner) ReadNumber() (Object, error) {
	hasDot := false
	first := true
	var res []byte
	err := s.ScanBytes(func(c byte) bool {
		if !hasDot && c == '.' {
			hasDot = true
		} else if first && (c == '+' || c == '-') {
			// sign
		} else if c < '0' || c > '9' {
			return false
		}
		res = append(res, c)
		first = false
		return true
	})
	if err != nil {
		return nil, err
	}

	if hasDot {
		if len(res) > 0 && res[len(res)-1] == '.' {
			res = append(res, '0')
		}
		x, err := strconv.ParseFloat(string(res), 64)
		if err != nil {
			return nil, &MalformedFileError{Pos: s.currentPos(), Err: err}
		}
		return Real(x), nil
	}

	x, err := strconv.ParseInt(string(res), 10, 64)
	if err != nil {
		return nil, &MalformedFileError{Pos: s.currentPos(), Err: err}
	}
	return Integer(x), nil
}

// ReadQuotedString reads a ()-delimited string, starting after the opening
// bracket.
func (s *scanner) ReadQuotedString() (String, error) {
	var res []byte
	parentCount := 0
	escape := false
	ignoreLF := false
	isOctal := 0
	octalVal := byte(0)
	err := s.ScanBytes(func(c byte) bool {
		if ignoreLF {
			ignoreLF = false
			if c == '\n' {
				return true
			}
		}
		if isOctal > 0 {
			if c >= '0' && c <= '7' {
				octalVal = octalVal*8 + (c - '0')
				isOctal--
				if isOctal == 0 {
					res = append(res, octalVal)
				}
				return true
			}
			res = append(res, octalVal)
			isOctal = 0
		}
		if escape {
			escape = false
			switch c {
			case '\n':
				return true
			case '\r':
				ignoreLF = true
				return true
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			}
			if c >= '0' && c <= '7' {
				isOctal = 2
				octalVal = c - '0'
				return true
			}
		} else if c == '\\' {
			escape = true
			return true
		} else if c == '(' {
			parentCount++
		} else if c == ')' {
			if parentCount == 0 {
				return false
			}
			parentCount--
		} else if c == '\r' {
			c = '\n'
			ignoreLF = true
		}
		res = append(res, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	if isOctal > 0 {
		res = append(res, octalVal)
	}

	err = s.SkipString(")")
	if err != nil {
		return nil, err
	}
	return String(res), nil
}

// ReadHexString reads a <>-delimited string, starting after the opening
// angled bracket.
func (s *scanner) ReadHexString() (String, error) {
	var res []byte
	var hexVal byte
	first := true
	err := s.ScanBytes(func(c byte) bool {
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c == '>':
			return false
		default:
			return true
		}
		if first {
			hexVal = d
		} else {
			res = append(res, 16*hexVal+d)
		}
		first = !first
		return true
	})
	if err != nil {
		return nil, err
	}
	if !first {
		res = append(res, 16*hexVal)
	}

	// At the end of the file, the trailing ">" may be missing.
	s.SkipString(">")

	return String(res), nil
}

// ReadName reads a PDF name object, including the leading slash.
func (s *scanner) ReadName() (Name, error) {
	err := s.SkipString("/")
	if err != nil {
		return "", err
	}

	hex := 0
	var hexByte byte
	var res []byte
	err = s.ScanBytes(func(c byte) bool {
		if hex > 0 {
			var val byte
			switch {
			case c >= '0' && c <= '9':
				val = c - '0'
			case c >= 'A' && c <= 'F':
				val = c - 'A' + 10
			case c >= 'a' && c <= 'f':
				val = c - 'a' + 10
			}
			hexByte = 16*hexByte + val
			hex--
			if hex == 0 {
				res = append(res, hexByte)
			}
		} else if c == '#' {
			hexByte = 0
			hex = 2
		} else if isSpace[c] || isDelimiter[c] {
			return false
		} else {
			res = append(res, c)
		}
		return true
	})
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", err
	}

	return Name(res), nil
}

// ReadArray reads an array, starting after the opening "[".
func (s *scanner) ReadArray() (Array, error) {
	var array Array
	integersSeen := 0
	for {
		err := s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}

		buf, err := s.Peek(1)
		if err != nil {
			return nil, err
		}
		if len(buf) == 0 {
			return nil, &MalformedFileError{Pos: s.currentPos(), Err: io.ErrUnexpectedEOF}
		}
		if buf[0] == ']' {
			break
		}
		if integersSeen >= 2 && buf[0] == 'R' {
			s.pos++
			k := len(array)
			a := array[k-2].(Integer)
			b := array[k-1].(Integer)
			if a < 0 || a > math.MaxUint32 || b < 0 || b > math.MaxUint16 {
				return nil, &MalformedFileError{Pos: s.currentPos(), Err: errInvalidReference}
			}
			array = append(array[:k-2], NewReference(uint32(a), uint16(b)))
			integersSeen = 0
			continue
		}

		obj, err := s.ReadObject()
		if err != nil {
			return nil, err
		}

		if _, isInt := obj.(Integer); isInt {
			integersSeen++
		} else {
			integersSeen = 0
		}
		array = append(array, obj)
	}
	s.pos++ // the closing "]"

	return array, nil
}

// ReadDict reads a PDF dictionary.
func (s *scanner) ReadDict() (Dict, error) {
	err := s.SkipString("<<")
	if err != nil {
		return nil, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}

	dict := Dict{}
	for {
		buf, err := s.Peek(1)
		if err != nil {
			return nil, err
		}
		if len(buf) == 0 || buf[0] != '/' {
			break
		}
		key, err := s.ReadName()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}

		val, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}

		// An integer may be the start of a reference.
		if a, isInt := val.(Integer); isInt {
			buf, err := s.Peek(1)
			if err != nil {
				return nil, err
			}
			if len(buf) == 0 {
				return nil, &MalformedFileError{Pos: s.currentPos(), Err: io.ErrUnexpectedEOF}
			}
			if buf[0] >= '0' && buf[0] <= '9' {
				val, err = s.finishReference(a)
				if err != nil {
					return nil, err
				}
			}
		}

		if val != nil {
			dict[key] = val
		}
	}
	err = s.SkipString(">>")
	if err != nil {
		return nil, err
	}

	return dict, nil
}

// ReadStreamData reads the data of a PDF Stream, starting after the Dict.
// The returned stream reads its data directly from the underlying file.
func (s *scanner) ReadStreamData(dict Dict) (*Stream, error) {
	if s.file == nil {
		return nil, &MalformedFileError{
			Pos: s.currentPos(),
			Err: errors.New("stream inside object stream"),
		}
	}

	length, err := s.getInt(dict["Length"])
	if err != nil {
		return nil, err
	} else if length < 0 {
		return nil, &MalformedFileError{
			Pos: s.currentPos(),
			Err: errors.New("stream with negative length"),
		}
	}

	err = s.SkipString("stream")
	if err != nil {
		return nil, err
	}
	buf, err := s.Peek(2)
	if err != nil {
		return nil, err
	}
	if len(buf) >= 2 && buf[0] == '\r' && buf[1] == '\n' {
		s.pos += 2
	} else if len(buf) >= 1 && (buf[0] == '\n' || buf[0] == '\r') {
		s.pos++
	} else {
		return nil, &MalformedFileError{
			Pos: s.currentPos(),
			Err: errors.New("missing end of line after \"stream\""),
		}
	}

	start := s.currentPos()
	l := int64(length)
	streamData := io.NewSectionReader(s.file, start, l)
	err = s.Discard(l)
	if err != nil {
		return nil, err
	}

	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	err = s.SkipString("endstream")
	if err != nil {
		return nil, err
	}

	return &Stream{
		Dict: dict,
		R:    streamData,
	}, nil
}

// readHeaderVersion reads the "%PDF-x.y" header at the start of a file.
func (s *scanner) readHeaderVersion() (Version, error) {
	buf, err := s.Peek(scannerBufSize)
	if err != nil {
		return 0, err
	}

	idx := bytes.Index(buf, []byte("%PDF-"))
	if idx < 0 || len(buf) < idx+8 {
		return 0, &MalformedFileError{Err: errors.New("PDF header not found")}
	}
	ver, err := ParseVersion(string(buf[idx+5 : idx+8]))
	if err != nil {
		return 0, &MalformedFileError{Pos: int64(idx + 5), Err: err}
	}
	return ver, nil
}

// refill discards the read part of the buffer and reads as much new data as
// possible.  Once the end of file is reached, s.used will be smaller than the
// buffer size, but no error will be returned.
func (s *scanner) refill() error {
	s.total += int64(s.pos)
	copy(s.buf, s.buf[s.pos:s.used])
	s.used -= s.pos
	s.pos = 0

	n, err := io.ReadFull(s.r, s.buf[s.used:])
	s.used += n

	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}
	return err
}

// Peek returns a view of the next n bytes of input.  On EOF, short buffers
// without an error will be returned.
func (s *scanner) Peek(n int) ([]byte, error) {
	if n > scannerBufSize {
		panic("peek window too large")
	}

	var err error
	if s.pos+n > s.used {
		err = s.refill()
	}
	if s.pos+n > s.used {
		return s.buf[s.pos:s.used], err
	}
	return s.buf[s.pos : s.pos+n], nil
}

// Discard skips the next n bytes of input.
func (s *scanner) Discard(n int64) error {
	if n < 0 {
		panic("negative offset for Discard()")
	}
	unread := int64(s.used - s.pos)
	if n <= unread {
		s.pos += int(n)
		return nil
	}

	n -= unread
	s.total += int64(s.used)
	s.pos = 0
	s.used = 0

	m, err := io.CopyN(io.Discard, s.r, n)
	s.total += m
	if err == io.EOF {
		err = &MalformedFileError{Pos: s.currentPos(), Err: io.ErrUnexpectedEOF}
	}
	return err
}

// ScanBytes feeds input bytes to accept, until accept returns false or the
// input is exhausted.  The rejected byte is not consumed.
func (s *scanner) ScanBytes(accept func(c byte) bool) error {
	empty := true
	for {
		for s.pos < s.used {
			if !accept(s.buf[s.pos]) {
				return nil
			}
			s.pos++
			empty = false
		}
		err := s.refill()
		if err != nil {
			return err
		}
		if s.used == 0 {
			if empty {
				return io.ErrUnexpectedEOF
			}
			return nil
		}
	}
}

// SkipWhiteSpace skips white space and comments.
func (s *scanner) SkipWhiteSpace() error {
	isComment := false
	err := s.ScanBytes(func(c byte) bool {
		if isComment {
			if c == '\r' || c == '\n' {
				isComment = false
			}
		} else if c == '%' {
			isComment = true
		} else {
			return isSpace[c]
		}
		return true
	})
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return err
}

// SkipString consumes pat, which must be the next input.
func (s *scanner) SkipString(pat string) error {
	n := len(pat)
	buf, err := s.Peek(n)
	if err != nil {
		return err
	}
	if string(buf) != pat {
		return &MalformedFileError{
			Pos: s.currentPos(),
			Err: fmt.Errorf("expected %q but found %q", pat, string(buf)),
		}
	}
	s.pos += n
	return nil
}

var (
	isSpace     [256]bool
	isDelimiter [256]bool
)

func init() {
	for _, c := range []byte{0, 9, 10, 12, 13, 32} {
		isSpace[c] = true
	}
	for _, c := range []byte("()<>[]{}/%") {
		isDelimiter[c] = true
	}
}
