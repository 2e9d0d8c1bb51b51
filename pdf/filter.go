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
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"errors"
	"fmt"
	"io"
)

// DecodeStream returns a reader for the decoded data of a stream.
// Filters and their parameters are resolved using r.
func DecodeStream(r Getter, x *Stream) (io.Reader, error) {
	filters, err := Resolve(r, x.Dict["Filter"])
	if err != nil {
		return nil, err
	}
	params, err := Resolve(r, x.Dict["DecodeParms"])
	if err != nil {
		return nil, err
	}

	var names []Object
	var parms []Object
	switch f := filters.(type) {
	case nil:
		// no filter
	case Name:
		names = []Object{f}
		parms = []Object{params}
	case Array:
		names = f
		if p, ok := params.(Array); ok {
			parms = p
		}
	default:
		return nil, &MalformedFileError{
			Err: fmt.Errorf("invalid /Filter %s", Format(filters)),
		}
	}

	var res io.Reader = x.R
	for i, name := range names {
		var param Object
		if i < len(parms) {
			param, err = Resolve(r, parms[i])
			if err != nil {
				return nil, err
			}
		}
		name, err := Resolve(r, name)
		if err != nil {
			return nil, err
		}
		res, err = applyFilter(res, name, param)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func applyFilter(r io.Reader, name Object, param Object) (io.Reader, error) {
	n, ok := name.(Name)
	if !ok {
		return nil, fmt.Errorf("invalid filter description %s", Format(name))
	}
	switch n {
	case "FlateDecode", "Fl":
		p := predictorParams{
			Predictor:        1,
			Colors:           1,
			BitsPerComponent: 8,
			Columns:          1,
		}
		if pDict, ok := param.(Dict); ok {
			p.update(pDict)
		}
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, err
		}
		return p.wrap(zr)
	case "ASCIIHexDecode", "AHx":
		return asciiHexReader(r)
	case "ASCII85Decode", "A85":
		return ascii85.NewDecoder(&ascii85Trimmer{r: bufio.NewReader(r)}), nil
	default:
		return nil, fmt.Errorf("unsupported filter %q", n)
	}
}

type predictorParams struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
}

func (p *predictorParams) update(d Dict) {
	if val, ok := d["Predictor"].(Integer); ok {
		p.Predictor = int(val)
	}
	if val, ok := d["Colors"].(Integer); ok {
		p.Colors = int(val)
	}
	if val, ok := d["BitsPerComponent"].(Integer); ok {
		p.BitsPerComponent = int(val)
	}
	if val, ok := d["Columns"].(Integer); ok {
		p.Columns = int(val)
	}
}

func (p *predictorParams) wrap(r io.Reader) (io.Reader, error) {
	if p.Colors < 1 || p.BitsPerComponent < 1 || p.Columns < 1 {
		return nil, errors.New("invalid predictor parameters")
	}
	bpp := (p.Colors*p.BitsPerComponent + 7) / 8
	rowLen := (p.Colors*p.BitsPerComponent*p.Columns + 7) / 8

	switch {
	case p.Predictor == 1:
		return r, nil
	case p.Predictor == 2:
		if p.BitsPerComponent != 8 {
			return nil, fmt.Errorf("TIFF predictor with %d bits per component",
				p.BitsPerComponent)
		}
		return &tiffReader{
			r:    r,
			bpp:  bpp,
			row:  make([]byte, rowLen),
			pend: nil,
		}, nil
	case p.Predictor >= 10 && p.Predictor <= 15:
		return &pngReader{
			r:    r,
			bpp:  bpp,
			prev: make([]byte, rowLen),
			cur:  make([]byte, 1+rowLen),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported predictor %d", p.Predictor)
	}
}

// pngReader undoes the PNG row filters.  Every row starts with a tag byte
// selecting the filter for that row.
type pngReader struct {
	r    io.Reader
	bpp  int
	prev []byte
	cur  []byte
	pend []byte
}

func (r *pngReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(r.pend) > 0 {
			m := copy(b, r.pend)
			n += m
			b = b[m:]
			r.pend = r.pend[m:]
			continue
		}
		_, err := io.ReadFull(r.r, r.cur)
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil {
			return n, err
		}

		row := r.cur[1:]
		switch r.cur[0] {
		case 0: // None
		case 1: // Sub
			for i := r.bpp; i < len(row); i++ {
				row[i] += row[i-r.bpp]
			}
		case 2: // Up
			for i := range row {
				row[i] += r.prev[i]
			}
		case 3: // Average
			for i := range row {
				var left int
				if i >= r.bpp {
					left = int(row[i-r.bpp])
				}
				row[i] += byte((left + int(r.prev[i])) / 2)
			}
		case 4: // Paeth
			for i := range row {
				var a, c byte
				if i >= r.bpp {
					a = row[i-r.bpp]
					c = r.prev[i-r.bpp]
				}
				row[i] += paeth(a, r.prev[i], c)
			}
		default:
			return n, fmt.Errorf("invalid PNG filter type %d", r.cur[0])
		}
		copy(r.prev, row)
		r.pend = r.prev
	}
	return n, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

type tiffReader struct {
	r    io.Reader
	bpp  int
	row  []byte
	pend []byte
}

func (r *tiffReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(r.pend) > 0 {
			m := copy(b, r.pend)
			n += m
			b = b[m:]
			r.pend = r.pend[m:]
			continue
		}
		_, err := io.ReadFull(r.r, r.row)
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil {
			return n, err
		}
		for i := r.bpp; i < len(r.row); i++ {
			r.row[i] += r.row[i-r.bpp]
		}
		r.pend = r.row
	}
	return n, nil
}

func asciiHexReader(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := &scanner{
		r:   bytes.NewReader(data),
		buf: make([]byte, scannerBufSize),
	}
	res, err := s.ReadHexString()
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return bytes.NewReader(res), nil
}

// ascii85Trimmer stops reading at the "~>" end-of-data marker.
type ascii85Trimmer struct {
	r    *bufio.Reader
	done bool
}

func (t *ascii85Trimmer) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) && !t.done {
		c, err := t.r.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		if c == '~' {
			t.done = true
			break
		}
		b[n] = c
		n++
	}
	if n == 0 && t.done {
		return 0, io.EOF
	}
	return n, nil
}
