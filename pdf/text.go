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

	"golang.org/x/text/encoding/unicode"
)

// AsTextString decodes a PDF text string.  Text strings are either encoded
// using UTF-16BE with a byte order mark, UTF-8 with a byte order mark (PDF
// 2.0), or PDFDocEncoding.
func AsTextString(s String) string {
	switch {
	case bytes.HasPrefix(s, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		res, err := dec.Bytes(s)
		if err != nil {
			return string(s[2:])
		}
		return string(res)
	case bytes.HasPrefix(s, []byte{0xEF, 0xBB, 0xBF}):
		return string(s[3:])
	}

	r := make([]rune, len(s))
	for i, c := range s {
		r[i] = pdfDocDecode(c)
	}
	return string(r)
}

// TextString encodes a Go string as a PDF text string.  PDFDocEncoding is
// used where possible, UTF-16BE otherwise.
func TextString(s string) String {
	res := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := pdfDocEncode(r)
		if !ok {
			enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
			utf16, err := enc.Bytes([]byte(s))
			if err != nil {
				break
			}
			return String(utf16)
		}
		res = append(res, c)
	}
	return String(res)
}

func pdfDocDecode(c byte) rune {
	switch {
	case c >= 0x18 && c < 0x20:
		return pdfDocLow[c-0x18]
	case c >= 0x80 && c <= 0xA0:
		return pdfDocHigh[c-0x80]
	case c == 0x7F || c == 0xAD:
		return 0xFFFD
	}
	return rune(c)
}

func pdfDocEncode(r rune) (byte, bool) {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return byte(r), true
	case r >= 0x20 && r < 0x7F:
		return byte(r), true
	case r >= 0xA1 && r <= 0xFF && r != 0xAD:
		return byte(r), true
	}
	for i, x := range pdfDocLow {
		if x == r {
			return byte(0x18 + i), true
		}
	}
	for i, x := range pdfDocHigh {
		if x == r && x != 0xFFFD {
			return byte(0x80 + i), true
		}
	}
	return 0, false
}

var pdfDocLow = [8]rune{
	0x02D8, 0x02C7, 0x02C6, 0x02D9, 0x02DD, 0x02DB, 0x02DA, 0x02DC,
}

var pdfDocHigh = [33]rune{
	0x2022, 0x2020, 0x2021, 0x2026, 0x2014, 0x2013, 0x0192, 0x2044,
	0x2039, 0x203A, 0x2212, 0x2030, 0x201E, 0x201C, 0x201D, 0x2018,
	0x2019, 0x201A, 0x2122, 0xFB01, 0xFB02, 0x0141, 0x0152, 0x0160,
	0x0178, 0x017D, 0x0131, 0x0142, 0x0153, 0x0161, 0x017E, 0xFFFD,
	0x20AC,
}
