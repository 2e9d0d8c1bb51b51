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

// Package pdfsplit splits the pages of a PDF document into a left and a
// right half.
//
// This is intended for scanned books, where every page of the scan shows
// two pages of the book side by side.  Every page of the input document is
// replaced by two pages of half the width.  Annotations are assigned to the
// half they overlap with and are moved into the coordinate system of the
// new page.  Annotations which overlap both halves are duplicated and
// clipped.
//
// A document can be split in a single call:
//
//	report, err := pdfsplit.SplitFile("scan.pdf", "split_scan.pdf", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, skip := range report.Skips {
//	    fmt.Println(skip)
//	}
//
// Pages with no visible area and annotations outside the visible area of
// their page are left out.  These are not errors; they are listed in the
// [Report] returned by [Assemble] and [SplitFile].
package pdfsplit
