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

package batch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOutputPath(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"scan.pdf", "split_scan.pdf"},
		{"a/b/scan.PDF", "a/b/split_scan.PDF"},
		{"/tmp/x.pdf", "/tmp/split_x.pdf"},
	}
	for _, test := range cases {
		got := OutputPath(filepath.FromSlash(test.in))
		if got != filepath.FromSlash(test.out) {
			t.Errorf("%s: got %q, want %q", test.in, got, test.out)
		}
	}
}

func TestInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "split_a.pdf"} {
		err := os.WriteFile(filepath.Join(dir, name), nil, 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}
	err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "sub.pdf", "c.pdf"), nil, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Inputs(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.PDF"), filepath.Join(dir, "b.pdf")}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}

	// explicitly named files are always used
	single := filepath.Join(dir, "split_a.pdf")
	got, err = Inputs(single)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{single}, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestInputsMissing(t *testing.T) {
	_, err := Inputs(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}
