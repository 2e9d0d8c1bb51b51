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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seehuhn.de/go/pdfsplit/internal/testdoc"
	"seehuhn.de/go/pdfsplit/pdf"
)

func writeInput(t *testing.T, fname string) {
	t.Helper()
	d := testdoc.New()
	d.AddPage(pdf.Reference{}, pdf.Dict{"MediaBox": testdoc.Rect(0, 0, 200, 100)})
	data, err := d.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(fname, data, 0o644)
	if err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	out := filepath.Join(dir, "out.pdf")
	writeInput(t, in)

	stderr := &bytes.Buffer{}
	if code := run([]string{"-q", in, out}, stderr); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected output in quiet mode: %q", stderr)
	}
	if _, err := os.Stat(out); err != nil {
		t.Error(err)
	}
}

func TestRunUsage(t *testing.T) {
	cases := []struct {
		args []string
		code int
	}{
		{[]string{"-h"}, 0},
		{[]string{"--help"}, 0},
		{[]string{}, 2},
		{[]string{"only-one"}, 2},
		{[]string{"-batch"}, 2},
		{[]string{"-unknown"}, 2},
	}
	for _, test := range cases {
		stderr := &bytes.Buffer{}
		code := run(test.args, stderr)
		if code != test.code {
			t.Errorf("%q: exit code %d, want %d", test.args, code, test.code)
		}
		if !strings.Contains(stderr.String(), "usage:") {
			t.Errorf("%q: no usage message", test.args)
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	stderr := &bytes.Buffer{}
	code := run([]string{filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "out.pdf")}, stderr)
	if code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "split failed") {
		t.Errorf("missing error message: %q", stderr)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, filepath.Join(dir, "a.pdf"))
	writeInput(t, filepath.Join(dir, "b.pdf"))

	stderr := &bytes.Buffer{}
	code := run([]string{"-batch", dir, filepath.Join(dir, "missing")}, stderr)
	if code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
	for _, name := range []string{"split_a.pdf", "split_b.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Error(err)
		}
	}
	if !strings.Contains(stderr.String(), "invalid path") {
		t.Errorf("missing path not reported: %q", stderr)
	}

	// a second run does not split the outputs of the first run
	stderr.Reset()
	if code := run([]string{"-q", "-batch", dir}, stderr); code != 0 {
		t.Errorf("exit code %d: %s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "split_split_a.pdf")); err == nil {
		t.Error("output of an earlier run was split again")
	}
}
