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

// Pdf-split splits the pages of a PDF file into a left and a right half.
//
// This is useful for scanned books, where each page of the scan shows two
// pages of the book.  Annotations are moved to the half page they belong to.
//
// Usage:
//
//	pdf-split [-q] INPUT OUTPUT
//	pdf-split [-q] -batch PATH...
//
// In batch mode, every PATH is either a PDF file or a directory.  For a
// directory, all PDF files in the directory are split.  The output for a
// file "scan.pdf" is written to "split_scan.pdf" in the same directory.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
	"seehuhn.de/go/pdfsplit"
	"seehuhn.de/go/pdfsplit/internal/batch"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

type job struct {
	in, out string
}

func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("pdf-split", flag.ContinueOnError)
	flags.SetOutput(stderr)
	quiet := flags.Bool("q", false, "only report errors")
	batchMode := flags.Bool("batch", false, "split all PDF files in the given files and directories")
	flags.Usage = func() {
		out := flags.Output()
		fmt.Fprintln(out, "usage: pdf-split [-q] INPUT OUTPUT")
		fmt.Fprintln(out, "       pdf-split [-q] -batch PATH...")
		flags.PrintDefaults()
	}
	err := flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	failed := false
	var jobs []job
	if *batchMode {
		if flags.NArg() == 0 {
			flags.Usage()
			return 2
		}
		for _, path := range flags.Args() {
			inputs, err := batch.Inputs(path)
			if err != nil {
				logger.Error("cannot use path", "path", path, "error", err)
				failed = true
				continue
			}
			for _, in := range inputs {
				jobs = append(jobs, job{in: in, out: batch.OutputPath(in)})
			}
		}
	} else {
		if flags.NArg() != 2 {
			flags.Usage()
			return 2
		}
		jobs = append(jobs, job{in: flags.Arg(0), out: flags.Arg(1)})
	}

	for _, j := range jobs {
		opt := &pdfsplit.Options{
			Logger: logger.With("file", j.in),
		}
		if !*quiet && isTerminal(stderr) {
			opt.Progress = func(page, total int) {
				fmt.Fprintf(stderr, "\r%s: page %d/%d", j.in, page, total)
				if page == total {
					fmt.Fprintln(stderr)
				}
			}
		}

		report, err := pdfsplit.SplitFile(j.in, j.out, opt)
		if err != nil {
			logger.Error("split failed", "error", err)
			failed = true
			continue
		}
		logger.Info("split done",
			"input", j.in,
			"output", j.out,
			"pages", 2*report.Split,
			"skipped", len(report.Skips))
	}

	if failed {
		return 1
	}
	return 0
}

// isTerminal reports whether w is connected to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
