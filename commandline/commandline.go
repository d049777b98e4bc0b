// SPDX-License-Identifier: GPL-2.0-or-later

// Package commandline holds the flags of the extractor. They are
// registered with the default flag set on init, parsing is left to main.
package commandline

import (
	"flag"
	"runtime"

	"github.com/pkg/errors"

	"hltex/image"
)

var (
	quiet        bool
	recursive    bool
	strict       bool
	transparency bool

	format = formatValue{image.PNG}

	jobs int

	manifest string
	out      string
	suffix   string
)

type formatValue struct {
	f image.Format
}

func (v *formatValue) Set(s string) error {
	f, err := image.ParseFormat(s)
	if err != nil {
		return err
	}
	v.f = f
	return nil
}

func (v *formatValue) String() string {
	return v.f.String()
}

func init() {
	flag.BoolVar(&quiet, "quiet", false, "do not print a line per extracted texture")
	flag.BoolVar(&recursive, "recursive", true, "descend into subdirectories of a directory input")
	flag.BoolVar(&strict, "strict", false, "treat unknown formats, versions and bad offsets as errors")
	flag.BoolVar(&transparency, "transparency", false, "apply palette transparency and write patched png copies")

	flag.Var(&format, "format", "output format, png or bmp")

	flag.IntVar(&jobs, "jobs", runtime.NumCPU(), "number of containers decoded in parallel")

	flag.StringVar(&manifest, "manifest", "", "write a json manifest of the run to this file")
	flag.StringVar(&out, "out", ".", "output directory")
	flag.StringVar(&suffix, "suffix", ".trans", "suffix of the transparency patched png copies")
}

func Quiet() bool {
	return quiet
}

func Recursive() bool {
	return recursive
}

func Strict() bool {
	return strict
}

func Transparency() bool {
	return transparency
}

func Format() image.Format {
	return format.f
}

func Jobs() int {
	if jobs < 1 {
		return 1
	}
	return jobs
}

func Manifest() string {
	return manifest
}

func Suffix() string {
	return suffix
}

// Input returns the INPUT positional argument.
func Input() (string, error) {
	in, _, err := positional(flag.Args(), out)
	return in, err
}

// OutDir returns the OUTDIR positional argument, falling back to -out.
func OutDir() string {
	_, o, _ := positional(flag.Args(), out)
	return o
}

func positional(args []string, def string) (string, string, error) {
	switch len(args) {
	case 0:
		return "", def, errors.New("missing input file or directory")
	case 1:
		return args[0], def, nil
	case 2:
		return args[0], args[1], nil
	}
	return "", def, errors.Errorf("too many arguments: %q", args[2:])
}
