// SPDX-License-Identifier: GPL-2.0-or-later
package texture

import (
	"github.com/pkg/errors"
)

var (
	ErrWrongMagic         = errors.New("wrong magic")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrNoResources        = errors.New("no resource table")
	ErrBadOffset          = errors.New("resource offset out of range")
)

// Options control a single load.
type Options struct {
	// Transparency zeroes palette index 255 alpha on masked textures.
	Transparency bool
	// Strict turns skip conditions into errors.
	Strict bool
}

// Skip tells why a container yielded nothing without failing.
type Skip int

const (
	NotSkipped Skip = iota
	SkipWrongMagic
	SkipUnsupportedVersion
	SkipNoResources
)

func (s Skip) String() string {
	switch s {
	case NotSkipped:
		return ""
	case SkipWrongMagic:
		return "not this format"
	case SkipUnsupportedVersion:
		return "unsupported version"
	case SkipNoResources:
		return "no extractable resources"
	}
	return "unknown"
}

func (s Skip) err() error {
	switch s {
	case SkipWrongMagic:
		return ErrWrongMagic
	case SkipUnsupportedVersion:
		return ErrUnsupportedVersion
	case SkipNoResources:
		return ErrNoResources
	}
	return nil
}

// Result is what a loader produced for one container.
type Result struct {
	Textures []*Texture
	Skipped  Skip
}

// Skipped returns the non fatal result for s, or in strict mode the
// matching error wrapped with msg.
func Skipped(s Skip, opts Options, msg string) (*Result, error) {
	if opts.Strict {
		return nil, errors.Wrap(s.err(), msg)
	}
	return &Result{Skipped: s}, nil
}

// BadOffset reports a resource pointing outside the file. Outside strict
// mode it returns nil and the caller drops that one resource.
func BadOffset(opts Options, format string, args ...interface{}) error {
	if opts.Strict {
		return errors.Wrapf(ErrBadOffset, format, args...)
	}
	return nil
}
