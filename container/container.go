// SPDX-License-Identifier: GPL-2.0-or-later

// Package container detects which container format a file is in and hands
// it to the loader registered for that format.
package container

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"hltex/texture"
)

type Kind int

const (
	Unknown Kind = iota
	Sprite
	Archive
	Model
	Level
)

func (k Kind) String() string {
	switch k {
	case Sprite:
		return "sprite"
	case Archive:
		return "archive"
	case Model:
		return "model"
	case Level:
		return "level"
	}
	return "unknown"
}

// DecodeFunc decodes a container read from r, positioned at its magic.
// name identifies the container in texture names and messages.
type DecodeFunc func(r io.ReadSeeker, name string, opts texture.Options) (*texture.Result, error)

type format struct {
	kind   Kind
	decode DecodeFunc
}

var (
	formats map[uint32]format
)

func init() {
	formats = make(map[uint32]format)
}

// Register makes a format known to Detect and Decode. It is meant to be
// called from the init function of the format's package.
func Register(magic uint32, k Kind, f DecodeFunc) {
	formats[magic] = format{k, f}
}

// ReadMagic reads the four byte magic at the current position of r. A
// file too short to hold one yields a zero magic and no error, any other
// read failure is returned.
func ReadMagic(r io.Reader) ([4]byte, error) {
	var id [4]byte
	if _, err := io.ReadFull(r, id[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return [4]byte{}, nil
		}
		return id, errors.Wrap(err, "could not read magic")
	}
	return id, nil
}

// Detect reads the four byte magic from r.
func Detect(r io.Reader) (Kind, error) {
	id, err := ReadMagic(r)
	if err != nil {
		return Unknown, err
	}
	f, ok := formats[binary.LittleEndian.Uint32(id[:])]
	if !ok {
		return Unknown, nil
	}
	return f.kind, nil
}

func decoder(k Kind) DecodeFunc {
	for _, f := range formats {
		if f.kind == k {
			return f.decode
		}
	}
	return nil
}

// Decode detects the format of r and decodes it. Unknown formats are a
// skip, not an error, unless opts.Strict is set.
func Decode(r io.ReadSeeker, name string, opts texture.Options) (Kind, *texture.Result, error) {
	k, err := Detect(r)
	if err != nil {
		return Unknown, nil, errors.Wrap(err, name)
	}
	f := decoder(k)
	if f == nil {
		res, err := texture.Skipped(texture.SkipWrongMagic, opts, name)
		return Unknown, res, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return k, nil, errors.Wrap(err, name)
	}
	res, err := f(r, name, opts)
	return k, res, err
}

// Load opens the file at path and decodes it. The file is closed before
// Load returns.
func Load(path string, opts texture.Options) (Kind, *texture.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Unknown, nil, err
	}
	defer file.Close()
	return Decode(file, path, opts)
}

// Size returns the length of r and leaves it positioned at the start.
func Size(r io.Seeker) (int64, error) {
	n, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return n, nil
}

// Open opens the file at path and decodes it with f. It is the body of
// the per format Load functions.
func Open(path string, opts texture.Options, f DecodeFunc) (*texture.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return f(file, path, opts)
}
