// SPDX-License-Identifier: GPL-2.0-or-later
package palette

import (
	"encoding/binary"
	"image/color"
	"io"

	"github.com/pkg/errors"
)

const (
	Colors = 256
	// Size is the on-disk size of a palette: 256 rgb triplets.
	Size = Colors * 3
	// MaskIndex is the entry rendered transparent on masked textures.
	MaskIndex = 255
)

// Palette holds 256 colors in index order. Alpha is 255 unless masked.
type Palette [Colors]color.NRGBA

// FromRGB expands 768 bytes of rgb triplets into an opaque palette.
func FromRGB(b []byte) (Palette, error) {
	var p Palette
	if len(b) != Size {
		return p, errors.Errorf("palette has wrong size: %v", len(b))
	}
	bi := 0
	for i := range p {
		p[i] = color.NRGBA{R: b[bi], G: b[bi+1], B: b[bi+2], A: 255}
		bi += 3
	}
	return p, nil
}

// Read reads 768 bytes of rgb triplets from r.
func Read(r io.Reader) (Palette, error) {
	b := make([]byte, Size)
	if _, err := io.ReadFull(r, b); err != nil {
		return Palette{}, errors.Wrap(err, "could not read palette")
	}
	return FromRGB(b)
}

// ReadCounted reads a palette prefixed by its uint16 color count, as
// stored in sprites and archive lumps. Short palettes are padded with
// black.
func ReadCounted(r io.Reader) (Palette, error) {
	var count uint16
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return Palette{}, errors.Wrap(err, "could not read palette size")
	}
	if count > Colors {
		return Palette{}, errors.Errorf("palette has %d colors", count)
	}
	b := make([]byte, Size)
	if _, err := io.ReadFull(r, b[:int(count)*3]); err != nil {
		return Palette{}, errors.Wrap(err, "could not read palette")
	}
	return FromRGB(b)
}

// Mask makes the last entry fully transparent.
func (p *Palette) Mask() {
	p[MaskIndex].A = 0
}

// Opaque reports whether no entry carries transparency.
func (p *Palette) Opaque() bool {
	for _, c := range p {
		if c.A != 255 {
			return false
		}
	}
	return true
}

// Alphas returns the alpha column, one byte per index.
func (p *Palette) Alphas() []byte {
	a := make([]byte, Colors)
	for i, c := range p {
		a[i] = c.A
	}
	return a
}

// RGB returns the palette with every entry forced opaque.
func (p *Palette) RGB() color.Palette {
	cp := make(color.Palette, Colors)
	for i, c := range p {
		c.A = 255
		cp[i] = c
	}
	return cp
}
