// SPDX-License-Identifier: GPL-2.0-or-later
package texture

import (
	"bytes"
	"image"
	"strings"

	"github.com/pkg/errors"

	"hltex/palette"
)

// Flags uses the bit values of the studio model format. Sprite and
// archive loaders map their own markers onto the same bits.
type Flags uint32

const (
	FlagFlatShade  Flags = 0x0001
	FlagChrome     Flags = 0x0002
	FlagFullBright Flags = 0x0004
	FlagNoMips     Flags = 0x0008
	FlagAlpha      Flags = 0x0010
	// FlagAdditive is recognized and carried, but nothing blends on it.
	FlagAdditive Flags = 0x0020
	FlagMasked   Flags = 0x0040
	// FlagIndexAlpha marks sprites and decals whose indices encode
	// coverage. Carried only.
	FlagIndexAlpha Flags = 0x1000
)

func (f Flags) Has(m Flags) bool {
	return f&m != 0
}

// Texture is one palette indexed raster decoded from a container.
type Texture struct {
	Name    string
	Width   int
	Height  int
	Pixels  []byte // row major palette indices, Width*Height long
	Palette palette.Palette
	Flags   Flags
}

func New(name string, width, height int, pixels []byte, pal palette.Palette, flags Flags) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("texture %q has invalid size %dx%d", name, width, height)
	}
	if len(pixels) != width*height {
		return nil, errors.Errorf("texture %q has %d pixels, want %d", name, len(pixels), width*height)
	}
	return &Texture{
		Name:    name,
		Width:   width,
		Height:  height,
		Pixels:  pixels,
		Palette: pal,
		Flags:   flags,
	}, nil
}

// ApplyMask zeroes the alpha of index 255 if transparency is wanted and
// the texture is masked. It reports whether the palette changed.
func (t *Texture) ApplyMask(transparency bool) bool {
	if !transparency || !t.Flags.Has(FlagMasked) {
		return false
	}
	t.Palette.Mask()
	return true
}

// Image returns a paletted image sharing the pixel data. The palette
// carries rgb only, transparency is added to the written file afterwards.
func (t *Texture) Image() *image.Paletted {
	return &image.Paletted{
		Pix:     t.Pixels,
		Stride:  t.Width,
		Rect:    image.Rect(0, 0, t.Width, t.Height),
		Palette: t.Palette.RGB(),
	}
}

// FileName returns the name usable as a path component.
func (t *Texture) FileName() string {
	return Sanitize(t.Name)
}

// CString returns the bytes of b up to the first NUL.
func CString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	return string(b)
}

// Sanitize replaces characters that are not valid in file names on
// common filesystems. Leading dots are dropped so no hidden or relative
// names come out.
func Sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return '_'
		}
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimLeft(strings.TrimRight(name, " ."), ".")
	if name == "" {
		return "_"
	}
	return name
}
