// SPDX-License-Identifier: GPL-2.0-or-later

package wad

const (
	Magic = 'W' | 'A'<<8 | 'D'<<16 | '3'<<24

	typDecal   = 0x40 // tempdecal.wad, same layout as typMipTex
	typCached  = 0x41
	typQPic    = 0x42
	typMipTex  = 0x43
	typFont    = 0x46
	lumpSize   = 32
	mipLevels  = 4
	fontChars  = 256
	nameLength = 16
)

var magicID = [4]byte{'W', 'A', 'D', '3'}

// IsTexture reports whether lumps of type typ carry a raster.
func IsTexture(typ byte) bool {
	switch typ {
	case typDecal, typQPic, typMipTex, typFont:
		return true
	}
	return false
}

type header struct {
	EntryCount int32
	DirOffset  int32
}

type lump struct {
	Offset      int32
	Dsize       int32
	Size        int32
	Typ         byte
	Compression byte
	Dummy       int16
	Name        [nameLength]byte
}

type mipTexHeader struct { // miptex_t
	Name    [nameLength]byte
	Width   uint32
	Height  uint32
	Offsets [mipLevels]uint32
}

type qPicHeader struct {
	Width  int32
	Height int32
}

type fontHeader struct {
	Width     int32
	Height    int32
	RowCount  int32
	RowHeight int32
	Chars     [fontChars]struct {
		Offset int16
		Width  int16
	}
}
