// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

const (
	Magic = 'T'<<24 | 'S'<<16 | 'D'<<8 | 'I'

	// version used by the 0.52 alpha, its header is shorter
	alphaVersion = 6

	// offset of the texture fields in studiohdr_t: id, version,
	// name[64], length, five vec3 and eleven int32 fields.
	textureFieldsOffset = 4 + 4 + 64 + 4 + 12*5 + 4*11
	// same for the alpha header
	alphaTextureFieldsOffset = 0x64
)

var magicID = [4]byte{'I', 'D', 'S', 'T'}

type header struct { // leading part of studiohdr_t after the id
	Version int32
	Name    [64]byte
	Length  int32
}

type textureFields struct {
	TextureCount     int32
	TextureIndex     int32
	TextureDataIndex int32
}

type studioTexture struct { // mstudiotexture_t
	Name   [64]byte
	Flags  uint32
	Width  int32
	Height int32
	Index  int32
}
