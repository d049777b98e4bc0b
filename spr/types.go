// SPDX-License-Identifier: GPL-2.0-or-later

package spr

const (
	ST_SYNC = iota
	ST_RAND
)

const (
	SPR_SINGLE = iota
	SPR_GROUP
)

const (
	SPR_VP_PARALLEL_UPRIGHT = iota
	SPR_FACING_UPRIGHT
	SPR_VP_PARALLEL
	SPR_ORIENTED
	SPR_VP_PARALLEL_ORIENTED
)

// texture formats
const (
	SPR_NORMAL = iota
	SPR_ADDITIVE
	SPR_INDEXALPHA
	SPR_ALPHTEST
)

const (
	spriteVersion = 2
	Magic         = 'P'<<24 | 'S'<<16 | 'D'<<8 | 'I'
)

var magicID = [4]byte{'I', 'D', 'S', 'P'}

type header struct { // dsprite_t without the id
	Version        int32 // spriteVersion
	Type           int32 // SPR_VP_PARALLEL_UPRIGHT ...
	TextureFormat  int32 // SPR_NORMAL ...
	BoundingRadius float32
	MaxWidth       int32
	MaxHeight      int32
	FrameCount     int32
	BeamLength     float32
	SyncType       int32 // ST_SYNC or ST_RAND
}

type frame struct { // dspriteframe_t
	Origin [2]int32
	Width  int32
	Height int32
}
