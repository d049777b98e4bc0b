// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

const (
	// Version is the only level version whose textures carry their own
	// palette.
	Version = 30

	// max textures in the texture lump
	maxTextures = 4096
)

// called lump_t in c
type directory struct {
	Offset int32
	Size   int32
}

type header struct {
	Version      int32
	Entities     directory
	Planes       directory
	Textures     directory
	Vertexes     directory
	Visibility   directory
	Nodes        directory
	Texinfo      directory
	Faces        directory
	Lighting     directory
	ClipNodes    directory
	Leafs        directory
	MarkSurfaces directory
	Edges        directory
	SurfaceEdges directory // SURFEDGES
	Models       directory
}

func (d directory) end() int64 {
	return int64(d.Offset) + int64(d.Size)
}
