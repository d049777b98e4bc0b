// SPDX-License-Identifier: GPL-2.0-or-later

// Package bsp reads the textures embedded in level files.
package bsp

import (
	"encoding/binary"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"hltex/container"
	"hltex/texture"
	"hltex/wad"
)

func init() {
	container.Register(Version, container.Level, Decode)
}

// Load reads the embedded textures of the level file at path.
func Load(path string, opts texture.Options) (*texture.Result, error) {
	return container.Open(path, opts, Decode)
}

// Decode reads the texture lump of a level. Textures that are only
// referenced by name and stored in an external archive are skipped.
func Decode(r io.ReadSeeker, name string, opts texture.Options) (*texture.Result, error) {
	size, err := container.Size(r)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return texture.Skipped(texture.SkipWrongMagic, opts, name)
		}
		return nil, errors.Wrapf(err, "could not read level header of %s", name)
	}
	if h.Version != Version {
		glog.V(1).Infof("%s has wrong version number (%d should be %d)", name, h.Version, Version)
		return texture.Skipped(texture.SkipWrongMagic, opts, name)
	}

	l := h.Textures
	if l.Size == 0 {
		return &texture.Result{}, nil
	}
	if l.Offset <= 0 || l.Size < 4 || l.end() > size {
		if err := texture.BadOffset(opts, "%s: texture lump at %d with size %d", name, l.Offset, l.Size); err != nil {
			return nil, err
		}
		return texture.Skipped(texture.SkipNoResources, opts, name)
	}
	if _, err := r.Seek(int64(l.Offset), io.SeekStart); err != nil {
		return nil, err
	}
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrapf(err, "could not read texture count of %s", name)
	}
	if count < 0 || count > maxTextures || 4+4*int64(count) > int64(l.Size) {
		if err := texture.BadOffset(opts, "%s: %d textures in a lump of %d bytes", name, count, l.Size); err != nil {
			return nil, err
		}
		return texture.Skipped(texture.SkipNoResources, opts, name)
	}
	offsets := make([]int32, count)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		return nil, errors.Wrapf(err, "could not read texture offsets of %s", name)
	}

	res := &texture.Result{}
	external := 0
	for i, o := range offsets {
		// -1 marks an unused slot
		if o < 0 {
			continue
		}
		at := int64(l.Offset) + int64(o)
		if at >= l.end() {
			if err := texture.BadOffset(opts, "%s: texture %d at %d", name, i, at); err != nil {
				return nil, err
			}
			glog.Warningf("%s: texture %d points outside the texture lump", name, i)
			continue
		}
		t, ok, err := wad.MipTex(r, at, l.end())
		if errors.Is(err, texture.ErrBadOffset) && !opts.Strict {
			glog.Warningf("%s: %v", name, err)
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		if !ok {
			external++
			continue
		}
		if t.ApplyMask(opts.Transparency) {
			glog.V(1).Infof("transparency activated for %s", t.Name)
		}
		res.Textures = append(res.Textures, t)
	}
	if external > 0 {
		glog.V(1).Infof("%s: %d textures are stored in %v", name, external, externalArchives(r, h.Entities, size))
	}
	return res, nil
}

// externalArchives lists the archives named by the worldspawn entity. It
// returns nil if the entity lump cannot be read.
func externalArchives(r io.ReadSeeker, d directory, size int64) []string {
	if d.Offset <= 0 || d.Size <= 0 || d.end() > size {
		return nil
	}
	if _, err := r.Seek(int64(d.Offset), io.SeekStart); err != nil {
		return nil
	}
	b := make([]byte, d.Size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil
	}
	return wads(parseEntities(b))
}
