// SPDX-License-Identifier: GPL-2.0-or-later

package spr

import (
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"hltex/container"
	"hltex/palette"
	"hltex/texture"
)

func init() {
	container.Register(Magic, container.Sprite, Decode)
}

// Load reads all frames of the sprite file at path.
func Load(path string, opts texture.Options) (*texture.Result, error) {
	return container.Open(path, opts, Decode)
}

// Decode reads all frames of a sprite. Every frame, including the members
// of frame groups, becomes one texture named after the sprite and its
// frame index.
func Decode(r io.ReadSeeker, name string, opts texture.Options) (*texture.Result, error) {
	size, err := container.Size(r)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	id, err := container.ReadMagic(r)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	if id != magicID {
		glog.V(1).Infof("%s is not a sprite (magic %q)", name, id[:])
		return texture.Skipped(texture.SkipWrongMagic, opts, name)
	}
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrapf(err, "could not read sprite header of %s", name)
	}
	if h.Version != spriteVersion {
		glog.Warningf("%s has wrong version number (%d should be %d)", name, h.Version, spriteVersion)
		return texture.Skipped(texture.SkipUnsupportedVersion, opts, name)
	}
	if !finite(h.BoundingRadius) || !finite(h.BeamLength) {
		if opts.Strict {
			return nil, errors.Errorf("%s has a non finite bounding radius or beam length", name)
		}
		glog.Warningf("%s has a non finite bounding radius or beam length", name)
	}
	if h.FrameCount < 0 {
		glog.Warningf("%s: invalid # of frames: %v", name, h.FrameCount)
		return texture.Skipped(texture.SkipNoResources, opts, name)
	}

	pal, err := palette.ReadCounted(r)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}

	d := decoder{
		r:     r,
		size:  size,
		base:  baseName(name),
		pal:   pal,
		flags: formatFlags(h.TextureFormat),
		opts:  opts,
	}
	for i := int32(0); i < h.FrameCount; i++ {
		var typ int32
		if err := binary.Read(r, binary.LittleEndian, &typ); err != nil {
			return nil, errors.Wrapf(err, "could not read frame type %d of %s", i, name)
		}
		if typ == SPR_SINGLE {
			if err := d.frame(); err != nil {
				return nil, errors.Wrap(err, name)
			}
			continue
		}
		if err := d.group(); err != nil {
			return nil, errors.Wrap(err, name)
		}
	}
	return &texture.Result{Textures: d.textures}, nil
}

type decoder struct {
	r        io.ReadSeeker
	size     int64
	base     string
	pal      palette.Palette
	flags    texture.Flags
	opts     texture.Options
	textures []*texture.Texture
}

func (d *decoder) group() error {
	var count int32
	if err := binary.Read(d.r, binary.LittleEndian, &count); err != nil {
		return errors.Wrap(err, "could not read frame group")
	}
	if count < 0 {
		return errors.Errorf("frame group has %d frames", count)
	}
	// skip the intervals
	if _, err := d.r.Seek(int64(count)*4, io.SeekCurrent); err != nil {
		return err
	}
	for i := int32(0); i < count; i++ {
		if err := d.frame(); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) frame() error {
	var f frame
	if err := binary.Read(d.r, binary.LittleEndian, &f); err != nil {
		return errors.Wrap(err, "could not read frame header")
	}
	idx := len(d.textures)
	if f.Width <= 0 || f.Height <= 0 {
		return errors.Errorf("frame %d has invalid size %dx%d", idx, f.Width, f.Height)
	}
	n := int64(f.Width) * int64(f.Height)
	pos, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if pos+n > d.size {
		return errors.Wrapf(io.ErrUnexpectedEOF, "frame %d needs %d bytes at %d", idx, n, pos)
	}
	pixels := make([]byte, n)
	if _, err := io.ReadFull(d.r, pixels); err != nil {
		return errors.Wrapf(err, "could not read frame %d", idx)
	}
	t, err := texture.New(fmt.Sprintf("%s%d", d.base, idx), int(f.Width), int(f.Height), pixels, d.pal, d.flags)
	if err != nil {
		return err
	}
	if t.ApplyMask(d.opts.Transparency) {
		glog.V(1).Infof("transparency activated for %s (alpha test)", t.Name)
	}
	d.textures = append(d.textures, t)
	return nil
}

func formatFlags(format int32) texture.Flags {
	switch format {
	case SPR_ADDITIVE:
		return texture.FlagAdditive
	case SPR_INDEXALPHA:
		return texture.FlagIndexAlpha
	case SPR_ALPHTEST:
		return texture.FlagMasked
	}
	return 0
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func baseName(name string) string {
	name = path.Base(filepath.ToSlash(name))
	return strings.TrimSuffix(name, path.Ext(name))
}
