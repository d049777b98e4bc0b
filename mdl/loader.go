// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

import (
	"encoding/binary"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"hltex/container"
	"hltex/palette"
	"hltex/texture"
)

func init() {
	container.Register(Magic, container.Model, Decode)
}

// Load reads all textures of the studio model at path.
func Load(path string, opts texture.Options) (*texture.Result, error) {
	return container.Open(path, opts, Decode)
}

// Decode reads all textures embedded in a studio model. Models keeping
// their textures in a companion file have a zero texture index and are
// reported as having no resources.
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
		glog.V(1).Infof("%s is not a studio model (magic %q)", name, id[:])
		return texture.Skipped(texture.SkipWrongMagic, opts, name)
	}
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrapf(err, "could not read model header of %s", name)
	}
	tf, err := readTextureFields(r, h.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read texture fields of %s", name)
	}
	glog.V(2).Infof("%s: version %d, %d textures at %d", name, h.Version, tf.TextureCount, tf.TextureIndex)

	// same check as the sdk, 0 means no textures in this file
	if tf.TextureIndex <= 0 {
		glog.Warningf("%s: first texture index is %d, is this an untextured model?", name, tf.TextureIndex)
		return texture.Skipped(texture.SkipNoResources, opts, name)
	}
	if tf.TextureCount < 0 {
		return texture.Skipped(texture.SkipNoResources, opts, name)
	}
	recSize := int64(binary.Size(studioTexture{}))
	if int64(tf.TextureIndex)+int64(tf.TextureCount)*recSize > size {
		if err := texture.BadOffset(opts, "%s: texture table at %d", name, tf.TextureIndex); err != nil {
			return nil, err
		}
		return texture.Skipped(texture.SkipNoResources, opts, name)
	}

	if _, err := r.Seek(int64(tf.TextureIndex), io.SeekStart); err != nil {
		return nil, err
	}
	recs := make([]studioTexture, tf.TextureCount)
	if err := binary.Read(r, binary.LittleEndian, &recs); err != nil {
		return nil, errors.Wrapf(err, "could not read texture table of %s", name)
	}

	res := &texture.Result{}
	for i := range recs {
		rec := &recs[i]
		tn := texture.CString(rec.Name[:])
		glog.V(2).Infof("%s: texture %q flags=%032b", name, tn, rec.Flags)
		n := int64(rec.Width) * int64(rec.Height)
		if rec.Width <= 0 || rec.Height <= 0 || rec.Index <= 0 || int64(rec.Index)+n+palette.Size > size {
			if err := texture.BadOffset(opts, "%s: texture %q (%dx%d at %d)", name, tn, rec.Width, rec.Height, rec.Index); err != nil {
				return nil, err
			}
			glog.Warningf("%s: texture %q points outside the file", name, tn)
			continue
		}
		t, err := readTexture(r, rec, tn)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		if t.ApplyMask(opts.Transparency) {
			glog.V(1).Infof("transparency activated for %s (masked)", tn)
		}
		res.Textures = append(res.Textures, t)
	}
	return res, nil
}

func readTextureFields(r io.ReadSeeker, version int32) (textureFields, error) {
	off := int64(textureFieldsOffset)
	if version == alphaVersion {
		off = alphaTextureFieldsOffset
	}
	var tf textureFields
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return tf, err
	}
	err := binary.Read(r, binary.LittleEndian, &tf)
	return tf, err
}

// readTexture reads width*height indices followed by the palette.
func readTexture(r io.ReadSeeker, rec *studioTexture, name string) (*texture.Texture, error) {
	if _, err := r.Seek(int64(rec.Index), io.SeekStart); err != nil {
		return nil, err
	}
	pixels := make([]byte, int(rec.Width)*int(rec.Height))
	if _, err := io.ReadFull(r, pixels); err != nil {
		return nil, errors.Wrapf(err, "could not read pixels of %q", name)
	}
	pal, err := palette.Read(r)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %q", name)
	}
	// the additive bit is carried in Flags, nothing blends on it
	return texture.New(name, int(rec.Width), int(rec.Height), pixels, pal, texture.Flags(rec.Flags))
}
