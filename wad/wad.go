// SPDX-License-Identifier: GPL-2.0-or-later

package wad

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"hltex/container"
	"hltex/palette"
	"hltex/texture"
)

func init() {
	container.Register(Magic, container.Archive, Decode)
}

// Load reads all texture lumps of the wad file at path.
func Load(path string, opts texture.Options) (*texture.Result, error) {
	return container.Open(path, opts, Decode)
}

// Decode reads every lump whose type carries a raster. Other lumps are
// skipped.
func Decode(r io.ReadSeeker, name string, opts texture.Options) (*texture.Result, error) {
	size, err := container.Size(r)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	lumps, skip, err := getLumps(r, size, opts)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	if skip != texture.NotSkipped {
		return texture.Skipped(skip, opts, name)
	}
	res := &texture.Result{}
	for i := range lumps {
		l := &lumps[i]
		ln := texture.CString(l.Name[:])
		if !IsTexture(l.Typ) {
			glog.V(2).Infof("%s: skipping lump %q of type %#x", name, ln, l.Typ)
			continue
		}
		if l.Compression != 0 {
			if opts.Strict {
				return nil, errors.Errorf("%s: lump %q is compressed", name, ln)
			}
			glog.Warningf("%s: skipping compressed lump %q", name, ln)
			continue
		}
		if l.Offset <= 0 || int64(l.Offset)+int64(l.Size) > size || l.Size < 0 {
			if err := texture.BadOffset(opts, "%s: lump %q at %d", name, ln, l.Offset); err != nil {
				return nil, err
			}
			glog.Warningf("%s: lump %q points outside the file", name, ln)
			continue
		}
		t, err := decodeLump(r, l, ln, size)
		if errors.Is(err, texture.ErrBadOffset) && !opts.Strict {
			glog.Warningf("%s: %v", name, err)
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		if t.ApplyMask(opts.Transparency) {
			glog.V(1).Infof("transparency activated for %s", t.Name)
		}
		res.Textures = append(res.Textures, t)
	}
	return res, nil
}

func getLumps(r io.ReadSeeker, size int64, opts texture.Options) ([]lump, texture.Skip, error) {
	id, err := container.ReadMagic(r)
	if err != nil {
		return nil, texture.NotSkipped, err
	}
	if id != magicID {
		glog.V(1).Infof("wad file doesn't have WAD3 id (%q)", id[:])
		return nil, texture.SkipWrongMagic, nil
	}
	h := header{}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, texture.NotSkipped, errors.Wrap(err, "could not read wad header")
	}
	if h.DirOffset <= 0 || h.EntryCount < 0 {
		glog.Warningf("wad directory offset is %d with %d entries", h.DirOffset, h.EntryCount)
		return nil, texture.SkipNoResources, nil
	}
	if h.EntryCount == 0 {
		return nil, texture.NotSkipped, nil
	}
	if int64(h.DirOffset)+int64(h.EntryCount)*lumpSize > size {
		if err := texture.BadOffset(opts, "wad directory at %d with %d entries", h.DirOffset, h.EntryCount); err != nil {
			return nil, texture.NotSkipped, err
		}
		return nil, texture.SkipNoResources, nil
	}
	if _, err := r.Seek(int64(h.DirOffset), io.SeekStart); err != nil {
		return nil, texture.NotSkipped, err
	}
	lumps := make([]lump, h.EntryCount)
	if err := binary.Read(r, binary.LittleEndian, &lumps); err != nil {
		return nil, texture.NotSkipped, errors.Wrap(err, "could not read wad directory")
	}
	return lumps, texture.NotSkipped, nil
}

// MipTex decodes a mip texture stored at offset, the layout level files
// embed their textures in. size bounds the data. ok is false for textures
// that only carry a name and live in an external archive.
func MipTex(r io.ReadSeeker, offset, size int64) (t *texture.Texture, ok bool, err error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, false, err
	}
	var mh mipTexHeader
	if err := binary.Read(r, binary.LittleEndian, &mh); err != nil {
		return nil, false, errors.Wrap(err, "could not read mip texture")
	}
	name := texture.CString(mh.Name[:])
	if mh.Offsets == [mipLevels]uint32{} {
		return nil, false, nil
	}
	l := lump{Offset: int32(offset), Typ: typMipTex}
	t, err = decodeLump(r, &l, name, size)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func decodeLump(r io.ReadSeeker, l *lump, name string, size int64) (*texture.Texture, error) {
	if _, err := r.Seek(int64(l.Offset), io.SeekStart); err != nil {
		return nil, err
	}
	var flags texture.Flags
	if strings.HasPrefix(name, "{") {
		flags |= texture.FlagMasked
	}
	var (
		w, h   int64
		pixels int64 // absolute offset of the pixel data
		pal    int64 // absolute offset of the counted palette
	)
	switch l.Typ {
	case typDecal, typMipTex:
		if l.Typ == typDecal {
			flags |= texture.FlagIndexAlpha
		}
		var mh mipTexHeader
		if err := binary.Read(r, binary.LittleEndian, &mh); err != nil {
			return nil, errors.Wrapf(err, "could not read mip texture %q", name)
		}
		w, h = int64(mh.Width), int64(mh.Height)
		pixels = int64(l.Offset) + int64(mh.Offsets[0])
		if mh.Offsets[0] == 0 {
			pixels = int64(l.Offset) + int64(binary.Size(mh))
		}
		pal = pixels + w*h + (w/2)*(h/2) + (w/4)*(h/4) + (w/8)*(h/8)
		if mh.Offsets[3] != 0 {
			pal = int64(l.Offset) + int64(mh.Offsets[3]) + (w/8)*(h/8)
		}
	case typQPic:
		var qh qPicHeader
		if err := binary.Read(r, binary.LittleEndian, &qh); err != nil {
			return nil, errors.Wrapf(err, "could not read picture %q", name)
		}
		w, h = int64(qh.Width), int64(qh.Height)
		pixels = int64(l.Offset) + int64(binary.Size(qh))
		pal = pixels + w*h
	case typFont:
		var fh fontHeader
		if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
			return nil, errors.Wrapf(err, "could not read font %q", name)
		}
		w, h = int64(fh.Width), int64(fh.Height)
		pixels = int64(l.Offset) + int64(binary.Size(fh))
		pal = pixels + w*h
	default:
		return nil, errors.Errorf("lump %q has no raster (type %#x)", name, l.Typ)
	}
	if w <= 0 || h <= 0 {
		return nil, errors.Wrapf(texture.ErrBadOffset, "lump %q has size %dx%d", name, w, h)
	}
	if pixels+w*h > size || pal+2 > size {
		return nil, errors.Wrapf(texture.ErrBadOffset, "lump %q data ends past the file", name)
	}

	if _, err := r.Seek(pixels, io.SeekStart); err != nil {
		return nil, err
	}
	data := make([]byte, w*h)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrapf(err, "could not read pixels of %q", name)
	}
	if _, err := r.Seek(pal, io.SeekStart); err != nil {
		return nil, err
	}
	p, err := palette.ReadCounted(r)
	if err != nil {
		return nil, errors.Wrapf(err, "lump %q", name)
	}
	return texture.New(name, int(w), int(h), data, p, flags)
}
