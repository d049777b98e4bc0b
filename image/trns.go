// SPDX-License-Identifier: GPL-2.0-or-later

package image

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"hltex/crc"
	"hltex/palette"
	"hltex/texture"
)

// TransparencySuffix is appended to the name of a patched file.
const TransparencySuffix = ".trans"

// length, type and crc around the chunk data
const chunkOverhead = 4 + 4 + 4

var (
	ErrNotPNG    = errors.New("not a png file")
	ErrNoPalette = errors.New("no PLTE chunk")

	signature = []byte("\x89PNG\r\n\x1a\n")
	plteTag   = []byte("PLTE")
	trnsTag   = []byte("tRNS")
)

// Patch writes a copy of the png file at name with a tRNS chunk holding
// the alpha of t's palette. The copy is named name+TransparencySuffix and
// its name is returned. If the palette is opaque nothing is written and
// the returned name is empty.
func Patch(name string, t *texture.Texture) (string, error) {
	return PatchTo(name, name+TransparencySuffix, &t.Palette)
}

// PatchTo is Patch with an explicit output name.
func PatchTo(name, out string, p *palette.Palette) (string, error) {
	if p.Opaque() {
		return "", nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	patched, err := InsertTransparency(data, p.Alphas())
	if err != nil {
		return "", errors.Wrap(err, name)
	}
	err = writeFile(out, func(w io.Writer) error {
		_, err := w.Write(patched)
		return err
	})
	if err != nil {
		return "", errors.Wrapf(err, "could not write %s", out)
	}
	glog.V(1).Infof("added transparency to %s", out)
	return out, nil
}

// InsertTransparency returns a copy of the png in data with a tRNS chunk
// holding alpha placed directly after the PLTE chunk. data is not
// modified.
func InsertTransparency(data, alpha []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, signature) {
		return nil, ErrNotPNG
	}
	tag := bytes.Index(data[len(signature):], plteTag)
	if tag < 0 {
		return nil, ErrNoPalette
	}
	// the chunk starts with its length, in front of the tag
	start := len(signature) + tag - 4
	if start < len(signature) {
		return nil, errors.Wrap(ErrNoPalette, "PLTE tag without length")
	}
	length := binary.BigEndian.Uint32(data[start:])
	end := int64(start) + int64(length) + chunkOverhead
	if end > int64(len(data)) {
		return nil, errors.Wrapf(ErrNoPalette, "PLTE chunk of %d bytes at %d runs past the end", length, start)
	}
	c := chunk(trnsTag, alpha)
	out := make([]byte, 0, len(data)+len(c))
	out = append(out, data[:end]...)
	out = append(out, c...)
	out = append(out, data[end:]...)
	return out, nil
}

// chunk serializes a png chunk. The crc covers type and data.
func chunk(typ, data []byte) []byte {
	b := make([]byte, len(data)+chunkOverhead)
	binary.BigEndian.PutUint32(b, uint32(len(data)))
	copy(b[4:], typ)
	copy(b[8:], data)
	binary.BigEndian.PutUint32(b[8+len(data):], crc.Checksum(b[4:8+len(data)]))
	return b
}
