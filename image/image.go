// SPDX-License-Identifier: GPL-2.0-or-later

package image

import (
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"

	"hltex/texture"
)

type Format int

const (
	PNG Format = iota
	BMP
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	}
	return PNG, errors.Errorf("unknown image format %q", s)
}

func (f Format) String() string {
	if f == BMP {
		return "bmp"
	}
	return "png"
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// Write encodes t as an 8bit paletted image. The palette is written
// without alpha. For png the transparency is added afterwards by Patch.
func Write(name string, t *texture.Texture, f Format) error {
	img := t.Image()
	err := writeFile(name, func(w io.Writer) error {
		if f == BMP {
			return bmp.Encode(w, img)
		}
		return png.Encode(w, img)
	})
	if err != nil {
		return errors.Wrapf(err, "could not write %s", name)
	}
	return nil
}

// writeFile writes to a temporary sibling of name and renames it into
// place, so name is either complete or untouched.
func writeFile(name string, write func(io.Writer) error) error {
	tmp := filepath.Join(filepath.Dir(name),
		"."+filepath.Base(name)+"."+uuid.Must(uuid.NewV7()).String()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return err
	}
	glog.V(2).Infof("wrote %s", name)
	return nil
}
