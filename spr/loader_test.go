// SPDX-License-Identifier: GPL-2.0-or-later

package spr

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"hltex/container"
	"hltex/texture"
)

type testFrame struct {
	w, h int32
	fill byte
}

// sprite builds a sprite file. With group set all frames go into a
// single frame group.
func sprite(version, format int32, group bool, frames ...testFrame) []byte {
	var b bytes.Buffer
	b.Write(magicID[:])
	count := int32(len(frames))
	if group {
		count = 1
	}
	binary.Write(&b, binary.LittleEndian, header{
		Version:        version,
		TextureFormat:  format,
		BoundingRadius: 8,
		MaxWidth:       4,
		MaxHeight:      4,
		FrameCount:     count,
	})
	binary.Write(&b, binary.LittleEndian, uint16(256))
	for i := 0; i < 256; i++ {
		b.Write([]byte{byte(i), byte(i), byte(i)})
	}
	if group {
		binary.Write(&b, binary.LittleEndian, int32(SPR_GROUP))
		binary.Write(&b, binary.LittleEndian, int32(len(frames)))
		for range frames {
			binary.Write(&b, binary.LittleEndian, float32(0.1))
		}
	}
	for _, f := range frames {
		if !group {
			binary.Write(&b, binary.LittleEndian, int32(SPR_SINGLE))
		}
		binary.Write(&b, binary.LittleEndian, frame{Width: f.w, Height: f.h})
		b.Write(bytes.Repeat([]byte{f.fill}, int(f.w*f.h)))
	}
	return b.Bytes()
}

func TestDecodeSingleFrames(t *testing.T) {
	data := sprite(spriteVersion, SPR_NORMAL, false, testFrame{2, 3, 7}, testFrame{4, 1, 9})
	res, err := Decode(bytes.NewReader(data), "sprites/flare.spr", texture.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Textures) != 2 {
		t.Fatalf("got %d textures", len(res.Textures))
	}
	t0 := res.Textures[0]
	if t0.Name != "flare0" || t0.Width != 2 || t0.Height != 3 {
		t.Errorf("frame 0 = %v %dx%d", t0.Name, t0.Width, t0.Height)
	}
	if len(t0.Pixels) != 6 || t0.Pixels[5] != 7 {
		t.Errorf("frame 0 pixels = %v", t0.Pixels)
	}
	if t0.Palette[200].R != 200 || t0.Palette[200].A != 255 {
		t.Errorf("palette[200] = %v", t0.Palette[200])
	}
	if res.Textures[1].Name != "flare1" {
		t.Errorf("frame 1 name = %v", res.Textures[1].Name)
	}
}

func TestDecodeGroup(t *testing.T) {
	data := sprite(spriteVersion, SPR_NORMAL, true, testFrame{1, 1, 1}, testFrame{1, 1, 2}, testFrame{1, 1, 3})
	res, err := Decode(bytes.NewReader(data), "g.spr", texture.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Textures) != 3 {
		t.Fatalf("got %d textures", len(res.Textures))
	}
	if res.Textures[2].Name != "g2" || res.Textures[2].Pixels[0] != 3 {
		t.Errorf("frame 2 = %v %v", res.Textures[2].Name, res.Textures[2].Pixels)
	}
}

func TestDecodeAlphaTest(t *testing.T) {
	data := sprite(spriteVersion, SPR_ALPHTEST, false, testFrame{1, 1, 255})
	res, err := Decode(bytes.NewReader(data), "a.spr", texture.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tex := res.Textures[0]
	if !tex.Flags.Has(texture.FlagMasked) {
		t.Errorf("flags = %#x", tex.Flags)
	}
	if !tex.Palette.Opaque() {
		t.Errorf("palette masked without transparency")
	}

	res, err = Decode(bytes.NewReader(data), "a.spr", texture.Options{Transparency: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a := res.Textures[0].Palette[255].A; a != 0 {
		t.Errorf("alpha[255] = %v", a)
	}
}

func TestDecodeAdditive(t *testing.T) {
	data := sprite(spriteVersion, SPR_ADDITIVE, false, testFrame{1, 1, 255})
	res, err := Decode(bytes.NewReader(data), "a.spr", texture.Options{Transparency: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tex := res.Textures[0]
	if !tex.Flags.Has(texture.FlagAdditive) || !tex.Palette.Opaque() {
		t.Errorf("additive sprite: flags %#x opaque %v", tex.Flags, tex.Palette.Opaque())
	}
}

func TestDecodeWrongMagic(t *testing.T) {
	data := []byte("WAD3\x00\x00\x00\x00\x00\x00\x00\x00")
	res, err := Decode(bytes.NewReader(data), "x.spr", texture.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Skipped != texture.SkipWrongMagic {
		t.Errorf("Skipped = %v", res.Skipped)
	}
	_, err = Decode(bytes.NewReader(data), "x.spr", texture.Options{Strict: true})
	if !errors.Is(err, texture.ErrWrongMagic) {
		t.Errorf("strict Decode = %v", err)
	}
}

func TestDecodeShortFile(t *testing.T) {
	res, err := Decode(bytes.NewReader([]byte("ID")), "x.spr", texture.Options{})
	if err != nil || res.Skipped != texture.SkipWrongMagic {
		t.Errorf("Decode(2 bytes) = %v, %v", res, err)
	}
}

func TestDecodeQuakeVersion(t *testing.T) {
	data := sprite(1, SPR_NORMAL, false, testFrame{1, 1, 1})
	res, err := Decode(bytes.NewReader(data), "q.spr", texture.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Skipped != texture.SkipUnsupportedVersion {
		t.Errorf("Skipped = %v", res.Skipped)
	}
}

func TestDecodeNoFrames(t *testing.T) {
	data := sprite(spriteVersion, SPR_NORMAL, false)
	res, err := Decode(bytes.NewReader(data), "e.spr", texture.Options{Strict: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Textures) != 0 || res.Skipped != texture.NotSkipped {
		t.Errorf("result = %+v", res)
	}
}

func TestDecodeNegativeFrames(t *testing.T) {
	data := sprite(spriteVersion, SPR_NORMAL, false)
	// FrameCount is the 7th field after the id
	binary.LittleEndian.PutUint32(data[4+6*4:], uint32(0xffffffff))
	res, err := Decode(bytes.NewReader(data), "n.spr", texture.Options{})
	if err != nil || res.Skipped != texture.SkipNoResources {
		t.Errorf("Decode = %v, %v", res, err)
	}
	if _, err := Decode(bytes.NewReader(data), "n.spr", texture.Options{Strict: true}); !errors.Is(err, texture.ErrNoResources) {
		t.Errorf("strict Decode = %v", err)
	}
}

func TestDecodeNaNRadius(t *testing.T) {
	data := sprite(spriteVersion, SPR_NORMAL, false, testFrame{1, 1, 1})
	binary.LittleEndian.PutUint32(data[4+3*4:], math.Float32bits(float32(math.NaN())))
	if _, err := Decode(bytes.NewReader(data), "n.spr", texture.Options{}); err != nil {
		t.Errorf("Decode: %v", err)
	}
	if _, err := Decode(bytes.NewReader(data), "n.spr", texture.Options{Strict: true}); err == nil {
		t.Errorf("strict Decode with NaN radius succeeded")
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := sprite(spriteVersion, SPR_NORMAL, false, testFrame{16, 16, 1})
	if _, err := Decode(bytes.NewReader(data[:len(data)-10]), "t.spr", texture.Options{}); err == nil {
		t.Errorf("Decode of truncated sprite succeeded")
	}
}

func TestLoadAndDetect(t *testing.T) {
	p := filepath.Join(t.TempDir(), "fire.spr")
	if err := os.WriteFile(p, sprite(spriteVersion, SPR_NORMAL, false, testFrame{2, 2, 4}), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := Load(p, texture.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Textures) != 1 || res.Textures[0].Name != "fire0" {
		t.Errorf("Load = %+v", res)
	}
	k, res, err := container.Load(p, texture.Options{})
	if err != nil {
		t.Fatalf("container.Load: %v", err)
	}
	if k != container.Sprite || len(res.Textures) != 1 {
		t.Errorf("container.Load = %v, %+v", k, res)
	}
}

// brokenDisk seeks fine but fails every read.
type brokenDisk struct{}

func (brokenDisk) Read([]byte) (int, error)       { return 0, errors.New("disk read failed") }
func (brokenDisk) Seek(int64, int) (int64, error) { return 0, nil }

func TestDecodeReadError(t *testing.T) {
	res, err := Decode(brokenDisk{}, "x.spr", texture.Options{})
	if err == nil || errors.Is(err, texture.ErrWrongMagic) {
		t.Errorf("Decode = %+v, %v", res, err)
	}
}
