// SPDX-License-Identifier: GPL-2.0-or-later

package image

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	stdimage "image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"

	"hltex/palette"
	"hltex/texture"
)

func testTexture(t *testing.T, flags texture.Flags) *texture.Texture {
	t.Helper()
	rgb := make([]byte, palette.Size)
	for i := range rgb {
		rgb[i] = byte(i * 7)
	}
	pal, err := palette.FromRGB(rgb)
	if err != nil {
		t.Fatal(err)
	}
	pixels := make([]byte, 8*4)
	for i := range pixels {
		pixels[i] = byte(i * 8)
	}
	pixels[0] = 255
	tex, err := texture.New("test", 8, 4, pixels, pal, flags)
	if err != nil {
		t.Fatal(err)
	}
	return tex
}

func writeBaseline(t *testing.T, tex *texture.Texture) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "test.png")
	if err := Write(name, tex, PNG); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return name
}

func TestWritePNG(t *testing.T) {
	tex := testTexture(t, texture.FlagMasked)
	tex.ApplyMask(true)
	name := writeBaseline(t, tex)
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, trnsTag) {
		t.Errorf("baseline file already has a tRNS chunk")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	p, ok := img.(*stdimage.Paletted)
	if !ok {
		t.Fatalf("decoded %T, want *image.Paletted", img)
	}
	if len(p.Palette) != 256 {
		t.Errorf("palette has %d entries", len(p.Palette))
	}
	if p.ColorIndexAt(1, 0) != 8 || p.ColorIndexAt(0, 0) != 255 {
		t.Errorf("indices = %v %v", p.ColorIndexAt(0, 0), p.ColorIndexAt(1, 0))
	}
	entries, _ := filepath.Glob(filepath.Join(filepath.Dir(name), ".*.tmp"))
	if len(entries) != 0 {
		t.Errorf("temporary files left: %v", entries)
	}
}

func TestWriteBMP(t *testing.T) {
	tex := testTexture(t, 0)
	name := filepath.Join(t.TempDir(), "test.bmp")
	if err := Write(name, tex, BMP); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("bmp.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("bounds = %v", b)
	}
}

func TestWriteMissingDir(t *testing.T) {
	tex := testTexture(t, 0)
	if err := Write(filepath.Join(t.TempDir(), "nope", "x.png"), tex, PNG); err == nil {
		t.Errorf("Write into missing dir succeeded")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("BMP"); err != nil || f != BMP {
		t.Errorf("ParseFormat(BMP) = %v, %v", f, err)
	}
	if f, err := ParseFormat("png"); err != nil || f.Ext() != ".png" {
		t.Errorf("ParseFormat(png) = %v, %v", f, err)
	}
	if _, err := ParseFormat("tga"); err == nil {
		t.Errorf("ParseFormat(tga) succeeded")
	}
}

func TestPatchOpaque(t *testing.T) {
	tex := testTexture(t, 0)
	name := writeBaseline(t, tex)
	out, err := Patch(name, tex)
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if out != "" {
		t.Errorf("Patch of opaque texture wrote %v", out)
	}
	if _, err := os.Stat(name + TransparencySuffix); !os.IsNotExist(err) {
		t.Errorf("Stat(patched) = %v", err)
	}
}

func TestPatch(t *testing.T) {
	tex := testTexture(t, texture.FlagMasked)
	tex.ApplyMask(true)
	name := writeBaseline(t, tex)
	before, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}

	out, err := Patch(name, tex)
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if out != name+".trans" {
		t.Errorf("Patch wrote %v", out)
	}
	after, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("baseline file was modified")
	}
	patched, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(patched) != len(before)+268 {
		t.Errorf("patched size = %d, want %d", len(patched), len(before)+268)
	}

	i := bytes.Index(patched, trnsTag)
	if i < 0 {
		t.Fatalf("no tRNS chunk")
	}
	if l := binary.BigEndian.Uint32(patched[i-4:]); l != 256 {
		t.Errorf("tRNS length = %d", l)
	}
	got := binary.BigEndian.Uint32(patched[i+4+256:])
	if want := crc32.ChecksumIEEE(patched[i : i+4+256]); got != want {
		t.Errorf("tRNS crc = %#x, want %#x", got, want)
	}
	if a := patched[i+4+255]; a != 0 {
		t.Errorf("alpha[255] = %d", a)
	}

	img, err := png.Decode(bytes.NewReader(patched))
	if err != nil {
		t.Fatalf("png.Decode(patched): %v", err)
	}
	p := img.(*stdimage.Paletted)
	if _, _, _, a := p.Palette[255].RGBA(); a != 0 {
		t.Errorf("decoded alpha[255] = %v", a)
	}
	if _, _, _, a := p.Palette[254].RGBA(); a != 0xffff {
		t.Errorf("decoded alpha[254] = %v", a)
	}
}

func TestPatchIdempotent(t *testing.T) {
	tex := testTexture(t, texture.FlagMasked)
	tex.ApplyMask(true)
	name := writeBaseline(t, tex)
	out, err := Patch(name, tex)
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	first, _ := os.ReadFile(out)
	if _, err := Patch(name, tex); err != nil {
		t.Fatalf("second Patch: %v", err)
	}
	second, _ := os.ReadFile(out)
	if !bytes.Equal(first, second) {
		t.Errorf("patching twice gave different files")
	}
}

func TestPatchNoPalette(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "rgba.png")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, stdimage.NewNRGBA(stdimage.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tex := testTexture(t, texture.FlagMasked)
	tex.ApplyMask(true)
	_, err = Patch(name, tex)
	if !errors.Is(err, ErrNoPalette) {
		t.Errorf("Patch = %v, want ErrNoPalette", err)
	}
	if _, err := os.Stat(name + TransparencySuffix); !os.IsNotExist(err) {
		t.Errorf("Stat(patched) = %v", err)
	}
}

func TestPatchMissingFile(t *testing.T) {
	tex := testTexture(t, texture.FlagMasked)
	tex.ApplyMask(true)
	if _, err := Patch(filepath.Join(t.TempDir(), "gone.png"), tex); err == nil {
		t.Errorf("Patch of missing file succeeded")
	}
}

func TestInsertTransparencyNotPNG(t *testing.T) {
	if _, err := InsertTransparency([]byte("GIF89a...PLTE"), make([]byte, 256)); !errors.Is(err, ErrNotPNG) {
		t.Errorf("InsertTransparency = %v", err)
	}
}

func TestInsertTransparencyTruncated(t *testing.T) {
	var b bytes.Buffer
	b.Write(signature)
	binary.Write(&b, binary.BigEndian, uint32(768))
	b.Write(plteTag)
	b.Write(make([]byte, 10))
	if _, err := InsertTransparency(b.Bytes(), make([]byte, 256)); !errors.Is(err, ErrNoPalette) {
		t.Errorf("InsertTransparency = %v", err)
	}
}

func TestChunk(t *testing.T) {
	c := chunk(trnsTag, []byte{1, 2, 3})
	if len(c) != 15 {
		t.Fatalf("len = %d", len(c))
	}
	if binary.BigEndian.Uint32(c) != 3 || string(c[4:8]) != "tRNS" {
		t.Errorf("chunk header = %v", c[:8])
	}
	if got, want := binary.BigEndian.Uint32(c[11:]), crc32.ChecksumIEEE(c[4:11]); got != want {
		t.Errorf("crc = %#x, want %#x", got, want)
	}
}
