// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

const entrySize = 64

var magic = [4]byte{'P', 'A', 'C', 'K'}

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

type Pack struct {
	f     *os.File
	files map[string]*qfile
	names []string
	name  string
}

type qfile struct {
	offset int64
	size   int64
}

// IsPack reports whether the file at name starts with the pack id.
func IsPack(name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	var id [4]byte
	if _, err := io.ReadFull(f, id[:]); err != nil {
		return false
	}
	return id == magic
}

// Open returns a io.SectionReader or os.ErrNotExist if the pak has no
// entry with the provided name.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	q, ok := p.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}

	return io.NewSectionReader(p.f, q.offset, q.size), nil
}

// Names returns the entry names in sorted order.
func (p *Pack) Names() []string {
	return p.names
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	return p.f.Close()
}

func newPack(name string) (*Pack, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &Pack{f: f, name: name}, nil
}

func (p *Pack) init() error {
	fi, err := p.f.Stat()
	if err != nil {
		return err
	}
	var h header
	if err := binary.Read(p.f, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "could not read pack header")
	}
	if h.ID != magic {
		return errors.New("not a pack")
	}
	if h.Offset < 0 || h.Size < 0 || int64(h.Offset)+int64(h.Size) > fi.Size() {
		return errors.Errorf("pack directory at %d of size %d is out of range", h.Offset, h.Size)
	}
	if _, err := p.f.Seek(int64(h.Offset), io.SeekStart); err != nil {
		return err
	}
	filenum := h.Size / entrySize
	p.files = make(map[string]*qfile, filenum)
	for i := int32(0); i < filenum; i++ {
		var e entry
		if err := binary.Read(p.f, binary.LittleEndian, &e); err != nil {
			return errors.Wrap(err, "could not read pack directory")
		}
		name := string(e.Name[:])
		if n := bytes.IndexByte(e.Name[:], 0); n >= 0 {
			name = string(e.Name[:n])
		}
		if p.files[name] != nil {
			return errors.Errorf("files in pack are not unique: %s", name)
		}
		if e.Offset < 0 || e.Size < 0 || int64(e.Offset)+int64(e.Size) > fi.Size() {
			return errors.Errorf("pack entry %s is out of range", name)
		}
		p.files[name] = &qfile{
			offset: int64(e.Offset),
			size:   int64(e.Size),
		}
		p.names = append(p.names, name)
	}
	sort.Strings(p.names)
	return nil
}

func NewPackReader(name string) (*Pack, error) {
	p, err := newPack(name)
	if err != nil {
		return nil, err
	}
	if err := p.init(); err != nil {
		p.Close()
		return nil, errors.Wrap(err, name)
	}
	return p, nil
}
