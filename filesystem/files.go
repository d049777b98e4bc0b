// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"hltex/pack"
)

type File interface {
	io.ReadSeekCloser
	io.ReaderAt
}

// Source is a file that may hold a container, either on disk or inside
// a pak.
type Source struct {
	// Name is the path on disk, for pak entries the pak path joined with
	// the entry name.
	Name string
	// Rel is Name relative to the enumerated root, slash separated.
	Rel string

	pak    string
	member string
}

// InPack reports whether s is a pak entry.
func (s Source) InPack() bool {
	return s.pak != ""
}

type packFile struct {
	*io.SectionReader
	p *pack.Pack
}

func (f *packFile) Close() error {
	return f.p.Close()
}

// Open opens the source. Pak entries hold their pak open until the
// returned file is closed.
func (s Source) Open() (File, error) {
	if s.pak == "" {
		return os.Open(s.Name)
	}
	p, err := pack.NewPackReader(s.pak)
	if err != nil {
		return nil, err
	}
	r, err := p.Open(s.member)
	if err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "%s in %s", s.member, s.pak)
	}
	return &packFile{r, p}, nil
}

// Sources enumerates root. A regular file yields itself, or its entries
// if it is a pak. A directory yields all files below it, only its direct
// children unless recursive is set.
func Sources(root string, recursive bool) ([]Source, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return fileSources(root, filepath.Base(root))
	}
	var ret []Source
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		ss, err := fileSources(path, filepath.ToSlash(rel))
		if err != nil {
			glog.Warningf("skipping %s: %v", path, err)
			return nil
		}
		ret = append(ret, ss...)
		return nil
	})
	return ret, err
}

func fileSources(path, rel string) ([]Source, error) {
	if !pack.IsPack(path) {
		return []Source{{Name: path, Rel: rel}}, nil
	}
	p, err := pack.NewPackReader(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	var ret []Source
	for _, n := range p.Names() {
		ret = append(ret, Source{
			Name:   path + "/" + n,
			Rel:    rel + "/" + n,
			pak:    path,
			member: n,
		})
	}
	return ret, nil
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}

// Base returns the last element of a slash or backslash separated path.
func Base(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
