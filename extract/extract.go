// SPDX-License-Identifier: GPL-2.0-or-later

// Package extract runs the extractor over a file, a pak or a directory
// tree and writes every decoded texture as an image.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"hltex/conlog"
	"hltex/container"
	"hltex/filesystem"
	"hltex/image"
	"hltex/texture"
)

type Config struct {
	// Input is a container file, a pak or a directory.
	Input string
	// Out is the directory images are written to. Containers found in a
	// directory or pak get a subdirectory named after their path.
	Out       string
	Recursive bool
	Options   texture.Options
	Format    image.Format
	// Suffix is appended to the png name for the transparency patched copy.
	Suffix string
	Jobs   int
}

// Output describes one written texture.
type Output struct {
	Name   string
	Width  int
	Height int
	Flags  texture.Flags
	Path   string
	// Transparent is the patched copy, empty if none was written.
	Transparent string
}

// Entry is the outcome for one container.
type Entry struct {
	Source   string
	Kind     container.Kind
	Skipped  texture.Skip
	Err      error
	Textures []Output
}

type Report struct {
	Input string
	// Entries is in enumeration order. After a canceled run the entries
	// of containers never started are nil.
	Entries []*Entry
}

// Failed returns the number of containers that ended in an error.
func (r *Report) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if e != nil && e.Err != nil {
			n++
		}
	}
	return n
}

// Written returns the number of images written, not counting patched
// copies.
func (r *Report) Written() int {
	n := 0
	for _, e := range r.Entries {
		if e != nil {
			n += len(e.Textures)
		}
	}
	return n
}

// Run extracts all containers below cfg.Input. A failing container is
// recorded in its entry and does not stop the others. The returned error
// is only set if the input could not be enumerated or ctx was canceled.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	fi, err := os.Stat(cfg.Input)
	if err != nil {
		return nil, err
	}
	sources, err := filesystem.Sources(cfg.Input, cfg.Recursive)
	if err != nil {
		return nil, errors.Wrapf(err, "could not enumerate %s", cfg.Input)
	}
	// a single plain file writes straight into Out
	flat := !fi.IsDir() && len(sources) == 1 && !sources[0].InPack()
	dirs := outDirs(cfg.Out, sources)

	if err := os.MkdirAll(cfg.Out, 0755); err != nil {
		return nil, err
	}

	rep := &Report{
		Input:   cfg.Input,
		Entries: make([]*Entry, len(sources)),
	}
	g, ctx := errgroup.WithContext(ctx)
	jobs := cfg.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)
	for i, s := range sources {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dir := dirs[i]
			if flat {
				dir = cfg.Out
			}
			rep.Entries[i] = extract(cfg, s, dir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}
	return rep, nil
}

func extract(cfg Config, s filesystem.Source, dir string) *Entry {
	e := &Entry{Source: s.Name}
	fail := func(err error) *Entry {
		e.Err = err
		glog.Errorf("%s: %v", s.Name, err)
		return e
	}

	f, err := s.Open()
	if err != nil {
		return fail(err)
	}
	k, res, err := container.Decode(f, s.Name, cfg.Options)
	f.Close()
	e.Kind = k
	if err != nil {
		return fail(err)
	}
	if res.Skipped != texture.NotSkipped {
		e.Skipped = res.Skipped
		glog.V(1).Infof("skipping %s: %v", s.Name, res.Skipped)
		return e
	}
	if len(res.Textures) == 0 {
		return e
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fail(err)
	}

	used := make(map[string]int)
	for _, t := range res.Textures {
		conlog.Printf("Extracting texture %s from %s...\n", t.Name, filesystem.Base(s.Name))
		stem := filesystem.StripExt(t.FileName())
		if stem == "" {
			stem = t.FileName()
		}
		name := uniqueName(used, stem)
		path := filepath.Join(dir, name+cfg.Format.Ext())
		if err := image.Write(path, t, cfg.Format); err != nil {
			return fail(err)
		}
		o := Output{
			Name:   t.Name,
			Width:  t.Width,
			Height: t.Height,
			Flags:  t.Flags,
			Path:   path,
		}
		if cfg.Options.Transparency && cfg.Format == image.PNG {
			suffix := cfg.Suffix
			if suffix == "" {
				suffix = image.TransparencySuffix
			}
			tp, err := image.PatchTo(path, path+suffix, &t.Palette)
			if err != nil {
				return fail(err)
			}
			o.Transparent = tp
		}
		e.Textures = append(e.Textures, o)
	}
	return e
}

// outDirs maps each source to its output directory below out. Sources
// whose paths only differ in the extension keep it, as <name>_<ext>.
func outDirs(out string, sources []filesystem.Source) []string {
	count := make(map[string]int)
	for _, s := range sources {
		count[filesystem.StripExt(s.Rel)]++
	}
	dirs := make([]string, len(sources))
	for i, s := range sources {
		rel := filesystem.StripExt(s.Rel)
		if count[rel] > 1 {
			if ext := filesystem.Ext(s.Rel); len(ext) > 1 {
				rel += "_" + ext[1:]
			}
		}
		dirs[i] = filepath.Join(out, filepath.FromSlash(rel))
	}
	return dirs
}

// uniqueName appends _N to names already used within one container.
func uniqueName(used map[string]int, name string) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	u := fmt.Sprintf("%s_%d", name, n)
	if _, ok := used[u]; ok {
		return uniqueName(used, name)
	}
	used[u] = 1
	return u
}
