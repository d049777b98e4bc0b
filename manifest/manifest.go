// SPDX-License-Identifier: GPL-2.0-or-later

// Package manifest records the outcome of an extraction run as json.
package manifest

import (
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"hltex/extract"
	"hltex/texture"
)

// Build converts r into a protobuf Struct.
func Build(r *extract.Report) (*structpb.Struct, error) {
	var entries []interface{}
	for _, e := range r.Entries {
		if e == nil {
			continue
		}
		entries = append(entries, entry(e))
	}
	return structpb.NewStruct(map[string]interface{}{
		"input":   r.Input,
		"written": r.Written(),
		"failed":  r.Failed(),
		"entries": entries,
	})
}

func entry(e *extract.Entry) map[string]interface{} {
	m := map[string]interface{}{
		"source": e.Source,
		"kind":   e.Kind.String(),
	}
	if e.Skipped != texture.NotSkipped {
		m["skipped"] = e.Skipped.String()
	}
	if e.Err != nil {
		m["error"] = e.Err.Error()
	}
	var ts []interface{}
	for _, t := range e.Textures {
		tm := map[string]interface{}{
			"name":   t.Name,
			"width":  t.Width,
			"height": t.Height,
			"flags":  uint32(t.Flags),
			"output": t.Path,
		}
		if t.Transparent != "" {
			tm["transparent"] = t.Transparent
		}
		ts = append(ts, tm)
	}
	m["textures"] = ts
	return m
}

// Marshal returns the indented json form of r.
func Marshal(r *extract.Report) ([]byte, error) {
	s, err := Build(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not build manifest")
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
}

func Write(name string, r *extract.Report) error {
	out, err := Marshal(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, out, 0644); err != nil {
		return errors.Wrapf(err, "could not write manifest %s", name)
	}
	return nil
}
