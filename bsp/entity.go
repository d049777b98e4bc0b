// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"strings"
)

type entity map[string]string

func newEntity(p []byte) entity {
	e := make(entity)
	// parse the entity line by line
	for _, l := range bytes.Split(p, []byte("\n")) {
		// look for something of the form
		// "key" "value"
		f := bytes.Split(l, []byte{'"'})
		if len(f) < 5 {
			continue
		}
		e[string(f[1])] = string(f[3])
	}
	return e
}

// parseEntities splits the entity lump into its { } blocks.
func parseEntities(data []byte) []entity {
	var es []entity
	var ob int
	q := false
	start := -1
	for i, b := range data {
		switch b {
		case '{':
			if q {
				break
			}
			if start == -1 {
				start = i
			} else {
				ob++
			}
		case '}':
			if q {
				break
			}
			if start == -1 {
				// Bad input
				return nil
			}
			if ob == 0 {
				es = append(es, newEntity(data[start:i+1]))
				start = -1
			} else {
				ob--
			}
		case '"':
			q = !q
		}
	}
	return es
}

// wads returns the archives the worldspawn entity lists for textures the
// level does not embed. Entries are reduced to their base name.
func wads(es []entity) []string {
	for _, e := range es {
		if e["classname"] != "worldspawn" {
			continue
		}
		var ret []string
		for _, w := range strings.Split(e["wad"], ";") {
			w = strings.TrimSpace(w)
			if w == "" {
				continue
			}
			if i := strings.LastIndexAny(w, `/\`); i >= 0 {
				w = w[i+1:]
			}
			ret = append(ret, w)
		}
		return ret
	}
	return nil
}
