// SPDX-License-Identifier: GPL-2.0-or-later

// Package crc implements the reflected 32bit CRC used by PNG chunks.
package crc

import (
	"sync"
)

const (
	ieee       = 0xedb88320
	cRCInitial = 0xffffffff
)

type Table struct {
	entries [256]uint32
}

var (
	ieeeOnce  sync.Once
	ieeeTable *Table
)

func makeTable(poly uint32) *Table {
	t := &Table{}
	for i := uint32(0); i < 256; i++ {
		crc := i
		for j := 0; j < 8; j++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		t.entries[i] = crc
	}
	return t
}

// table returns the shared IEEE table, building it on first use.
// After that it is read only and safe for concurrent use.
func table() *Table {
	ieeeOnce.Do(func() {
		ieeeTable = makeTable(ieee)
	})
	return ieeeTable
}

func update(crc uint32, t *Table, p []byte) uint32 {
	for _, v := range p {
		crc = t.entries[byte(crc)^v] ^ (crc >> 8)
	}
	return crc
}

// Update continues a running checksum. Start with crc = 0.
func Update(crc uint32, p []byte) uint32 {
	return update(crc^cRCInitial, table(), p) ^ cRCInitial
}

// Checksum returns the CRC-32 (IEEE) of p.
func Checksum(p []byte) uint32 {
	return Update(0, p)
}
