// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog prints the progress lines meant for the user, as opposed
// to the diagnostics that go to glog.
package conlog

import (
	"fmt"
	"os"
	"sync"
)

var (
	mu    sync.Mutex
	p     = func(format string, v ...interface{}) { fmt.Fprintf(os.Stdout, format, v...) }
	quiet bool
)

func SetPrintf(f func(string, ...interface{})) {
	mu.Lock()
	p = f
	mu.Unlock()
}

// SetQuiet suppresses Printf.
func SetQuiet(q bool) {
	mu.Lock()
	quiet = q
	mu.Unlock()
}

// Printf is safe for concurrent use. Lines from different goroutines are
// never interleaved.
func Printf(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if quiet {
		return
	}
	p(format, v...)
}
