// SPDX-License-Identifier: GPL-2.0-or-later

// hltex extracts the textures of sprites, texture archives and studio
// models into png or bmp images.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"hltex/commandline"
	"hltex/conlog"
	"hltex/extract"
	"hltex/manifest"
	"hltex/texture"

	// register the container loaders
	_ "hltex/bsp"
	_ "hltex/mdl"
	_ "hltex/spr"
	_ "hltex/wad"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] INPUT [OUTDIR]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flagutil.Parse()
	os.Exit(run())
}

func run() int {
	defer glog.Flush()

	in, err := commandline.Input()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		return 2
	}
	conlog.SetQuiet(commandline.Quiet())

	cfg := extract.Config{
		Input:     in,
		Out:       commandline.OutDir(),
		Recursive: commandline.Recursive(),
		Options: texture.Options{
			Transparency: commandline.Transparency(),
			Strict:       commandline.Strict(),
		},
		Format: commandline.Format(),
		Suffix: commandline.Suffix(),
		Jobs:   commandline.Jobs(),
	}
	rep, err := extract.Run(context.Background(), cfg)
	if err != nil {
		glog.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if m := commandline.Manifest(); m != "" {
		if err := manifest.Write(m, rep); err != nil {
			glog.Errorf("%v", err)
			return 1
		}
	}
	glog.Infof("wrote %d images from %d containers, %d failed", rep.Written(), len(rep.Entries), rep.Failed())
	if rep.Failed() > 0 {
		return 1
	}
	return 0
}
