package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fumin/fgkhuff"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [filename]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	in := os.Stdin
	if name := flag.Arg(0); name != "" {
		f, err := os.Open(name)
		if err != nil {
			log.Fatalf("%+v", err)
		}
		defer f.Close()
		in = f
	}

	info, err := fgkhuff.Inspect(in)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	fmt.Printf("raw size:    %d bytes\n", info.RawSize)
	fmt.Printf("stream size: %d bytes\n", info.StreamSize)
	fmt.Printf("window:      %d, match %d..%d\n", info.Window, info.MinMatch, info.MaxMatch)
	if info.Depth == 0 {
		fmt.Printf("literals:    flat\n")
	} else {
		fmt.Printf("literals:    arithmetic, depth %d\n", info.Depth)
	}
	fmt.Printf("sections:\n")
	for _, s := range info.Sections {
		fmt.Printf("  kind %d  offset %8d  size %8d  xxh64 %016x\n", s.Kind, s.Offset, s.Size, s.Sum)
	}
}
