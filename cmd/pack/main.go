package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fumin/fgkhuff"
)

var depth = flag.Int("depth", 12, "context depth of the literal bit model, 0 for flat literals")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] filename\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	name := flag.Arg(0)
	if name == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := fgkhuff.Compress(os.Stdout, name, *depth); err != nil {
		log.Fatalf("%+v", err)
	}
}
