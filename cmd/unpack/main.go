package main

import (
	"flag"
	"log"
	"os"

	"github.com/fumin/fgkhuff"
)

func main() {
	flag.Parse()
	if err := fgkhuff.Decompress(os.Stdout, os.Stdin); err != nil {
		log.Fatalf("%+v", err)
	}
}
