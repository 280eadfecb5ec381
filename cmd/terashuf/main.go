// Terashuf reads delimited records from standard input and writes a
// uniformly random permutation of them to standard output, using a single
// fixed-size memory arena plus spill files on disk to handle input larger
// than memory.
//
// Usage:
//
//	terashuf < input.txt > shuffled.txt
//
// Configuration is read entirely from the environment:
//
//	MEMORY   arena size in GiB (default: 4)
//	SEP      record delimiter byte, first byte of the value (default: "\n")
//	SEED     RNG seed (default: whitened wall-clock seconds)
//	SKIP     number of leading records to copy verbatim (default: 0)
//	TMPDIR   directory for spill files (default: /tmp)
package main

import (
	"flag"
	"fmt"
	"os"

	terashuf "github.com/alexandresalle/terashuf"
)

func main() {
	flag.Parse()

	cfg, err := terashuf.ResolveConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "terashuf:", err)
		os.Exit(1)
	}

	arena, err := terashuf.NewArena(cfg.ArenaSize)
	if err != nil {
		fmt.Fprintln(os.Stderr, "terashuf:", err)
		os.Exit(1)
	}
	defer arena.Close()

	pipeline := terashuf.NewPipeline(cfg, arena, os.Stdin, os.Stdout, os.Stderr)
	if err := pipeline.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "terashuf:", err)
		os.Exit(1)
	}
}
