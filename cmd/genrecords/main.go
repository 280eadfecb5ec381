// Genrecords writes a synthetic stream of delimited records to standard
// output, for exercising terashuf at scale without needing a real corpus.
//
// Usage:
//
//	go run ./cmd/genrecords -count 100000000 -minlen 8 -maxlen 120 > records.txt
//
// Flags:
//
//	-count   number of records to emit (default: 1,000,000)
//	-minlen  minimum record payload length in bytes (default: 8)
//	-maxlen  maximum record payload length in bytes (default: 64)
//	-sep     record delimiter byte, first byte of the value (default: "\n")
//	-seed    RNG seed (default: 1)
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spaolacci/murmur3"
)

func main() {
	countFlag := flag.Int64("count", 1_000_000, "number of records to emit")
	minLenFlag := flag.Int("minlen", 8, "minimum record payload length in bytes")
	maxLenFlag := flag.Int("maxlen", 64, "maximum record payload length in bytes")
	sepFlag := flag.String("sep", "\n", "record delimiter byte (first byte of value used)")
	seedFlag := flag.Uint64("seed", 1, "RNG seed")
	flag.Parse()

	count := *countFlag
	minLen, maxLen := *minLenFlag, *maxLenFlag
	if maxLen < minLen {
		fmt.Fprintln(os.Stderr, "genrecords: maxlen must be >= minlen")
		os.Exit(1)
	}
	sep := byte('\n')
	if len(*sepFlag) > 0 {
		sep = (*sepFlag)[0]
	}

	rng := rand.New(rand.NewPCG(*seedFlag, *seedFlag>>32|1))
	w := bufio.NewWriterSize(os.Stdout, 1<<20)
	defer w.Flush()

	spread := maxLen - minLen + 1
	alphabet := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	start := time.Now()
	var idxBuf [8]byte
	for i := int64(0); i < count; i++ {
		binary.LittleEndian.PutUint64(idxBuf[:], uint64(i))
		lengthClass := murmur3.Sum32(idxBuf[:])
		length := minLen + int(lengthClass)%spread

		for j := 0; j < length; j++ {
			w.WriteByte(alphabet[rng.IntN(len(alphabet))])
		}
		w.WriteByte(sep)

		if i > 0 && i%10_000_000 == 0 {
			fmt.Fprintf(os.Stderr, "generated %d records in %s\n", i, time.Since(start))
		}
	}
	fmt.Fprintf(os.Stderr, "generated %d records in %s\n", count, time.Since(start))
}
