package terashuf

import (
	"fmt"
	"io"

	terashuferrors "github.com/alexandresalle/terashuf/errors"
)

// ChunkShuffler uniformly permutes a chunk's record index and writes the
// records out to a sink in that order.
type ChunkShuffler struct {
	rng *RNG
}

// NewChunkShuffler builds a shuffler driven by the given RNG. The RNG is
// shared across every chunk in pass 1, the same way terashuf.cc reuses a
// single mt19937_64 across every call to shufFlushBuf.
func NewChunkShuffler(rng *RNG) *ChunkShuffler {
	return &ChunkShuffler{rng: rng}
}

// ShuffleAndFlush permutes idx in place via Fisher-Yates, then writes each
// record's bytes — arena[offset:offset+length), trailing separator included
// — to sink in the permuted order. Returns the number of bytes written.
// Every permutation of the records currently indexed is equally likely,
// conditional on the RNG sequence (spec.md §4.D).
func (s *ChunkShuffler) ShuffleAndFlush(arena *Arena, idx *RecordIndex, sink io.Writer) (int64, error) {
	order := make([]int64, idx.Len())
	for i := range order {
		order[i] = int64(i)
	}
	s.rng.ShuffleIndex(order)

	buf := arena.Bytes()
	var written int64
	for _, i := range order {
		off, length := idx.Offsets[i], idx.Lengths[i]
		n, err := sink.Write(buf[off : off+length])
		if err != nil {
			return written, fmt.Errorf("%w: %v", terashuferrors.ErrShortWrite, err)
		}
		if int64(n) != length {
			return written, terashuferrors.ErrShortWrite
		}
		written += int64(n)
	}
	return written, nil
}
