package terashuf

import (
	"fmt"
	"io"

	terashuferrors "github.com/alexandresalle/terashuf/errors"
)

// diagnosticEchoBytes is how many bytes of an oversized record are echoed to
// stderr for diagnostics, per spec.md §4.C.
const diagnosticEchoBytes = 50

// recordsBeforeEstimatingOverhead is the record-count threshold that
// triggers the one-shot memory-overhead estimate message, ported from
// terashuf.cc's LINES_BEFORE_ESTIMATING_MEMORY_OVERHEAD.
const recordsBeforeEstimatingOverhead = 1_000_000

// RecordIndex is an ordered list of (offset, length) pairs into an Arena,
// one per record present after a ChunkReader fill. Length includes the
// trailing separator byte.
type RecordIndex struct {
	Offsets []int64
	Lengths []int64
}

func (ix *RecordIndex) reset() {
	ix.Offsets = ix.Offsets[:0]
	ix.Lengths = ix.Lengths[:0]
}

func (ix *RecordIndex) add(offset, length int64) {
	ix.Offsets = append(ix.Offsets, offset)
	ix.Lengths = append(ix.Lengths, length)
}

// Len reports the number of records currently indexed.
func (ix *RecordIndex) Len() int { return len(ix.Offsets) }

// ChunkReader fills an Arena from an input stream and indexes the record
// boundaries it finds there, carrying a trailing partial record forward
// across successive fills. All state lives on the struct — never in
// package-level statics — per spec.md §9's "pipeline-scoped context" note.
type ChunkReader struct {
	sep           byte
	lastLineEnd   int64 // end of the last complete record from the previous fill
	prevLen       int64 // total valid+carry bytes filled by the previous call
	estimateShown bool
}

// NewChunkReader constructs a reader for the given delimiter byte.
func NewChunkReader(sep byte) *ChunkReader {
	return &ChunkReader{sep: sep}
}

// FillAndIndex implements spec.md §4.C. It relocates any carryover from the
// previous call to the start of the arena, reads until the arena is full or
// the input is exhausted, appends a terminating separator to a final
// partial record when there's room, and builds idx with every complete
// record's offset and length. isFirstChunk gates the one-shot memory
// overhead estimate (spec.md §4.C); diag receives the estimate message and
// any oversized-record diagnostic.
func (cr *ChunkReader) FillAndIndex(r io.Reader, arena *Arena, idx *RecordIndex, diag io.Writer, isFirstChunk bool) (validBytes int64, eof bool, err error) {
	buf := arena.Bytes()
	cap64 := int64(len(buf))

	carryLen := cr.prevLen - cr.lastLineEnd
	if carryLen > 0 {
		copy(buf[0:carryLen], buf[cr.lastLineEnd:cr.prevLen])
	}

	n, reachedEOF, err := readFull(r, buf[carryLen:])
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", terashuferrors.ErrReadFailed, err)
	}
	total := carryLen + n

	if total == 0 {
		cr.lastLineEnd, cr.prevLen = 0, 0
		return 0, true, nil
	}

	if total < cap64 && buf[total-1] != cr.sep && reachedEOF {
		buf[total] = cr.sep
		total++
	}

	idx.reset()
	var lineStart int64
	for i := int64(0); i < total; i++ {
		if buf[i] != cr.sep {
			continue
		}
		idx.add(lineStart, i-lineStart+1)
		lineStart = i + 1

		if isFirstChunk && !cr.estimateShown && idx.Len() >= recordsBeforeEstimatingOverhead {
			cr.estimateShown = true
			printMemoryOverheadEstimate(diag, i, idx.Len(), cap64)
		}
	}

	if idx.Len() == 0 {
		echoLen := total
		if echoLen > diagnosticEchoBytes {
			echoLen = diagnosticEchoBytes
		}
		fmt.Fprintf(diag, "\nFATAL ERROR: record too long to fit in arena (> %d bytes):\n", cap64)
		diag.Write(buf[:echoLen])
		fmt.Fprintf(diag, "...\n")
		return 0, false, terashuferrors.ErrOversizedRecord
	}

	cr.lastLineEnd = lineStart
	cr.prevLen = total
	return lineStart, reachedEOF, nil
}

// readFull reads into dst until it is full or the source is exhausted,
// reporting how many bytes landed and whether EOF was observed. Unlike
// io.ReadFull, reaching EOF with a partially filled dst is not an error —
// it's the normal way the final chunk of input is delivered.
func readFull(r io.Reader, dst []byte) (n int64, eof bool, err error) {
	for int64(len(dst)) > n {
		m, rerr := r.Read(dst[n:])
		n += int64(m)
		if rerr != nil {
			if rerr == io.EOF {
				return n, true, nil
			}
			return n, false, rerr
		}
		if m == 0 {
			return n, true, nil
		}
	}
	return n, false, nil
}

func printMemoryOverheadEstimate(w io.Writer, bytesScanned int64, records int, arenaBytes int64) {
	avgBytesPerRecord := float64(bytesScanned) / float64(records)
	const bytesPerIndexEntry = 16 // two int64 fields per RecordIndex entry
	overheadRatio := bytesPerIndexEntry/avgBytesPerRecord + 1
	arenaGiB := float64(arenaBytes) / (1 << 30)
	fmt.Fprintf(w, "mean record length is %.2f, estimated memory usage is %.2f * %.2f GiB = %.2f GiB\n",
		avgBytesPerRecord-1, overheadRatio, arenaGiB, overheadRatio*arenaGiB)
}
