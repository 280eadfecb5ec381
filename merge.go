package terashuf

import (
	"fmt"
	"io"

	terashuferrors "github.com/alexandresalle/terashuf/errors"
)

// MergeReader yields whole records from a spill's small read buffer,
// refilling it with one bulk read whenever it runs dry. It writes each
// record it finds into the front of the shared arena, which pass 2 reuses
// as a one-record-at-a-time scratch space (spec.md §3).
type MergeReader struct {
	sep byte
}

// NewMergeReader builds a reader for the given delimiter byte.
func NewMergeReader(sep byte) *MergeReader {
	return &MergeReader{sep: sep}
}

// ReadRecord copies bytes from sf's buffer into dst, starting at dst[0],
// until the delimiter is found or the spill is exhausted. It returns the
// number of bytes copied, including the trailing delimiter, or 0 once the
// spill has nothing left. The caller is expected to call this exactly
// sf.LineCount() times per spill, per spec.md §4.G — each spill's Fenwick
// leaf guarantees that count.
func (m *MergeReader) ReadRecord(sf *SpillFile, dst []byte) (int64, error) {
	var n int64
	for {
		if sf.readPos == sf.readLen {
			if sf.readEOF {
				return n, nil
			}
			read, err := sf.file.Read(sf.readBuf)
			if err != nil && err != io.EOF {
				return n, fmt.Errorf("%w: %v", terashuferrors.ErrReadFailed, err)
			}
			sf.readPos, sf.readLen = 0, read
			if read == 0 {
				sf.readEOF = true
				return n, nil
			}
		}
		b := sf.readBuf[sf.readPos]
		sf.readPos++
		dst[n] = b
		n++
		if b == m.sep {
			return n, nil
		}
	}
}
