package terashuf

import (
	"fmt"

	terashuferrors "github.com/alexandresalle/terashuf/errors"
)

// Arena is the single contiguous byte buffer the pipeline allocates once at
// startup and reuses for the lifetime of the process: record bytes during
// pass 1, one record at a time as merge scratch space during pass 2.
type Arena struct {
	buf []byte
}

// NewArena allocates an arena of exactly size bytes. Allocation failure is
// fatal by contract (spec.md §4.B): the caller is expected to report
// ErrAllocFailed and exit nonzero rather than retry with a smaller size.
func NewArena(size int64) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive", terashuferrors.ErrAllocFailed)
	}
	buf, err := allocArena(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", terashuferrors.ErrAllocFailed, err)
	}
	return &Arena{buf: buf}, nil
}

// Bytes returns the full backing slice.
func (a *Arena) Bytes() []byte { return a.buf }

// Len returns the arena's fixed capacity in bytes.
func (a *Arena) Len() int { return len(a.buf) }

// Close releases the arena's backing memory. Calling Close again after the
// first call is a no-op that returns nil; a nil receiver is not supported.
func (a *Arena) Close() error {
	if a.buf == nil {
		return nil
	}
	err := freeArena(a.buf)
	a.buf = nil
	return err
}
