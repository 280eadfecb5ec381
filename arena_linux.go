//go:build linux

package terashuf

import "golang.org/x/sys/unix"

// allocArena reserves the arena as an anonymous private mapping rather than
// a heap slice. This mirrors newUnsortedBuffer's mmap'd scratch region: a
// single large allocation the kernel backs with demand-paged memory instead
// of Go's garbage-collected heap (the arena is never scanned for pointers
// and outlives any GC cycle, so there is nothing to gain from heap
// ownership). The region is prefaulted for writing immediately afterward so
// the first pass-1 fill doesn't pay page-fault latency on every page.
func allocArena(size int64) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	prefaultRegion(buf)
	return buf, nil
}

func freeArena(buf []byte) error {
	return unix.Munmap(buf)
}
