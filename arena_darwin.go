//go:build darwin

package terashuf

import "golang.org/x/sys/unix"

// allocArena mirrors arena_linux.go's anonymous mapping. Darwin has no
// MADV_POPULATE_WRITE equivalent (prefaultRegion is a no-op on this
// platform), so the first touch of each page still faults on demand.
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
