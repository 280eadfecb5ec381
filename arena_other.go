//go:build !linux && !darwin

package terashuf

// allocArena falls back to a plain heap allocation on platforms without an
// x/sys/unix anonymous-mmap path, the same "no native facility, fall back
// to the portable stdlib primitive" shape as fallocate_other.go.
func allocArena(size int64) ([]byte, error) {
	return make([]byte, size), nil
}

func freeArena(buf []byte) error {
	return nil
}
