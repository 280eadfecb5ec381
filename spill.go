package terashuf

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	terashuferrors "github.com/alexandresalle/terashuf/errors"
)

const (
	spillNamePrefix    = "terashuftmp"
	spillNameSuffixLen = 6
	spillNameCharset   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCreateAttempts  = 100

	// mergeReadBufSize is the fixed per-spill read buffer used during pass 2
	// (spec.md §3's Spill File data model: "readBuffer is a small fixed-size
	// buffer (64 KiB)").
	mergeReadBufSize = 64 * 1024
)

// SpillFile is a temporary on-disk file holding one locally-shuffled pass-1
// chunk. It is write-only while pass 1 is filling it, then rewound and read
// sequentially through a small buffer during pass 2.
type SpillFile struct {
	path      string
	file      *os.File
	lineCount int64

	readBuf []byte
	readPos int
	readLen int
	readEOF bool
}

// Write satisfies io.Writer so a SpillFile can be used directly as a
// ChunkShuffler sink.
func (sf *SpillFile) Write(p []byte) (int, error) {
	return sf.file.Write(p)
}

// Preallocate reserves size bytes of disk space for the spill ahead of the
// write burst pass 1 is about to perform, via the platform fallocateFile.
func (sf *SpillFile) Preallocate(size int64) error {
	return fallocateFile(sf.file, size)
}

// SetLineCount records how many records this spill holds, once pass 1 has
// finished flushing its chunk into it.
func (sf *SpillFile) SetLineCount(n int64) { sf.lineCount = n }

// LineCount returns the initial line count recorded by SetLineCount.
func (sf *SpillFile) LineCount() int64 { return sf.lineCount }

// Rewind seeks the spill back to the start and attaches its pass-2 read
// buffer, hinting the kernel that the read that follows will be sequential.
func (sf *SpillFile) Rewind() error {
	if _, err := sf.file.Seek(0, 0); err != nil {
		return err
	}
	sf.readBuf = make([]byte, mergeReadBufSize)
	sf.readPos, sf.readLen = 0, 0
	sf.readEOF = false
	fadviseSequential(int(sf.file.Fd()), 0, 0)
	return nil
}

// CloseAndUnlink closes the handle and removes the path. Safe to call once
// a spill has fully drained; also called on every fatal-error teardown path
// so no spill outlives the process that created it.
func (sf *SpillFile) CloseAndUnlink() error {
	var errs []error
	if err := sf.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(sf.path); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SpillManager creates and names spill files under a configured directory.
type SpillManager struct {
	dir string
}

// NewSpillManager constructs a manager rooted at dir (normally Config.SpillDir).
func NewSpillManager(dir string) *SpillManager {
	return &SpillManager{dir: dir}
}

// CreateSpill allocates a uniquely-named spill file, replicating mkstemp's
// create-with-retry-on-collision semantics (spec.md §9's Open Question):
// generate a terashuftmpXXXXXX name, attempt an exclusive create, and retry
// on a name collision up to maxCreateAttempts times.
func (m *SpillManager) CreateSpill() (*SpillFile, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		path := filepath.Join(m.dir, spillNamePrefix+randomSuffix(spillNameSuffixLen))
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			return &SpillFile{path: path, file: f}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("%w: %v", terashuferrors.ErrSpillCreateFailed, err)
		}
	}
	return nil, fmt.Errorf("%w: exhausted %d attempts under %s", terashuferrors.ErrSpillCreateFailed, maxCreateAttempts, m.dir)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = spillNameCharset[rand.IntN(len(spillNameCharset))]
	}
	return string(b)
}
