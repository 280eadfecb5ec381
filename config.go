package terashuf

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	terashuferrors "github.com/alexandresalle/terashuf/errors"
)

const (
	defaultMemoryGiB = 4.0
	defaultSep       = '\n'
	defaultTmpDir    = "/tmp"
)

// Config holds the resolved, immutable settings for a run of the pipeline.
// It is read once from the environment by ResolveConfig and never mutated
// afterward.
type Config struct {
	Sep       byte
	ArenaSize int64
	Seed      uint64
	Skip      int64
	SpillDir  string
}

// ResolveConfig reads MEMORY, SEP, SEED, SKIP and TMPDIR from the
// environment, applying the defaults listed in cmd/terashuf's package
// comment: 4 GiB arena, newline separator, whitened wall-clock seed, no
// skip, /tmp spill dir.
func ResolveConfig() (Config, error) {
	cfg := Config{
		Sep:      defaultSep,
		SpillDir: defaultTmpDir,
	}

	memoryGiB := defaultMemoryGiB
	if v, ok := os.LookupEnv("MEMORY"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("%w: %q", terashuferrors.ErrInvalidMemory, v)
		}
		memoryGiB = f
	}
	cfg.ArenaSize = int64(memoryGiB * (1 << 30))
	if cfg.ArenaSize <= 0 {
		return Config{}, fmt.Errorf("%w: %q", terashuferrors.ErrInvalidMemory, strconv.FormatFloat(memoryGiB, 'f', -1, 64))
	}

	if v, ok := os.LookupEnv("SEP"); ok && v != "" {
		cfg.Sep = v[0]
	}

	if v, ok := os.LookupEnv("SEED"); ok && v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %q", terashuferrors.ErrInvalidSeed, v)
		}
		cfg.Seed = uint64(s)
	} else {
		cfg.Seed = whitenSeed(uint64(time.Now().Unix()))
	}

	if v, ok := os.LookupEnv("SKIP"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("%w: %q", terashuferrors.ErrInvalidSkip, v)
		}
		cfg.Skip = n
	}

	if v, ok := os.LookupEnv("TMPDIR"); ok && v != "" {
		cfg.SpillDir = v
	}

	return cfg, nil
}

// whitenSeed maps a wall-clock seconds value (or any other non-uniform
// input) through xxHash3-128 and folds it down to 64 bits. Invocations in
// nearby seconds would otherwise get seeds that differ only in their low
// bits; whitening scatters them across the seed space the same way PreHash
// whitens non-uniform keys upstream of a uniform-selection algorithm. The
// mapping is deterministic, so invocations within the same second still get
// the same seed.
func whitenSeed(raw uint64) uint64 {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(raw >> (8 * i))
	}
	h := xxh3.Hash128(buf[:])
	return h.Hi ^ h.Lo
}
