package terashuf

import (
	"fmt"
	"io"

	terashuferrors "github.com/alexandresalle/terashuf/errors"
)

// Pipeline wires every component into the end-to-end run spec.md §4.H
// describes: skip prefix, pass 1 (fill, shuffle, spill), and pass 2
// (weighted merge). It owns the single Arena for the run's lifetime and is
// a direct translation of terashuf.cc's main().
type Pipeline struct {
	cfg   Config
	arena *Arena

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewPipeline builds a pipeline over the given streams. The arena must
// already be allocated to cfg.ArenaSize; the Pipeline does not own closing
// it (the caller allocated it and is responsible for Close).
func NewPipeline(cfg Config, arena *Arena, stdin io.Reader, stdout, stderr io.Writer) *Pipeline {
	return &Pipeline{cfg: cfg, arena: arena, stdin: stdin, stdout: stdout, stderr: stderr}
}

// Run executes the full pipeline: skip prefix, pass 1, and (if needed)
// pass 2, reporting progress to stderr throughout.
func (p *Pipeline) Run() error {
	progress := NewProgress(p.stderr, int64(p.arena.Len()))
	progress.Start()
	defer progress.Stop()

	if err := p.copySkipPrefix(); err != nil {
		return err
	}

	rng := NewRNG(p.cfg.Seed)
	reader := NewChunkReader(p.cfg.Sep)
	shuffler := NewChunkShuffler(rng)
	spillMgr := NewSpillManager(p.cfg.SpillDir)

	spills, done, err := p.pass1(reader, shuffler, spillMgr, progress)
	if err != nil {
		closeSpills(spills)
		return err
	}
	if done {
		progress.Finish()
		return nil
	}

	if len(spills) == 1 {
		if err := p.drainSingleSpill(spills[0], progress); err != nil {
			return err
		}
		progress.Finish()
		return nil
	}

	if err := p.pass2(spills, rng, progress); err != nil {
		closeSpills(spills)
		return err
	}
	progress.Finish()
	return nil
}

// copySkipPrefix copies exactly cfg.Skip delimiter-terminated records from
// stdin to stdout, byte for byte, with no buffering and no shuffling
// (spec.md §4.H step 3). It returns cleanly if EOF arrives before Skip
// records have been seen.
func (p *Pipeline) copySkipPrefix() error {
	remaining := p.cfg.Skip
	buf := make([]byte, 1)
	for remaining > 0 {
		n, err := p.stdin.Read(buf)
		if n == 0 {
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: %v", terashuferrors.ErrReadFailed, err)
			}
			continue
		}
		if _, err := p.stdout.Write(buf[:n]); err != nil {
			return fmt.Errorf("%w: %v", terashuferrors.ErrShortWrite, err)
		}
		if buf[0] == p.cfg.Sep {
			remaining--
		}
		if err == io.EOF {
			return nil
		}
	}
	return nil
}

// pass1 runs the fill/shuffle/spill loop until input is exhausted. It
// returns the spills produced, or done=true if the fast path (input fit
// in a single chunk, written straight to stdout) already completed the
// whole run.
func (p *Pipeline) pass1(reader *ChunkReader, shuffler *ChunkShuffler, spillMgr *SpillManager, progress *Progress) (spills []*SpillFile, done bool, err error) {
	var idx RecordIndex
	chunkNum := 0
	for {
		validBytes, eof, err := reader.FillAndIndex(p.stdin, p.arena, &idx, p.stderr, chunkNum == 0)
		if err != nil {
			return spills, false, err
		}

		if validBytes == 0 {
			if chunkNum == 0 && eof {
				return nil, true, nil // empty input: clean exit, nothing ever written
			}
			break
		}

		fastPath := chunkNum == 0 && eof
		var sink io.Writer
		var sf *SpillFile
		if fastPath {
			sink = io.MultiWriter(p.stdout, progress.DigestWriter())
		} else {
			sf, err = spillMgr.CreateSpill()
			if err != nil {
				return spills, false, err
			}
			if err := sf.Preallocate(validBytes); err != nil {
				sf.CloseAndUnlink()
				return spills, false, err
			}
			sink = sf
			progress.RecordSpillCreated()
		}

		written, err := shuffler.ShuffleAndFlush(p.arena, &idx, sink)
		if err != nil {
			if sf != nil {
				sf.CloseAndUnlink()
			}
			return spills, false, err
		}
		progress.Add(written, int64(idx.Len()))

		if sf != nil {
			sf.SetLineCount(int64(idx.Len()))
			spills = append(spills, sf)
		}

		chunkNum++
		if fastPath {
			return nil, true, nil
		}
		if eof {
			break
		}
	}
	return spills, false, nil
}

// drainSingleSpill handles spec.md §4.H step 5: when pass 1 produced
// exactly one spill, its contents are already a uniformly random
// permutation of every record seen, so pass 2's weighted merge is
// unnecessary — the spill's bytes are copied to stdout as-is.
func (p *Pipeline) drainSingleSpill(sf *SpillFile, progress *Progress) error {
	defer sf.CloseAndUnlink()
	defer progress.RecordSpillDrained()

	if err := sf.Rewind(); err != nil {
		return err
	}
	sink := io.MultiWriter(p.stdout, progress.DigestWriter())
	n, err := io.Copy(sink, sf.file)
	if err != nil {
		return fmt.Errorf("%w: %v", terashuferrors.ErrShortWrite, err)
	}
	progress.Add(n, sf.LineCount())
	return nil
}

// pass2 performs the weighted multiway merge over two or more spills
// (spec.md §4.F/§4.G): rewind every spill, build a Fenwick/segment tree
// over their line counts, then repeatedly draw a spill weighted by its
// remaining record count and emit one record from it, until every spill is
// drained.
func (p *Pipeline) pass2(spills []*SpillFile, rng *RNG, progress *Progress) error {
	weights := make([]int64, len(spills))
	for i, sf := range spills {
		if err := sf.Rewind(); err != nil {
			return err
		}
		weights[i] = sf.LineCount()
	}
	tree := newWeightTree(weights)
	mergeReader := NewMergeReader(p.cfg.Sep)
	sink := io.MultiWriter(p.stdout, progress.DigestWriter())
	scratch := p.arena.Bytes()

	for tree.total() > 0 {
		draw := rng.UniformInt(tree.total()) + 1
		k := tree.drawAndDecrement(draw)

		n, err := mergeReader.ReadRecord(spills[k], scratch)
		if err != nil {
			return err
		}

		written, err := sink.Write(scratch[:n])
		if err != nil {
			return fmt.Errorf("%w: %v", terashuferrors.ErrShortWrite, err)
		}
		if int64(written) != n {
			return terashuferrors.ErrShortWrite
		}
		progress.Add(n, 1)

		if tree.countAt(k) == 0 {
			if err := spills[k].CloseAndUnlink(); err != nil {
				return err
			}
			progress.RecordSpillDrained()
		}
	}
	return nil
}

func closeSpills(spills []*SpillFile) {
	for _, sf := range spills {
		sf.CloseAndUnlink()
	}
}
