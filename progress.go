package terashuf

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// heartbeatInterval is how often the background progress goroutine prints a
// line while waiting on a slow read or write, independent of the
// bytes-written threshold spec.md §4.H specifies.
const heartbeatInterval = 2 * time.Second

// Progress renders the advisory, carriage-return-updated stderr lines
// spec.md §4.H and §6 describe. None of its output is part of the output
// contract tested by spec.md §8 — it exists purely for a human watching the
// process run.
//
// A background heartbeat goroutine (managed by an errgroup.Group, the same
// lifecycle shape as builder.go's workerGroup/workerCtx/workerCancel) keeps
// printing on a timer even when the hot loop hasn't crossed a byte
// threshold yet, e.g. while blocked on a slow stdin. It only ever reads
// atomic counters, so there is no data race with the hot loop that updates
// them.
type Progress struct {
	w          io.Writer
	writeMu    sync.Mutex
	arenaBytes int64

	bytesWritten   atomic.Int64
	recordsWritten atomic.Int64
	spillsCreated  atomic.Int64
	spillsLive     atomic.Int64

	bytesSinceReport int64 // main-goroutine only
	digest           *xxhash.Digest

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewProgress constructs a reporter that writes to w and reports at least
// once per arenaBytes of output.
func NewProgress(w io.Writer, arenaBytes int64) *Progress {
	if arenaBytes <= 0 {
		arenaBytes = 1
	}
	return &Progress{w: w, arenaBytes: arenaBytes, digest: xxhash.New()}
}

// DigestWriter returns an io.Writer that folds every byte written through
// it into the completion digest, for wrapping around a pipeline sink with
// io.MultiWriter.
func (p *Progress) DigestWriter() io.Writer { return p.digest }

// Start launches the background heartbeat goroutine.
func (p *Progress) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	p.cancel = cancel
	p.group = g
	g.Go(func() error {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				p.report("")
			}
		}
	})
}

// Stop cancels and joins the heartbeat goroutine. Safe to call after Start
// even if no report was ever printed.
func (p *Progress) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.group != nil {
		_ = p.group.Wait()
	}
}

// RecordSpillCreated notes a new spill for the progress line's spill count.
func (p *Progress) RecordSpillCreated() {
	p.spillsCreated.Add(1)
	p.spillsLive.Add(1)
}

// RecordSpillDrained notes a spill closed-and-unlinked after draining.
func (p *Progress) RecordSpillDrained() {
	p.spillsLive.Add(-1)
}

// Add folds written bytes and records into the running totals and reports
// once the accumulated bytes since the last report reach arenaBytes,
// implementing spec.md §4.H's "after every bytesWritten >= arenaBytes"
// requirement.
func (p *Progress) Add(written, records int64) {
	p.bytesWritten.Add(written)
	p.recordsWritten.Add(records)
	p.bytesSinceReport += written
	if p.bytesSinceReport >= p.arenaBytes {
		p.report("")
		p.bytesSinceReport = 0
	}
}

// Finish prints the final completion line, including the advisory digest
// over everything written to the output stream.
func (p *Progress) Finish() {
	p.report(fmt.Sprintf("done, digest=%016x", p.digest.Sum64()))
}

func (p *Progress) report(suffix string) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	fmt.Fprintf(p.w, "\rrecords written: %d, bytes written: %s, spills: %d created / %d live %s",
		p.recordsWritten.Load(), humanBytes(p.bytesWritten.Load()), p.spillsCreated.Load(), p.spillsLive.Load(), suffix)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
