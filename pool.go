package chunkgo

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hupe1980/chunkgo/compression"
	"github.com/hupe1980/chunkgo/errdefs"
	"github.com/hupe1980/chunkgo/format"
	"github.com/hupe1980/chunkgo/resource"
)

type frameTask struct {
	id   int
	src  []byte
	opts compression.EncoderOptions
	resp chan<- frameResult
}

type frameResult struct {
	id   int
	data []byte
	err  error
}

// ParallelCompressor compresses frames on a fixed pool of worker
// goroutines started at construction and joined by Close. Output is
// round-trip equivalent to Compressor for the same input and params;
// each frame's compressed bytes depend only on that frame's input and
// the params, never on which worker handled it.
//
// Multiple goroutines may call Compress concurrently, with different
// params if desired; frames of concurrent jobs interleave freely
// across the shared workers. Each job carries its own response
// channel, so results never cross between jobs.
type ParallelCompressor struct {
	codec    compression.Codec
	logger   *Logger
	metrics  MetricsCollector
	resource *resource.Controller
	sizing   compression.Encoder // Bound only, set when resource gating is on

	tasks chan frameTask
	done  chan struct{}

	mu      sync.Mutex
	closed  bool
	jobs    sync.WaitGroup
	workers sync.WaitGroup
}

// NewParallelCompressor starts a pool of the given number of workers.
// Values below 1 default to runtime.GOMAXPROCS(0). Each worker owns
// its codec encoder context; nothing mutable is shared between them.
func NewParallelCompressor(workers int, optFns ...Option) (*ParallelCompressor, error) {
	o := applyOptions(optFns)

	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &ParallelCompressor{
		codec:    o.codec,
		logger:   o.logger.WithCodec(o.codec.Name()),
		metrics:  o.metrics,
		resource: o.resource,
		tasks:    make(chan frameTask, workers),
		done:     make(chan struct{}),
	}

	if p.resource != nil {
		enc, err := o.codec.NewEncoder(compression.EncoderOptions{Level: o.codec.DefaultLevel()})
		if err != nil {
			return nil, err
		}
		p.sizing = enc
	}

	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}

	p.logger.Debug("parallel compressor started", "workers", workers)
	return p, nil
}

func (p *ParallelCompressor) worker(id int) {
	defer p.workers.Done()

	var (
		enc     compression.Encoder
		encOpts compression.EncoderOptions
	)
	defer func() {
		if enc != nil {
			_ = enc.Close()
		}
	}()

	for {
		select {
		case <-p.done:
			p.logger.Debug("worker exiting", "worker", id)
			return
		case t := <-p.tasks:
			if enc == nil || encOpts != t.opts {
				if enc != nil {
					_ = enc.Close()
				}
				e, err := p.codec.NewEncoder(t.opts)
				if err != nil {
					enc = nil
					t.resp <- frameResult{id: t.id, err: err}
					continue
				}
				enc, encOpts = e, t.opts
			} else {
				// Same options as the previous task: reuse the
				// context, cleared of any cross-job state.
				enc.Reset()
			}

			buf := make([]byte, enc.Bound(len(t.src)))
			n, err := enc.Compress(buf, t.src)
			if err != nil {
				t.resp <- frameResult{id: t.id, err: err}
				continue
			}
			t.resp <- frameResult{id: t.id, data: buf[:n]}
		}
	}
}

// Compress compresses src with params into a freshly allocated,
// exactly sized archive. Empty input returns an empty result rather
// than a zero-frame archive. The caller must keep src valid and
// unmodified until Compress returns; workers read it without copying.
//
// ctx gates admission only (resource controller slots, memory and
// throughput); frames that have started are never canceled.
func (p *ParallelCompressor) Compress(ctx context.Context, params CompressionParams, src []byte) ([]byte, error) {
	start := time.Now()
	out, frames, err := p.compress(ctx, params, src)
	p.metrics.RecordCompress(frames, int64(len(src)), int64(len(out)), time.Since(start), err)
	p.logger.LogCompress(frames, len(src), len(out), err)
	return out, err
}

func (p *ParallelCompressor) compress(ctx context.Context, params CompressionParams, src []byte) ([]byte, int, error) {
	if err := params.Validate(p.codec); err != nil {
		return nil, 0, err
	}
	if len(src) == 0 {
		return []byte{}, 0, nil
	}

	numFrames := format.NumFramesForDataSize(len(src), params.ChunkSize)
	if numFrames > format.MaxFrames {
		return nil, 0, fmt.Errorf("%w: input needs %d frames, format supports %d",
			errdefs.ErrInvalidArgs, numFrames, format.MaxFrames)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, 0, fmt.Errorf("%w: compressor is closed", errdefs.ErrBadState)
	}
	p.jobs.Add(1)
	p.mu.Unlock()
	defer p.jobs.Done()

	if p.resource != nil {
		if err := p.resource.AcquireWorker(ctx); err != nil {
			return nil, 0, fmt.Errorf("acquiring job slot: %w", err)
		}
		defer p.resource.ReleaseWorker()

		reserve := int64(outputSizeLimit(p.sizing, len(src), params.ChunkSize))
		if err := p.resource.AcquireMemory(ctx, reserve); err != nil {
			return nil, 0, fmt.Errorf("reserving %d bytes: %w", reserve, err)
		}
		defer p.resource.ReleaseMemory(reserve)
	}

	encOpts := compression.EncoderOptions{Level: params.Level, Checksum: params.FrameChecksum}
	resp := make(chan frameResult, numFrames)
	chunk := params.ChunkSize

	enqueued := 0
	var admitErr error
	for i := 0; i < numFrames; i++ {
		frame := src[i*chunk : min((i+1)*chunk, len(src))]
		if err := p.resource.AcquireThroughput(ctx, len(frame)); err != nil {
			admitErr = fmt.Errorf("throttling frame %d: %w", i, err)
			break
		}
		p.tasks <- frameTask{id: i, src: frame, opts: encOpts, resp: resp}
		enqueued++
	}

	// Collect one response per enqueued task, keeping the first
	// error. Draining the rest keeps workers from holding references
	// to src after this call returns.
	results := make([][]byte, numFrames)
	firstErr := admitErr
	for collected := 0; collected < enqueued; collected++ {
		r := <-resp
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("compressing frame %d: %w", r.id, r.err)
			}
			continue
		}
		results[r.id] = r.data
	}
	if firstErr != nil {
		return nil, 0, firstErr
	}

	return assembleArchive(results, src, chunk)
}

// assembleArchive lays the compressed frames out contiguously behind
// the header, in frame order, and finalizes the seek table.
func assembleArchive(results [][]byte, src []byte, chunk int) ([]byte, int, error) {
	numFrames := len(results)
	total := format.MetadataSizeForNumFrames(numFrames)
	for _, b := range results {
		total += len(b)
	}

	out := make([]byte, total)
	hw, err := format.NewHeaderWriter(out, numFrames)
	if err != nil {
		return nil, 0, err
	}

	pos := format.MetadataSizeForNumFrames(numFrames)
	for i, b := range results {
		frameLen := min(chunk, len(src)-i*chunk)
		copy(out[pos:], b)
		err := hw.AddEntry(format.SeekTableEntry{
			DecompressedOffset: uint64(i * chunk),
			DecompressedSize:   uint64(frameLen),
			CompressedOffset:   uint64(pos),
			CompressedSize:     uint64(len(b)),
		})
		if err != nil {
			return nil, 0, err
		}
		pos += len(b)
	}

	if err := hw.Finalize(); err != nil {
		return nil, 0, err
	}
	return out, numFrames, nil
}

// CompressBytes is Compress with default admission context.
func (p *ParallelCompressor) CompressBytes(params CompressionParams, src []byte) ([]byte, error) {
	return p.Compress(context.Background(), params, src)
}

// Close rejects new jobs, waits for in-flight jobs to finish, then
// stops and joins all workers and releases their encoder contexts.
// Close is idempotent; Compress after Close returns ErrBadState.
func (p *ParallelCompressor) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.jobs.Wait()
	close(p.done)
	p.workers.Wait()

	if p.sizing != nil {
		_ = p.sizing.Close()
	}
	p.logger.Debug("parallel compressor closed")
	return nil
}
