package chunkgo

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/chunkgo/compression"
	"github.com/hupe1980/chunkgo/errdefs"
	"github.com/hupe1980/chunkgo/format"
)

// Decompressor reads archives back into their original bytes, either
// whole or one frame at a time. A single codec decoder context is
// shared across frames; the built-in decoders are safe for concurrent
// use, so one Decompressor may serve multiple goroutines.
type Decompressor struct {
	codec       compression.Codec
	dec         compression.Decoder
	concurrency int
	logger      *Logger
	metrics     MetricsCollector
	closed      bool
}

// NewDecompressor creates a Decompressor for the configured codec.
// WithConcurrency enables parallel frame decompression; the default
// is sequential.
func NewDecompressor(optFns ...Option) (*Decompressor, error) {
	o := applyOptions(optFns)

	dec, err := o.codec.NewDecoder()
	if err != nil {
		return nil, err
	}

	return &Decompressor{
		codec:       o.codec,
		dec:         dec,
		concurrency: o.concurrency,
		logger:      o.logger.WithCodec(o.codec.Name()),
		metrics:     o.metrics,
	}, nil
}

// OutputSize returns the exact number of bytes Decompress produces
// for table.
func (d *Decompressor) OutputSize(table *format.SeekTable) uint64 {
	if table == nil {
		return 0
	}
	return table.DecompressedSize()
}

// Decompress reconstructs the original bytes of the archive described
// by table into dst and returns the number of bytes written. archive
// must cover the table's compressed extent and dst must hold
// OutputSize(table) bytes. Any frame that fails to decode, including
// an embedded checksum mismatch, fails the whole call with
// ErrDataIntegrity.
func (d *Decompressor) Decompress(dst, archive []byte, table *format.SeekTable) (int, error) {
	start := time.Now()
	n, err := d.decompress(dst, archive, table)

	frames := 0
	if table != nil {
		frames = table.NumFrames()
	}
	d.metrics.RecordDecompress(frames, int64(len(archive)), int64(n), time.Since(start), err)
	d.logger.LogDecompress(frames, len(archive), n, err)
	return n, err
}

func (d *Decompressor) decompress(dst, archive []byte, table *format.SeekTable) (int, error) {
	if d.closed {
		return 0, fmt.Errorf("%w: decompressor is closed", errdefs.ErrBadState)
	}
	if table == nil {
		return 0, fmt.Errorf("%w: nil seek table", errdefs.ErrInvalidArgs)
	}
	size := table.DecompressedSize()
	if uint64(len(dst)) < size {
		return 0, fmt.Errorf("%w: destination %d bytes, need %d",
			errdefs.ErrBufferTooSmall, len(dst), size)
	}
	if uint64(len(archive)) < table.CompressedSize() {
		return 0, fmt.Errorf("%w: archive %d bytes, table covers %d",
			errdefs.ErrInvalidArgs, len(archive), table.CompressedSize())
	}

	entries := table.Entries()
	if d.concurrency > 1 && len(entries) > 1 {
		var g errgroup.Group
		g.SetLimit(d.concurrency)
		for i := range entries {
			g.Go(func() error {
				return d.decompressEntry(dst, archive, entries[i], i)
			})
		}
		if err := g.Wait(); err != nil {
			return 0, err
		}
	} else {
		for i, e := range entries {
			if err := d.decompressEntry(dst, archive, e, i); err != nil {
				return 0, err
			}
		}
	}

	return int(size), nil
}

// decompressEntry decodes one frame into its slot of dst. Frames
// write disjoint ranges, so concurrent calls need no locking.
func (d *Decompressor) decompressEntry(dst, archive []byte, e format.SeekTableEntry, idx int) error {
	src := archive[e.CompressedOffset:e.CompressedEnd()]
	out := dst[e.DecompressedOffset:e.DecompressedEnd()]

	n, err := d.dec.Decompress(out, src)
	if err != nil {
		return fmt.Errorf("decompressing frame %d: %w", idx, err)
	}
	if uint64(n) != e.DecompressedSize {
		return fmt.Errorf("%w: frame %d decoded to %d bytes, expected %d",
			errdefs.ErrDataIntegrity, idx, n, e.DecompressedSize)
	}
	return nil
}

// DecompressFrame decodes a single frame for random access. frameSrc
// must start at the frame's first compressed byte, as located by the
// table entry, and span at least its CompressedSize; dst must hold at
// least its DecompressedSize. Returns the number of bytes written.
func (d *Decompressor) DecompressFrame(dst, frameSrc []byte, table *format.SeekTable, frameIdx int) (int, error) {
	start := time.Now()
	n, err := d.decompressFrame(dst, frameSrc, table, frameIdx)
	d.metrics.RecordDecompress(1, int64(len(frameSrc)), int64(n), time.Since(start), err)
	if err != nil {
		d.logger.LogDecompress(1, len(frameSrc), n, err)
	}
	return n, err
}

func (d *Decompressor) decompressFrame(dst, frameSrc []byte, table *format.SeekTable, frameIdx int) (int, error) {
	if d.closed {
		return 0, fmt.Errorf("%w: decompressor is closed", errdefs.ErrBadState)
	}
	if table == nil {
		return 0, fmt.Errorf("%w: nil seek table", errdefs.ErrInvalidArgs)
	}
	if frameIdx < 0 || frameIdx >= table.NumFrames() {
		return 0, fmt.Errorf("%w: frame %d outside table of %d frames",
			errdefs.ErrInvalidArgs, frameIdx, table.NumFrames())
	}

	e := table.Entries()[frameIdx]
	if uint64(len(frameSrc)) < e.CompressedSize {
		return 0, fmt.Errorf("%w: frame source %d bytes, entry expects %d",
			errdefs.ErrInvalidArgs, len(frameSrc), e.CompressedSize)
	}
	if uint64(len(dst)) < e.DecompressedSize {
		return 0, fmt.Errorf("%w: destination %d bytes, need %d",
			errdefs.ErrBufferTooSmall, len(dst), e.DecompressedSize)
	}

	n, err := d.dec.Decompress(dst[:e.DecompressedSize], frameSrc[:e.CompressedSize])
	if err != nil {
		return 0, fmt.Errorf("decompressing frame %d: %w", frameIdx, err)
	}
	if uint64(n) != e.DecompressedSize {
		return 0, fmt.Errorf("%w: frame %d decoded to %d bytes, expected %d",
			errdefs.ErrDataIntegrity, frameIdx, n, e.DecompressedSize)
	}
	return n, nil
}

// DecompressBytes parses archive's header and reconstructs the whole
// original stream into a freshly allocated buffer.
func (d *Decompressor) DecompressBytes(archive []byte) ([]byte, error) {
	table, err := format.ParseHeader(archive, uint64(len(archive)))
	if err != nil {
		return nil, err
	}

	size := table.DecompressedSize()
	if size > math.MaxInt {
		return nil, fmt.Errorf("%w: decompressed size %d overflows addressable memory",
			errdefs.ErrInvalidArgs, size)
	}

	out := make([]byte, size)
	if _, err := d.Decompress(out, archive, table); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the codec decoder. The decompressor is unusable
// afterwards.
func (d *Decompressor) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.dec.Close()
}
