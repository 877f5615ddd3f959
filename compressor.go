package chunkgo

import (
	"fmt"
	"time"

	"github.com/hupe1980/chunkgo/compression"
	"github.com/hupe1980/chunkgo/errdefs"
	"github.com/hupe1980/chunkgo/format"
)

// ProgressFunc observes compression progress. It receives cumulative
// counts after each completed frame: bytes consumed from the input,
// the total input size, and bytes emitted so far (header region
// included). Callbacks run synchronously on the compressing
// goroutine, in frame order, exactly once per frame.
type ProgressFunc func(bytesRead, bytesTotal, bytesWritten int)

// Compressor turns a byte stream into a seekable chunked archive in a
// single synchronous pass. It holds one codec encoder context reused
// across frames and is not safe for concurrent use; for parallel
// frame compression use ParallelCompressor.
type Compressor struct {
	params   CompressionParams
	codec    compression.Codec
	enc      compression.Encoder
	progress ProgressFunc
	logger   *Logger
	metrics  MetricsCollector
	closed   bool
}

// NewCompressor creates a Compressor bound to params and the
// configured codec. Params are validated up front, including the
// codec's support for FrameChecksum.
func NewCompressor(params CompressionParams, optFns ...Option) (*Compressor, error) {
	o := applyOptions(optFns)

	if err := params.Validate(o.codec); err != nil {
		return nil, err
	}

	enc, err := o.codec.NewEncoder(compression.EncoderOptions{
		Level:    params.Level,
		Checksum: params.FrameChecksum,
	})
	if err != nil {
		return nil, err
	}

	return &Compressor{
		params:   params,
		codec:    o.codec,
		enc:      enc,
		progress: o.progress,
		logger:   o.logger.WithCodec(o.codec.Name()),
		metrics:  o.metrics,
	}, nil
}

// Params returns the parameters the compressor was created with.
func (c *Compressor) Params() CompressionParams {
	return c.params
}

// OutputSizeLimit returns an upper bound for the archive produced
// from inputLen bytes: the exact header size for the resulting frame
// count plus the codec's worst-case bound per frame. It is safe to
// allocate a destination of this size before compressing. inputLen
// of zero yields the size of a bare zero-frame header.
func (c *Compressor) OutputSizeLimit(inputLen int) int {
	return outputSizeLimit(c.enc, inputLen, c.params.ChunkSize)
}

func outputSizeLimit(enc compression.Encoder, inputLen, chunkSize int) int {
	numFrames := format.NumFramesForDataSize(inputLen, chunkSize)
	size := format.MetadataSizeForNumFrames(numFrames)
	if numFrames == 0 {
		return size
	}
	lastFrame := inputLen - (numFrames-1)*chunkSize
	return size + (numFrames-1)*enc.Bound(chunkSize) + enc.Bound(lastFrame)
}

// Compress writes the archive for src into dst and returns the
// number of bytes written. dst must hold at least
// OutputSizeLimit(len(src)) bytes. Empty input produces a zero-frame
// archive of format.HeaderPrefixSize bytes. On error the contents of
// dst are undefined and must be discarded.
func (c *Compressor) Compress(dst, src []byte) (int, error) {
	start := time.Now()
	written, frames, err := c.compress(dst, src)
	c.metrics.RecordCompress(frames, int64(len(src)), int64(written), time.Since(start), err)
	c.logger.LogCompress(frames, len(src), written, err)
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (c *Compressor) compress(dst, src []byte) (written, frames int, err error) {
	if c.closed {
		return 0, 0, fmt.Errorf("%w: compressor is closed", errdefs.ErrBadState)
	}

	numFrames := format.NumFramesForDataSize(len(src), c.params.ChunkSize)
	if numFrames > format.MaxFrames {
		return 0, 0, fmt.Errorf("%w: input needs %d frames, format supports %d",
			errdefs.ErrInvalidArgs, numFrames, format.MaxFrames)
	}
	if limit := c.OutputSizeLimit(len(src)); len(dst) < limit {
		return 0, 0, fmt.Errorf("%w: destination %d bytes, need %d",
			errdefs.ErrBufferTooSmall, len(dst), limit)
	}

	hw, err := format.NewHeaderWriter(dst, numFrames)
	if err != nil {
		return 0, 0, err
	}

	chunk := c.params.ChunkSize
	pos := format.MetadataSizeForNumFrames(numFrames)
	read := 0
	for i := 0; i < numFrames; i++ {
		frame := src[i*chunk : min((i+1)*chunk, len(src))]

		n, err := c.enc.Compress(dst[pos:], frame)
		if err != nil {
			return 0, i, fmt.Errorf("compressing frame %d: %w", i, err)
		}

		err = hw.AddEntry(format.SeekTableEntry{
			DecompressedOffset: uint64(i * chunk),
			DecompressedSize:   uint64(len(frame)),
			CompressedOffset:   uint64(pos),
			CompressedSize:     uint64(n),
		})
		if err != nil {
			return 0, i, err
		}

		pos += n
		read += len(frame)
		if c.progress != nil {
			c.progress(read, len(src), pos)
		}
	}

	if err := hw.Finalize(); err != nil {
		return 0, numFrames, err
	}
	return pos, numFrames, nil
}

// CompressBytes compresses src into a freshly allocated buffer sized
// to the exact compressed output.
func (c *Compressor) CompressBytes(src []byte) ([]byte, error) {
	dst := make([]byte, c.OutputSizeLimit(len(src)))
	n, err := c.Compress(dst, src)
	if err != nil {
		return nil, err
	}
	return dst[:n:n], nil
}

// Close releases the codec encoder. The compressor is unusable
// afterwards; Compress returns ErrBadState.
func (c *Compressor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.enc.Close()
}
