package chunkgo

import (
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/chunkgo/compression"
	"github.com/hupe1980/chunkgo/errdefs"
	"github.com/hupe1980/chunkgo/format"
)

// StreamingCompressor produces the same archives as Compressor but is
// fed incrementally: Init declares the total stream length and the
// destination, Update pushes input bytes in arbitrarily sized pieces,
// Final flushes the last frame and finalizes the header. Each frame
// is compressed as soon as its last byte arrives, so at most one
// chunk of input is buffered at a time.
//
// A StreamingCompressor is reusable: after Final completes, Init
// starts the next job. It is not safe for concurrent use.
type StreamingCompressor struct {
	params  CompressionParams
	codec   compression.Codec
	enc     compression.Encoder
	logger  *Logger
	metrics MetricsCollector
	closed  bool

	// Per-job state, valid between Init and Final.
	active    bool
	dst       []byte
	hw        *format.HeaderWriter
	streamLen int
	read      int
	written   int
	frames    int
	pending   []byte
	started   time.Time
}

// NewStreamingCompressor creates a StreamingCompressor bound to
// params and the configured codec.
func NewStreamingCompressor(params CompressionParams, optFns ...Option) (*StreamingCompressor, error) {
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

	return &StreamingCompressor{
		params:  params,
		codec:   o.codec,
		enc:     enc,
		logger:  o.logger.WithCodec(o.codec.Name()),
		metrics: o.metrics,
	}, nil
}

// Params returns the parameters the compressor was created with.
func (s *StreamingCompressor) Params() CompressionParams {
	return s.params
}

// OutputSizeLimit returns the destination size Init requires for a
// stream of streamLen bytes. See Compressor.OutputSizeLimit.
func (s *StreamingCompressor) OutputSizeLimit(streamLen int) int {
	return outputSizeLimit(s.enc, streamLen, s.params.ChunkSize)
}

// Init starts a new job writing into dst for a stream of exactly
// streamLen bytes. Any in-progress job is discarded. dst must hold at
// least OutputSizeLimit(streamLen) bytes and must not be modified by
// the caller until Final returns.
func (s *StreamingCompressor) Init(dst []byte, streamLen int) error {
	if s.closed {
		return fmt.Errorf("%w: compressor is closed", errdefs.ErrBadState)
	}
	if streamLen < 0 {
		return fmt.Errorf("%w: negative stream length %d", errdefs.ErrInvalidArgs, streamLen)
	}

	numFrames := format.NumFramesForDataSize(streamLen, s.params.ChunkSize)
	if numFrames > format.MaxFrames {
		return fmt.Errorf("%w: stream needs %d frames, format supports %d",
			errdefs.ErrInvalidArgs, numFrames, format.MaxFrames)
	}
	if limit := s.OutputSizeLimit(streamLen); len(dst) < limit {
		return fmt.Errorf("%w: destination %d bytes, need %d",
			errdefs.ErrBufferTooSmall, len(dst), limit)
	}

	hw, err := format.NewHeaderWriter(dst, numFrames)
	if err != nil {
		return err
	}

	s.active = true
	s.dst = dst
	s.hw = hw
	s.streamLen = streamLen
	s.read = 0
	s.written = format.MetadataSizeForNumFrames(numFrames)
	s.frames = 0
	s.pending = s.pending[:0]
	s.started = time.Now()
	return nil
}

// Update appends p to the logical input stream. Whole frames are
// compressed immediately; when p itself covers a complete frame the
// bytes are compressed straight from p without copying. Feeding more
// than the streamLen declared at Init fails with ErrInvalidArgs.
func (s *StreamingCompressor) Update(p []byte) error {
	if !s.active {
		return fmt.Errorf("%w: no stream in progress", errdefs.ErrBadState)
	}
	if len(p) > s.streamLen-s.read {
		return fmt.Errorf("%w: %d bytes overshoot declared stream length %d",
			errdefs.ErrInvalidArgs, s.read+len(p), s.streamLen)
	}

	for len(p) > 0 {
		frameStart := s.read - len(s.pending)
		frameSize := min(s.params.ChunkSize, s.streamLen-frameStart)
		need := frameSize - len(s.pending)

		if len(s.pending) == 0 && len(p) >= need {
			if err := s.emitFrame(p[:need], frameStart); err != nil {
				return err
			}
			s.read += need
			p = p[need:]
			continue
		}

		take := min(need, len(p))
		s.pending = append(s.pending, p[:take]...)
		s.read += take
		p = p[take:]

		if len(s.pending) == frameSize {
			if err := s.emitFrame(s.pending, frameStart); err != nil {
				return err
			}
			s.pending = s.pending[:0]
		}
	}
	return nil
}

func (s *StreamingCompressor) emitFrame(frame []byte, frameStart int) error {
	n, err := s.enc.Compress(s.dst[s.written:], frame)
	if err != nil {
		s.abort()
		return fmt.Errorf("compressing frame %d: %w", s.frames, err)
	}

	err = s.hw.AddEntry(format.SeekTableEntry{
		DecompressedOffset: uint64(frameStart),
		DecompressedSize:   uint64(len(frame)),
		CompressedOffset:   uint64(s.written),
		CompressedSize:     uint64(n),
	})
	if err != nil {
		s.abort()
		return err
	}

	s.written += n
	s.frames++
	return nil
}

// abort discards the current job after a frame failure. Subsequent
// Update/Final calls fail with ErrBadState until the next Init.
func (s *StreamingCompressor) abort() {
	s.active = false
	s.dst = nil
	s.hw = nil
}

// Final flushes state after the full stream has been fed, finalizes
// the header and returns the total archive size. Calling it before
// exactly streamLen bytes were fed fails with ErrBadState.
func (s *StreamingCompressor) Final() (int, error) {
	if !s.active {
		return 0, fmt.Errorf("%w: no stream in progress", errdefs.ErrBadState)
	}
	if s.read != s.streamLen {
		return 0, fmt.Errorf("%w: stream incomplete, %d of %d bytes fed",
			errdefs.ErrBadState, s.read, s.streamLen)
	}

	err := s.hw.Finalize()
	s.metrics.RecordCompress(s.frames, int64(s.read), int64(s.written), time.Since(s.started), err)
	s.logger.LogCompress(s.frames, s.read, s.written, err)
	if err != nil {
		s.abort()
		return 0, err
	}

	written := s.written
	s.abort()
	return written, nil
}

// CompressFrom drives a whole job from r: it reads exactly streamLen
// bytes in chunk-sized pieces and feeds them through Init, Update and
// Final. A stream ending before streamLen bytes fails with the
// reader's error.
func (s *StreamingCompressor) CompressFrom(dst []byte, r io.Reader, streamLen int) (int, error) {
	if err := s.Init(dst, streamLen); err != nil {
		return 0, err
	}

	buf := make([]byte, min(s.params.ChunkSize, max(streamLen, 1)))
	remaining := streamLen
	for remaining > 0 {
		n, err := io.ReadFull(r, buf[:min(len(buf), remaining)])
		if err != nil {
			s.abort()
			return 0, fmt.Errorf("reading stream: %w", err)
		}
		if err := s.Update(buf[:n]); err != nil {
			return 0, err
		}
		remaining -= n
	}
	return s.Final()
}

// Close releases the codec encoder. The compressor is unusable
// afterwards.
func (s *StreamingCompressor) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.abort()
	return s.enc.Close()
}
