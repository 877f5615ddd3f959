package compression

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/hupe1980/chunkgo/errdefs"
)

// S2 is the snappy-derived s2 block codec, tuned for throughput. Like
// lz4 its block format carries no embedded checksum.
type S2 struct{}

// S2 levels select between the encode paths rather than a tunable
// search depth.
const (
	S2Fast   = 1
	S2Better = 2
	S2Best   = 3
)

// Name implements Codec.
func (S2) Name() string { return "s2" }

// DefaultLevel implements Codec.
func (S2) DefaultLevel() int { return S2Fast }

// MinLevel implements Codec.
func (S2) MinLevel() int { return S2Fast }

// MaxLevel implements Codec.
func (S2) MaxLevel() int { return S2Best }

// NewEncoder implements Codec.
func (s S2) NewEncoder(opts EncoderOptions) (Encoder, error) {
	if !levelInRange(s, opts.Level) {
		return nil, fmt.Errorf("%w: s2 level %d outside [%d, %d]",
			errdefs.ErrInvalidArgs, opts.Level, s.MinLevel(), s.MaxLevel())
	}
	if opts.Checksum {
		return nil, fmt.Errorf("%w: s2 block format carries no checksum", errdefs.ErrInvalidArgs)
	}
	return &s2Encoder{level: opts.Level}, nil
}

// NewDecoder implements Codec.
func (S2) NewDecoder() (Decoder, error) {
	return &s2Decoder{}, nil
}

type s2Encoder struct {
	level int
}

func (e *s2Encoder) Bound(srcLen int) int {
	return s2.MaxEncodedLen(srcLen)
}

func (e *s2Encoder) Compress(dst, src []byte) (int, error) {
	if len(dst) < e.Bound(len(src)) {
		return 0, fmt.Errorf("%w: s2 needs %d bytes, got %d",
			errdefs.ErrBufferTooSmall, e.Bound(len(src)), len(dst))
	}

	var out []byte
	switch e.level {
	case S2Better:
		out = s2.EncodeBetter(dst, src)
	case S2Best:
		out = s2.EncodeBest(dst, src)
	default:
		out = s2.Encode(dst, src)
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}

func (e *s2Encoder) Reset() {}

func (e *s2Encoder) Close() error { return nil }

type s2Decoder struct{}

func (d *s2Decoder) Decompress(dst, src []byte) (int, error) {
	out, err := s2.Decode(dst, src)
	if err != nil {
		return 0, fmt.Errorf("%w: s2 decode: %w", errdefs.ErrDataIntegrity, err)
	}
	if len(out) > len(dst) {
		return 0, fmt.Errorf("%w: s2 output %d exceeds expected size %d",
			errdefs.ErrDataIntegrity, len(out), len(dst))
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}

func (d *s2Decoder) Reset() {}

func (d *s2Decoder) Close() error { return nil }
