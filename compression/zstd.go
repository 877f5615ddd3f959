package compression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/chunkgo/errdefs"
)

// Zstd is the zstandard codec. It is the only built-in codec whose
// block format carries an embedded checksum, so it is the default.
type Zstd struct{}

// Name implements Codec.
func (Zstd) Name() string { return "zstd" }

// DefaultLevel implements Codec. Level 14 favors ratio over speed,
// fitting write-once read-many archives.
func (Zstd) DefaultLevel() int { return 14 }

// MinLevel implements Codec.
func (Zstd) MinLevel() int { return 1 }

// MaxLevel implements Codec.
func (Zstd) MaxLevel() int { return 22 }

// NewEncoder implements Codec.
func (z Zstd) NewEncoder(opts EncoderOptions) (Encoder, error) {
	if !levelInRange(z, opts.Level) {
		return nil, fmt.Errorf("%w: zstd level %d outside [%d, %d]",
			errdefs.ErrInvalidArgs, opts.Level, z.MinLevel(), z.MaxLevel())
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.Level)),
		zstd.WithEncoderCRC(opts.Checksum),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating zstd encoder: %w", errdefs.ErrInternal, err)
	}
	return &zstdEncoder{enc: enc}, nil
}

// NewDecoder implements Codec.
func (Zstd) NewDecoder() (Decoder, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating zstd decoder: %w", errdefs.ErrInternal, err)
	}
	return &zstdDecoder{dec: dec}, nil
}

type zstdEncoder struct {
	enc *zstd.Encoder
}

func (e *zstdEncoder) Bound(srcLen int) int {
	return e.enc.MaxEncodedSize(srcLen)
}

func (e *zstdEncoder) Compress(dst, src []byte) (int, error) {
	if len(dst) < e.Bound(len(src)) {
		return 0, fmt.Errorf("%w: zstd needs %d bytes, got %d",
			errdefs.ErrBufferTooSmall, e.Bound(len(src)), len(dst))
	}

	out := e.enc.EncodeAll(src, dst[:0])
	if len(out) > len(dst) {
		return 0, fmt.Errorf("%w: zstd output %d exceeds buffer %d",
			errdefs.ErrBufferTooSmall, len(out), len(dst))
	}
	// EncodeAll appends in place when dst has capacity; only copy if
	// it had to grow elsewhere.
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}

func (e *zstdEncoder) Reset() {}

func (e *zstdEncoder) Close() error {
	return e.enc.Close()
}

type zstdDecoder struct {
	dec *zstd.Decoder
}

func (d *zstdDecoder) Decompress(dst, src []byte) (int, error) {
	// Cap at len(dst): output beyond the expected size must never
	// land in dst's backing array.
	out, err := d.dec.DecodeAll(src, dst[:0:len(dst)])
	if err != nil {
		return 0, fmt.Errorf("%w: zstd decode: %w", errdefs.ErrDataIntegrity, err)
	}
	if len(out) > len(dst) {
		return 0, fmt.Errorf("%w: zstd output %d exceeds expected size %d",
			errdefs.ErrDataIntegrity, len(out), len(dst))
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}

func (d *zstdDecoder) Reset() {}

func (d *zstdDecoder) Close() error {
	d.dec.Close()
	return nil
}
