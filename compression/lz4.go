package compression

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/chunkgo/errdefs"
)

// LZ4 is the lz4 block codec: much faster than zstd at a worse ratio.
// Its block format carries no embedded checksum, so encoders reject
// EncoderOptions.Checksum.
type LZ4 struct{}

// Name implements Codec.
func (LZ4) Name() string { return "lz4" }

// DefaultLevel implements Codec. Level 0 is the fast non-HC path.
func (LZ4) DefaultLevel() int { return 0 }

// MinLevel implements Codec.
func (LZ4) MinLevel() int { return 0 }

// MaxLevel implements Codec. Levels 1 through 9 map to the HC
// compressor depths.
func (LZ4) MaxLevel() int { return 9 }

// NewEncoder implements Codec.
func (l LZ4) NewEncoder(opts EncoderOptions) (Encoder, error) {
	if !levelInRange(l, opts.Level) {
		return nil, fmt.Errorf("%w: lz4 level %d outside [%d, %d]",
			errdefs.ErrInvalidArgs, opts.Level, l.MinLevel(), l.MaxLevel())
	}
	if opts.Checksum {
		return nil, fmt.Errorf("%w: lz4 block format carries no checksum", errdefs.ErrInvalidArgs)
	}

	e := &lz4Encoder{}
	if opts.Level == 0 {
		e.fast = &lz4.Compressor{}
	} else {
		e.hc = &lz4.CompressorHC{Level: lz4HCLevel(opts.Level)}
	}
	return e, nil
}

// NewDecoder implements Codec.
func (LZ4) NewDecoder() (Decoder, error) {
	return &lz4Decoder{}, nil
}

func lz4HCLevel(level int) lz4.CompressionLevel {
	switch level {
	case 1:
		return lz4.Level1
	case 2:
		return lz4.Level2
	case 3:
		return lz4.Level3
	case 4:
		return lz4.Level4
	case 5:
		return lz4.Level5
	case 6:
		return lz4.Level6
	case 7:
		return lz4.Level7
	case 8:
		return lz4.Level8
	case 9:
		return lz4.Level9
	default:
		return lz4.Fast
	}
}

type lz4Encoder struct {
	fast *lz4.Compressor
	hc   *lz4.CompressorHC
}

func (e *lz4Encoder) Bound(srcLen int) int {
	return lz4.CompressBlockBound(srcLen)
}

func (e *lz4Encoder) Compress(dst, src []byte) (int, error) {
	if len(dst) < e.Bound(len(src)) {
		return 0, fmt.Errorf("%w: lz4 needs %d bytes, got %d",
			errdefs.ErrBufferTooSmall, e.Bound(len(src)), len(dst))
	}

	var (
		n   int
		err error
	)
	if e.hc != nil {
		n, err = e.hc.CompressBlock(src, dst)
	} else {
		n, err = e.fast.CompressBlock(src, dst)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: lz4 encode: %w", errdefs.ErrInternal, err)
	}
	if n == 0 {
		// CompressBlock signals incompressible input by writing
		// nothing. Emit a literal-only block instead, so every frame
		// stays a valid lz4 block.
		n = encodeLiteralBlock(dst, src)
	}
	return n, nil
}

func (e *lz4Encoder) Reset() {}

func (e *lz4Encoder) Close() error { return nil }

// encodeLiteralBlock writes src as a single lz4 sequence of literals
// with no match part. dst must hold Bound(len(src)) bytes, which
// always covers the token and length extension bytes.
func encodeLiteralBlock(dst, src []byte) int {
	i := 0
	if n := len(src); n < 15 {
		dst[i] = byte(n) << 4
		i++
	} else {
		dst[i] = 0xf0
		i++
		for rem := n - 15; ; rem -= 255 {
			if rem < 255 {
				dst[i] = byte(rem)
				i++
				break
			}
			dst[i] = 255
			i++
		}
	}
	return i + copy(dst[i:], src)
}

type lz4Decoder struct{}

func (d *lz4Decoder) Decompress(dst, src []byte) (int, error) {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("%w: lz4 decode: %w", errdefs.ErrDataIntegrity, err)
	}
	return n, nil
}

func (d *lz4Decoder) Reset() {}

func (d *lz4Decoder) Close() error { return nil }
