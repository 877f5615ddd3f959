package chunkgo

import (
	"fmt"

	"github.com/hupe1980/chunkgo/compression"
	"github.com/hupe1980/chunkgo/errdefs"
	"github.com/hupe1980/chunkgo/format"
)

const (
	// ChunkAlignment is the required alignment of ChunkSize. Keeping
	// frame boundaries block-aligned lets readers map decompressed
	// offsets to storage blocks without straddling.
	ChunkAlignment = 4096

	// MinChunkSize is the smallest permitted ChunkSize, one aligned
	// block. Smaller frames waste seek table entries and compress
	// poorly.
	MinChunkSize = ChunkAlignment

	// MaxChunkSize is the largest permitted ChunkSize (128 MiB).
	MaxChunkSize = 128 << 20

	// DefaultChunkSize balances random-access granularity against
	// compression ratio for typical blob sizes.
	DefaultChunkSize = 32 << 10
)

// CompressionParams bundle the tunables of a compression job. The
// zero value is not valid; start from DefaultParams.
type CompressionParams struct {
	// Level is the compression level, bounded by the codec's
	// MinLevel/MaxLevel.
	Level int

	// ChunkSize is the frame size in decompressed space. Must lie
	// within [MinChunkSize, MaxChunkSize] and be a multiple of
	// ChunkAlignment.
	ChunkSize int

	// FrameChecksum requests per-frame embedded checksums, verified
	// automatically during decompression. Only codecs whose block
	// format carries a checksum support this.
	FrameChecksum bool
}

// DefaultParams returns the default parameters for the default codec.
func DefaultParams() CompressionParams {
	return CompressionParams{
		Level:     compression.Default.DefaultLevel(),
		ChunkSize: DefaultChunkSize,
	}
}

// Validate checks p against the chunk size bounds and the codec's
// level bounds. A nil codec means compression.Default.
func (p CompressionParams) Validate(c compression.Codec) error {
	if c == nil {
		c = compression.Default
	}
	if p.ChunkSize < MinChunkSize || p.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk size %d outside [%d, %d]",
			errdefs.ErrInvalidArgs, p.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	if p.ChunkSize%ChunkAlignment != 0 {
		return fmt.Errorf("%w: chunk size %d not a multiple of %d",
			errdefs.ErrInvalidArgs, p.ChunkSize, ChunkAlignment)
	}
	if p.Level < c.MinLevel() || p.Level > c.MaxLevel() {
		return fmt.Errorf("%w: %s level %d outside [%d, %d]",
			errdefs.ErrInvalidArgs, c.Name(), p.Level, c.MinLevel(), c.MaxLevel())
	}
	return nil
}

// IsValid reports whether Validate(c) would succeed.
func (p CompressionParams) IsValid(c compression.Codec) bool {
	return p.Validate(c) == nil
}

// ChunkSizeForInputSize returns a chunk size aiming at roughly
// targetFrames frames for an input of inputLen bytes, aligned to
// ChunkAlignment and clamped to [MinChunkSize, MaxChunkSize]. A
// targetFrames outside (0, format.MaxFrames] is treated as the frame
// cap, so the result keeps any input below ~128 GiB within the cap
// while small inputs keep small frames.
func ChunkSizeForInputSize(inputLen, targetFrames int) int {
	if targetFrames <= 0 || targetFrames > format.MaxFrames {
		targetFrames = format.MaxFrames
	}
	if inputLen <= 0 {
		return MinChunkSize
	}

	chunk := (inputLen + targetFrames - 1) / targetFrames
	chunk = (chunk + ChunkAlignment - 1) / ChunkAlignment * ChunkAlignment

	if chunk < MinChunkSize {
		return MinChunkSize
	}
	if chunk > MaxChunkSize {
		return MaxChunkSize
	}
	return chunk
}
