// Package compression defines the pluggable block compression
// backends used for archive frames.
//
// The archive format is agnostic to the backend: any codec that turns
// a byte block into a self-contained compressed block and back is
// substitutable. The format does not record which codec produced an
// archive, so readers must pair their decoder with the producer's
// codec; Default on both sides round-trips.
package compression

// EncoderOptions configure a codec encoder.
type EncoderOptions struct {
	// Level is the compression level, bounded by the codec's
	// MinLevel/MaxLevel.
	Level int

	// Checksum requests a per-block embedded checksum that the
	// decoder verifies automatically. Codecs whose block format
	// cannot carry one reject this option.
	Checksum bool
}

// Codec describes one compression backend.
type Codec interface {
	// Name returns the stable codec name used by ByName.
	Name() string

	// DefaultLevel returns the level used when callers have no
	// preference.
	DefaultLevel() int

	// MinLevel returns the smallest valid level.
	MinLevel() int

	// MaxLevel returns the largest valid level.
	MaxLevel() int

	// NewEncoder creates an encoder context. Encoders are not safe
	// for concurrent use; create one per goroutine.
	NewEncoder(opts EncoderOptions) (Encoder, error)

	// NewDecoder creates a decoder context. Decoders are safe for
	// concurrent use by multiple goroutines.
	NewDecoder() (Decoder, error)
}

// Encoder compresses whole blocks. An encoder may hold reusable
// scratch state and must not be shared between goroutines.
type Encoder interface {
	// Bound returns the worst-case compressed size of a block of
	// srcLen bytes. Bound is a pure computation and, unlike the
	// other methods, may be called from multiple goroutines.
	Bound(srcLen int) int

	// Compress compresses src into dst and returns the number of
	// bytes written. dst must hold at least Bound(len(src)) bytes.
	Compress(dst, src []byte) (int, error)

	// Reset clears any state carried across Compress calls. The
	// built-in codecs keep no such state; callers reusing encoders
	// across independent jobs call it anyway so stateful codecs stay
	// correct.
	Reset()

	// Close releases the encoder. The encoder is unusable afterwards.
	Close() error
}

// Decoder decompresses whole blocks produced by the matching codec's
// encoder.
type Decoder interface {
	// Decompress decodes src into dst and returns the number of bytes
	// written. dst must be sized to the exact expected output; output
	// that does not fit is reported as a data integrity failure.
	Decompress(dst, src []byte) (int, error)

	// Reset clears any state carried across Decompress calls.
	Reset()

	// Close releases the decoder. The decoder is unusable afterwards.
	Close() error
}

// Default is the codec used when none is configured.
var Default Codec = Zstd{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	case "s2":
		return S2{}, true
	default:
		return nil, false
	}
}

func levelInRange(c Codec, level int) bool {
	return level >= c.MinLevel() && level <= c.MaxLevel()
}
