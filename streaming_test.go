package chunkgo

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chunkgo/compression"
	"github.com/hupe1980/chunkgo/errdefs"
	"github.com/hupe1980/chunkgo/format"
	"github.com/hupe1980/chunkgo/testutil"
)

// streamCompress feeds src through Init/Update/Final in pieces
// produced by next and returns the archive.
func streamCompress(t *testing.T, s *StreamingCompressor, src []byte, next func(remaining int) int) []byte {
	t.Helper()

	dst := make([]byte, s.OutputSizeLimit(len(src)))
	require.NoError(t, s.Init(dst, len(src)))

	fed := 0
	for fed < len(src) {
		n := next(len(src) - fed)
		require.NoError(t, s.Update(src[fed:fed+n]))
		fed += n
	}

	n, err := s.Final()
	require.NoError(t, err)
	return dst[:n]
}

func TestStreamingMatchesSingleShot(t *testing.T) {
	rng := testutil.NewRNG(17)
	params := testParams(nil)
	params.ChunkSize = 4096
	src := rng.CompressibleBytes(3*4096 + 1234)

	c, err := NewCompressor(params)
	require.NoError(t, err)
	defer c.Close()
	want, err := c.CompressBytes(src)
	require.NoError(t, err)

	s, err := NewStreamingCompressor(params)
	require.NoError(t, err)
	defer s.Close()

	feeds := map[string]func(remaining int) int{
		"one byte at a time": func(int) int { return 1 },
		"all at once":        func(remaining int) int { return remaining },
		"chunk aligned":      func(remaining int) int { return min(4096, remaining) },
		"chunk unaligned":    func(remaining int) int { return min(1000, remaining) },
		"random sizes":       func(remaining int) int { return 1 + rng.Intn(remaining) },
	}

	for name, next := range feeds {
		t.Run(name, func(t *testing.T) {
			got := streamCompress(t, s, src, next)
			assert.True(t, bytes.Equal(want, got), "archive differs from single-shot output")

			back, err := DecompressBytes(got)
			require.NoError(t, err)
			assert.Equal(t, src, back)
		})
	}
}

func TestStreamingRoundTripAllCodecs(t *testing.T) {
	rng := testutil.NewRNG(31)
	src := rng.TextBytes(2*MinChunkSize + 77)

	for _, name := range []string{"zstd", "lz4", "s2"} {
		t.Run(name, func(t *testing.T) {
			codec, ok := compression.ByName(name)
			require.True(t, ok)

			s, err := NewStreamingCompressor(testParams(codec), WithCodec(codec))
			require.NoError(t, err)
			defer s.Close()

			archive := streamCompress(t, s, src, func(remaining int) int {
				return min(513, remaining)
			})

			back, err := DecompressBytes(archive, WithCodec(codec))
			require.NoError(t, err)
			assert.Equal(t, src, back)
		})
	}
}

func TestStreamingLifecycle(t *testing.T) {
	params := testParams(nil)
	s, err := NewStreamingCompressor(params)
	require.NoError(t, err)
	defer s.Close()

	t.Run("update before init", func(t *testing.T) {
		err := s.Update([]byte("data"))
		require.Error(t, err)
		assert.True(t, errdefs.IsBadState(err))
	})

	t.Run("final before init", func(t *testing.T) {
		_, err := s.Final()
		require.Error(t, err)
		assert.True(t, errdefs.IsBadState(err))
	})

	src := []byte("hello streaming world")
	dst := make([]byte, s.OutputSizeLimit(len(src)))

	t.Run("early final", func(t *testing.T) {
		require.NoError(t, s.Init(dst, len(src)))
		require.NoError(t, s.Update(src[:4]))

		_, err := s.Final()
		require.Error(t, err)
		assert.True(t, errdefs.IsBadState(err))
	})

	t.Run("overshoot", func(t *testing.T) {
		require.NoError(t, s.Init(dst, len(src)))
		require.NoError(t, s.Update(src))

		err := s.Update([]byte{0xff})
		require.Error(t, err)
		assert.True(t, errdefs.IsInvalidArgs(err))

		// The overshooting call is rejected without corrupting the
		// stream; Final still succeeds.
		n, err := s.Final()
		require.NoError(t, err)

		back, err := DecompressBytes(dst[:n])
		require.NoError(t, err)
		assert.Equal(t, src, back)
	})

	t.Run("update after final", func(t *testing.T) {
		err := s.Update([]byte("late"))
		require.Error(t, err)
		assert.True(t, errdefs.IsBadState(err))
	})

	t.Run("reusable after final", func(t *testing.T) {
		for range 3 {
			require.NoError(t, s.Init(dst, len(src)))
			require.NoError(t, s.Update(src))

			n, err := s.Final()
			require.NoError(t, err)

			back, err := DecompressBytes(dst[:n])
			require.NoError(t, err)
			assert.Equal(t, src, back)
		}
	})
}

func TestStreamingInitValidation(t *testing.T) {
	s, err := NewStreamingCompressor(testParams(nil))
	require.NoError(t, err)
	defer s.Close()

	t.Run("negative stream length", func(t *testing.T) {
		err := s.Init(make([]byte, 64), -1)
		require.Error(t, err)
		assert.True(t, errdefs.IsInvalidArgs(err))
	})

	t.Run("destination too small", func(t *testing.T) {
		err := s.Init(make([]byte, 10), 100)
		require.Error(t, err)
		assert.True(t, errdefs.IsBufferTooSmall(err))
	})

	t.Run("frame cap", func(t *testing.T) {
		streamLen := MinChunkSize * (format.MaxFrames + 1)
		err := s.Init(make([]byte, 1), streamLen)
		require.Error(t, err)
		assert.True(t, errdefs.IsInvalidArgs(err))
	})
}

func TestStreamingZeroLength(t *testing.T) {
	s, err := NewStreamingCompressor(testParams(nil))
	require.NoError(t, err)
	defer s.Close()

	dst := make([]byte, s.OutputSizeLimit(0))
	require.NoError(t, s.Init(dst, 0))

	require.NoError(t, s.Update(nil))

	n, err := s.Final()
	require.NoError(t, err)
	assert.Equal(t, format.HeaderPrefixSize, n)

	table, err := ReadSeekTable(dst[:n])
	require.NoError(t, err)
	assert.Equal(t, 0, table.NumFrames())
}

func TestStreamingCompressFrom(t *testing.T) {
	rng := testutil.NewRNG(23)
	params := testParams(nil)
	src := rng.CompressibleBytes(5*MinChunkSize + 333)

	s, err := NewStreamingCompressor(params)
	require.NoError(t, err)
	defer s.Close()

	t.Run("matches single shot", func(t *testing.T) {
		c, err := NewCompressor(params)
		require.NoError(t, err)
		defer c.Close()
		want, err := c.CompressBytes(src)
		require.NoError(t, err)

		dst := make([]byte, s.OutputSizeLimit(len(src)))
		n, err := s.CompressFrom(dst, bytes.NewReader(src), len(src))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(want, dst[:n]))
	})

	t.Run("reader ends early", func(t *testing.T) {
		dst := make([]byte, s.OutputSizeLimit(len(src)))
		_, err := s.CompressFrom(dst, bytes.NewReader(src[:100]), len(src))
		require.Error(t, err)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

		// The failed job leaves the compressor reusable.
		n, err := s.CompressFrom(dst, bytes.NewReader(src), len(src))
		require.NoError(t, err)

		back, err := DecompressBytes(dst[:n])
		require.NoError(t, err)
		assert.Equal(t, src, back)
	})

	t.Run("empty stream", func(t *testing.T) {
		dst := make([]byte, s.OutputSizeLimit(0))
		n, err := s.CompressFrom(dst, bytes.NewReader(nil), 0)
		require.NoError(t, err)
		assert.Equal(t, format.HeaderPrefixSize, n)
	})
}

func TestStreamingClose(t *testing.T) {
	s, err := NewStreamingCompressor(testParams(nil))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	err = s.Init(make([]byte, 64), 0)
	require.Error(t, err)
	assert.True(t, errdefs.IsBadState(err))
}
