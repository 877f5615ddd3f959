package chunkgo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chunkgo/compression"
	"github.com/hupe1980/chunkgo/errdefs"
	"github.com/hupe1980/chunkgo/format"
	"github.com/hupe1980/chunkgo/testutil"
)

// testParams returns valid params with a small chunk so tests cover
// multi-frame archives without large inputs.
func testParams(codec compression.Codec) CompressionParams {
	if codec == nil {
		codec = compression.Default
	}
	return CompressionParams{
		Level:     codec.DefaultLevel(),
		ChunkSize: MinChunkSize,
	}
}

// mustRoundTrip compresses src, decompresses the result with the same
// codec and requires the output to equal src. Returns the archive.
func mustRoundTrip(t *testing.T, params CompressionParams, src []byte, optFns ...Option) []byte {
	t.Helper()

	c, err := NewCompressor(params, optFns...)
	require.NoError(t, err)
	defer c.Close()

	archive, err := c.CompressBytes(src)
	require.NoError(t, err)

	back, err := DecompressBytes(archive, optFns...)
	require.NoError(t, err)
	require.Equal(t, src, back)
	return archive
}

func TestCompressorRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(42)
	chunk := MinChunkSize

	inputs := map[string][]byte{
		"empty":                  {},
		"one byte":               {0x42},
		"below one chunk":        rng.CompressibleBytes(chunk - 100),
		"exactly one chunk":      rng.CompressibleBytes(chunk),
		"whole chunks":           rng.CompressibleBytes(4 * chunk),
		"chunks plus partial":    rng.CompressibleBytes(3*chunk + 1000),
		"incompressible":         rng.Bytes(2*chunk + 17),
		"text":                   rng.TextBytes(2 * chunk),
		"single byte over chunk": rng.CompressibleBytes(chunk + 1),
	}

	for name, src := range inputs {
		t.Run(name, func(t *testing.T) {
			for _, codecName := range []string{"zstd", "lz4", "s2"} {
				codec, ok := compression.ByName(codecName)
				require.True(t, ok)

				mustRoundTrip(t, testParams(codec), src, WithCodec(codec))
			}
		})
	}
}

func TestCompressorFrameLayout(t *testing.T) {
	t.Run("8192 zeros at chunk 4096", func(t *testing.T) {
		src := make([]byte, 8192)
		params := testParams(nil)
		params.ChunkSize = 4096

		require.Equal(t, 2, format.NumFramesForDataSize(len(src), params.ChunkSize))

		archive := mustRoundTrip(t, params, src)

		table, err := ReadSeekTable(archive)
		require.NoError(t, err)
		require.Equal(t, 2, table.NumFrames())

		entries := table.Entries()
		assert.Equal(t, uint64(4096), entries[0].DecompressedSize)
		assert.Equal(t, uint64(4096), entries[1].DecompressedSize)
		// All-zero frames compress to almost nothing.
		assert.Less(t, entries[0].CompressedSize, uint64(4096))
		assert.Less(t, entries[1].CompressedSize, uint64(4096))
	})

	t.Run("5000 bytes at chunk 4096", func(t *testing.T) {
		rng := testutil.NewRNG(7)
		src := rng.CompressibleBytes(5000)
		params := testParams(nil)
		params.ChunkSize = 4096

		archive := mustRoundTrip(t, params, src)

		table, err := ReadSeekTable(archive)
		require.NoError(t, err)
		require.Equal(t, 2, table.NumFrames())

		entries := table.Entries()
		assert.Equal(t, uint64(4096), entries[0].DecompressedSize)
		assert.Equal(t, uint64(904), entries[1].DecompressedSize)
		assert.Equal(t, uint64(5000), table.DecompressedSize())
	})

	t.Run("frames packed behind header", func(t *testing.T) {
		rng := testutil.NewRNG(11)
		src := rng.CompressibleBytes(3 * MinChunkSize)

		archive := mustRoundTrip(t, testParams(nil), src)

		table, err := ReadSeekTable(archive)
		require.NoError(t, err)

		pos := uint64(table.SerializedHeaderSize())
		for _, e := range table.Entries() {
			assert.Equal(t, pos, e.CompressedOffset)
			pos += e.CompressedSize
		}
		assert.Equal(t, pos, uint64(len(archive)))
	})
}

func TestCompressorEmptyInput(t *testing.T) {
	c, err := NewCompressor(testParams(nil))
	require.NoError(t, err)
	defer c.Close()

	archive, err := c.CompressBytes(nil)
	require.NoError(t, err)
	assert.Len(t, archive, format.HeaderPrefixSize)

	table, err := ReadSeekTable(archive)
	require.NoError(t, err)
	assert.Equal(t, 0, table.NumFrames())
	assert.Equal(t, uint64(0), table.DecompressedSize())

	back, err := DecompressBytes(archive)
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestCompressorFrameCap(t *testing.T) {
	params := testParams(nil)
	params.ChunkSize = 4096
	src := make([]byte, 4096*(format.MaxFrames+1))

	c, err := NewCompressor(params)
	require.NoError(t, err)
	defer c.Close()

	// A one-byte dst proves the cap is checked before the buffer.
	_, err = c.Compress(make([]byte, 1), src)
	require.Error(t, err)
	assert.True(t, errdefs.IsInvalidArgs(err))

	_, err = c.CompressBytes(src)
	require.Error(t, err)
	assert.True(t, errdefs.IsInvalidArgs(err))
}

func TestCompressorBufferTooSmall(t *testing.T) {
	rng := testutil.NewRNG(3)
	src := rng.CompressibleBytes(2 * MinChunkSize)

	c, err := NewCompressor(testParams(nil))
	require.NoError(t, err)
	defer c.Close()

	dst := make([]byte, c.OutputSizeLimit(len(src))-1)
	_, err = c.Compress(dst, src)
	require.Error(t, err)
	assert.True(t, errdefs.IsBufferTooSmall(err))
}

func TestCompressorOutputSizeLimit(t *testing.T) {
	c, err := NewCompressor(testParams(nil))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, format.HeaderPrefixSize, c.OutputSizeLimit(0))

	rng := testutil.NewRNG(9)
	for _, n := range []int{1, 100, MinChunkSize, 3*MinChunkSize + 5} {
		src := rng.Bytes(n)
		archive, err := c.CompressBytes(src)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(archive), c.OutputSizeLimit(n), "input %d", n)
	}
}

func TestCompressorProgress(t *testing.T) {
	params := testParams(nil)
	params.ChunkSize = 4096
	src := make([]byte, 3*4096+2048)

	type call struct{ read, total, written int }
	var calls []call

	c, err := NewCompressor(params, WithProgress(func(read, total, written int) {
		calls = append(calls, call{read, total, written})
	}))
	require.NoError(t, err)
	defer c.Close()

	archive, err := c.CompressBytes(src)
	require.NoError(t, err)

	require.Len(t, calls, 4)
	assert.Equal(t, []int{4096, 8192, 12288, 14336}, []int{calls[0].read, calls[1].read, calls[2].read, calls[3].read})
	for i, cl := range calls {
		assert.Equal(t, len(src), cl.total)
		if i > 0 {
			assert.Greater(t, cl.written, calls[i-1].written)
		}
	}
	assert.Equal(t, len(archive), calls[3].written)
}

func TestCompressorInvalidParams(t *testing.T) {
	t.Run("bad chunk size", func(t *testing.T) {
		params := testParams(nil)
		params.ChunkSize = 1000

		_, err := NewCompressor(params)
		require.Error(t, err)
		assert.True(t, errdefs.IsInvalidArgs(err))
	})

	t.Run("checksum unsupported by codec", func(t *testing.T) {
		for _, codec := range []compression.Codec{compression.LZ4{}, compression.S2{}} {
			params := testParams(codec)
			params.FrameChecksum = true

			_, err := NewCompressor(params, WithCodec(codec))
			require.Error(t, err, codec.Name())
			assert.True(t, errdefs.IsInvalidArgs(err), codec.Name())
		}
	})

	t.Run("checksum supported by zstd", func(t *testing.T) {
		params := testParams(nil)
		params.FrameChecksum = true

		c, err := NewCompressor(params)
		require.NoError(t, err)
		require.NoError(t, c.Close())
	})
}

func TestCompressorClose(t *testing.T) {
	c, err := NewCompressor(testParams(nil))
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.CompressBytes([]byte("data"))
	require.Error(t, err)
	assert.True(t, errdefs.IsBadState(err))
}

func TestCompressorDeterministic(t *testing.T) {
	rng := testutil.NewRNG(21)
	src := rng.CompressibleBytes(3 * MinChunkSize)

	c1, err := NewCompressor(testParams(nil))
	require.NoError(t, err)
	defer c1.Close()
	c2, err := NewCompressor(testParams(nil))
	require.NoError(t, err)
	defer c2.Close()

	a1, err := c1.CompressBytes(src)
	require.NoError(t, err)
	a2, err := c2.CompressBytes(src)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(a1, a2))
}
