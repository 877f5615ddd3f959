package benchmark_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/chunkgo"
	"github.com/hupe1980/chunkgo/compression"
	"github.com/hupe1980/chunkgo/format"
	"github.com/hupe1980/chunkgo/testutil"
)

var benchSizes = []struct {
	name string
	n    int
}{
	{"64KiB", 64 << 10},
	{"1MiB", 1 << 20},
	{"16MiB", 16 << 20},
}

var benchCodecs = []compression.Codec{
	compression.Zstd{},
	compression.LZ4{},
	compression.S2{},
}

var (
	corpusMu    sync.Mutex
	corpusCache = map[int][]byte{}
)

// corpus returns a deterministic compressible input of n bytes. Inputs
// are cached so repeated sub-benchmarks share the same bytes.
func corpus(n int) []byte {
	corpusMu.Lock()
	defer corpusMu.Unlock()

	if data, ok := corpusCache[n]; ok {
		return data
	}
	data := testutil.NewRNG(int64(n)).CompressibleBytes(n)
	corpusCache[n] = data
	return data
}

func benchParams(codec compression.Codec) chunkgo.CompressionParams {
	return chunkgo.CompressionParams{
		Level:     codec.DefaultLevel(),
		ChunkSize: chunkgo.DefaultChunkSize,
	}
}

func benchName(codec compression.Codec, size string) string {
	return fmt.Sprintf("%s/%s", codec.Name(), size)
}

func levelName(level int) string {
	return fmt.Sprintf("level_%d", level)
}

func buildBenchArchive(b *testing.B, codec compression.Codec, src []byte) ([]byte, *format.SeekTable) {
	b.Helper()

	c, err := chunkgo.NewCompressor(benchParams(codec), chunkgo.WithCodec(codec))
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()

	archive, err := c.CompressBytes(src)
	if err != nil {
		b.Fatal(err)
	}
	table, err := chunkgo.ReadSeekTable(archive)
	if err != nil {
		b.Fatal(err)
	}
	return archive, table
}
