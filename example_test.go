package chunkgo_test

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/chunkgo"
	"github.com/hupe1980/chunkgo/compression"
)

// Example demonstrates the one-shot convenience API.
func Example() {
	data := bytes.Repeat([]byte("chunked compression keeps blobs seekable. "), 4096)

	archive, err := chunkgo.CompressBytes(data)
	if err != nil {
		log.Fatal(err)
	}

	back, err := chunkgo.DecompressBytes(archive)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("round trip ok:", bytes.Equal(data, back))
	fmt.Println("compressed smaller:", len(archive) < len(data))
	// Output:
	// round trip ok: true
	// compressed smaller: true
}

// Example_randomAccess decompresses a single frame without touching
// the rest of the archive.
func Example_randomAccess() {
	data := bytes.Repeat([]byte{0xab}, 200_000)

	params := chunkgo.DefaultParams()
	params.ChunkSize = 64 << 10

	archive, err := chunkgo.CompressBytes(data, chunkgo.WithParams(params))
	if err != nil {
		log.Fatal(err)
	}

	table, err := chunkgo.ReadSeekTable(archive)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("frames:", table.NumFrames())

	// Locate the frame that holds decompressed offset 100000.
	idx, ok := table.EntryForDecompressedOffset(100_000)
	if !ok {
		log.Fatal("offset not covered")
	}
	entry := table.Entries()[idx]
	fmt.Println("frame index:", idx)

	d, err := chunkgo.NewDecompressor()
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	frame := make([]byte, entry.DecompressedSize)
	if _, err := d.DecompressFrame(frame, archive[entry.CompressedOffset:], table, idx); err != nil {
		log.Fatal(err)
	}
	fmt.Println("frame bytes:", len(frame))
	// Output:
	// frames: 4
	// frame index: 1
	// frame bytes: 65536
}

// Example_streaming compresses a stream of known length without
// buffering the whole input.
func Example_streaming() {
	payload := bytes.Repeat([]byte("streamed "), 20_000)

	s, err := chunkgo.NewStreamingCompressor(chunkgo.DefaultParams())
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	dst := make([]byte, s.OutputSizeLimit(len(payload)))
	n, err := s.CompressFrom(dst, bytes.NewReader(payload), len(payload))
	if err != nil {
		log.Fatal(err)
	}

	back, err := chunkgo.DecompressBytes(dst[:n])
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("round trip ok:", bytes.Equal(payload, back))
	// Output: round trip ok: true
}

// Example_parallelCompressor spreads frames across a worker pool.
func Example_parallelCompressor() {
	data := bytes.Repeat([]byte("parallel frames "), 50_000)

	p, err := chunkgo.NewParallelCompressor(4)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	archive, err := p.Compress(context.Background(), chunkgo.DefaultParams(), data)
	if err != nil {
		log.Fatal(err)
	}

	back, err := chunkgo.DecompressBytes(archive)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("round trip ok:", bytes.Equal(data, back))
	// Output: round trip ok: true
}

// Example_alternateCodec uses lz4 instead of the default zstd.
func Example_alternateCodec() {
	data := bytes.Repeat([]byte("swap the codec "), 10_000)

	codec := compression.LZ4{}
	params := chunkgo.DefaultParams()
	params.Level = codec.DefaultLevel()

	archive, err := chunkgo.CompressBytes(data,
		chunkgo.WithParams(params), chunkgo.WithCodec(codec))
	if err != nil {
		log.Fatal(err)
	}

	// Archives do not record their codec; decompression must use the
	// same one.
	back, err := chunkgo.DecompressBytes(archive, chunkgo.WithCodec(codec))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("round trip ok:", bytes.Equal(data, back))
	// Output: round trip ok: true
}
