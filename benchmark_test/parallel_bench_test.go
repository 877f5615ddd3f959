package benchmark_test

import (
	"bytes"
	"fmt"
	"runtime"
	"testing"

	"github.com/hupe1980/chunkgo"
	"github.com/hupe1980/chunkgo/resource"
)

func BenchmarkParallelCompress(b *testing.B) {
	workerCounts := []int{1, 2, 4, runtime.GOMAXPROCS(0)}
	src := corpus(16 << 20)
	params := chunkgo.DefaultParams()

	for _, workers := range workerCounts {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			p, err := chunkgo.NewParallelCompressor(workers)
			if err != nil {
				b.Fatal(err)
			}
			defer p.Close()

			b.ReportAllocs()
			b.SetBytes(int64(len(src)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := p.CompressBytes(params, src); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkParallelCompressGated measures the admission overhead of a
// resource controller with limits high enough to never block.
func BenchmarkParallelCompressGated(b *testing.B) {
	src := corpus(16 << 20)
	params := chunkgo.DefaultParams()

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:      1 << 30,
		MaxWorkers:            int64(runtime.GOMAXPROCS(0)),
		ThroughputBytesPerSec: 0,
	})

	p, err := chunkgo.NewParallelCompressor(runtime.GOMAXPROCS(0), chunkgo.WithResource(rc))
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.CompressBytes(params, src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStreamingCompress(b *testing.B) {
	src := corpus(16 << 20)

	s, err := chunkgo.NewStreamingCompressor(chunkgo.DefaultParams())
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()

	dst := make([]byte, s.OutputSizeLimit(len(src)))

	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.CompressFrom(dst, bytes.NewReader(src), len(src)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkStreamingUpdate feeds the stream in small unaligned pushes,
// exercising the internal chunk buffer rather than the zero-copy path.
func BenchmarkStreamingUpdate(b *testing.B) {
	src := corpus(1 << 20)

	s, err := chunkgo.NewStreamingCompressor(chunkgo.DefaultParams())
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()

	dst := make([]byte, s.OutputSizeLimit(len(src)))
	const push = 1000

	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Init(dst, len(src)); err != nil {
			b.Fatal(err)
		}
		for off := 0; off < len(src); off += push {
			end := off + push
			if end > len(src) {
				end = len(src)
			}
			if err := s.Update(src[off:end]); err != nil {
				b.Fatal(err)
			}
		}
		if _, err := s.Final(); err != nil {
			b.Fatal(err)
		}
	}
}
