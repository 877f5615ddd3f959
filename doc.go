// Package chunkgo implements seekable chunked compression archives.
//
// An archive splits its input into fixed-size frames, compresses each
// frame independently and records where every frame lives in a CRC32
// protected seek table at the front of the file. A reader holding
// only the parsed table can fetch and decompress any frame without
// touching the rest of the archive, which is what makes large
// compressed blobs random-access.
//
// # Quick Start
//
// One-shot round trip with default parameters (zstd, 32 KiB frames):
//
//	archive, err := chunkgo.CompressBytes(data)
//	if err != nil {
//	    panic(err)
//	}
//	back, err := chunkgo.DecompressBytes(archive)
//
// Tuned compression:
//
//	params := chunkgo.DefaultParams()
//	params.Level = 3
//	params.ChunkSize = 128 << 10
//	params.FrameChecksum = true
//
//	c, err := chunkgo.NewCompressor(params)
//	if err != nil {
//	    panic(err)
//	}
//	defer c.Close()
//	archive, err := c.CompressBytes(data)
//
// # Random Access
//
// Parse the seek table once, then decompress only the frames you
// need:
//
//	table, _ := chunkgo.ReadSeekTable(archive)
//	d, _ := chunkgo.NewDecompressor()
//	defer d.Close()
//
//	idx, _ := table.EntryForDecompressedOffset(1 << 20)
//	e := table.Entries()[idx]
//	frame := make([]byte, e.DecompressedSize)
//	d.DecompressFrame(frame, archive[e.CompressedOffset:], table, idx)
//
// # Streaming
//
// StreamingCompressor consumes input incrementally (pipe, socket,
// anything), buffering at most one frame, as long as the total length
// is known up front:
//
//	s, _ := chunkgo.NewStreamingCompressor(chunkgo.DefaultParams())
//	defer s.Close()
//
//	dst := make([]byte, s.OutputSizeLimit(streamLen))
//	n, err := s.CompressFrom(dst, conn, streamLen)
//	archive := dst[:n]
//
// # Parallel Compression
//
// ParallelCompressor spreads frames of one or many concurrent jobs
// across a fixed worker pool:
//
//	p, _ := chunkgo.NewParallelCompressor(runtime.GOMAXPROCS(0))
//	defer p.Close()
//	archive, err := p.Compress(ctx, chunkgo.DefaultParams(), data)
//
// # Key Features
//
//   - Frame-level random access through a validated seek table
//   - Pluggable codecs: zstd (default), lz4, s2
//   - Optional per-frame embedded checksums (zstd)
//   - Single-shot, streaming and parallel compression paths
//   - Optional resource governance for parallel jobs (worker slots,
//     memory budget, throughput)
//   - Structured logging (log/slog) and pluggable metrics
//
// The compressed archive does not record which codec produced it;
// readers must be configured with the same codec as the writer.
// Archives produced with the defaults round-trip with the defaults.
package chunkgo
