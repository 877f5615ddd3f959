package chunkgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    compressCounter prometheus.Counter
//	    ratioHistogram  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCompress(frames int, in, out int64, d time.Duration, err error) {
//	    p.compressCounter.Inc()
//	    // ... record ratio, duration, error state, etc.
//	}
type MetricsCollector interface {
	// RecordCompress is called after each compression job. frames is
	// the number of frames produced, in/out are the input and output
	// byte counts, duration is the total time taken, err is nil on
	// success.
	RecordCompress(frames int, in, out int64, duration time.Duration, err error)

	// RecordDecompress is called after each decompression job, whole
	// archive or single frame.
	RecordDecompress(frames int, in, out int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompress(int, int64, int64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordDecompress(int, int64, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CompressCount        atomic.Int64
	CompressErrors       atomic.Int64
	CompressFrames       atomic.Int64
	CompressInBytes      atomic.Int64
	CompressOutBytes     atomic.Int64
	CompressTotalNanos   atomic.Int64
	DecompressCount      atomic.Int64
	DecompressErrors     atomic.Int64
	DecompressFrames     atomic.Int64
	DecompressInBytes    atomic.Int64
	DecompressOutBytes   atomic.Int64
	DecompressTotalNanos atomic.Int64
}

// RecordCompress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompress(frames int, in, out int64, duration time.Duration, err error) {
	b.CompressCount.Add(1)
	b.CompressTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CompressErrors.Add(1)
		return
	}
	b.CompressFrames.Add(int64(frames))
	b.CompressInBytes.Add(in)
	b.CompressOutBytes.Add(out)
}

// RecordDecompress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecompress(frames int, in, out int64, duration time.Duration, err error) {
	b.DecompressCount.Add(1)
	b.DecompressTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DecompressErrors.Add(1)
		return
	}
	b.DecompressFrames.Add(int64(frames))
	b.DecompressInBytes.Add(in)
	b.DecompressOutBytes.Add(out)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CompressCount:      b.CompressCount.Load(),
		CompressErrors:     b.CompressErrors.Load(),
		CompressFrames:     b.CompressFrames.Load(),
		CompressInBytes:    b.CompressInBytes.Load(),
		CompressOutBytes:   b.CompressOutBytes.Load(),
		CompressAvgNanos:   avgNanos(&b.CompressTotalNanos, &b.CompressCount),
		DecompressCount:    b.DecompressCount.Load(),
		DecompressErrors:   b.DecompressErrors.Load(),
		DecompressFrames:   b.DecompressFrames.Load(),
		DecompressInBytes:  b.DecompressInBytes.Load(),
		DecompressOutBytes: b.DecompressOutBytes.Load(),
		DecompressAvgNanos: avgNanos(&b.DecompressTotalNanos, &b.DecompressCount),
	}
}

func avgNanos(total, count *atomic.Int64) int64 {
	c := count.Load()
	if c == 0 {
		return 0
	}
	return total.Load() / c
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CompressCount      int64
	CompressErrors     int64
	CompressFrames     int64
	CompressInBytes    int64
	CompressOutBytes   int64
	CompressAvgNanos   int64
	DecompressCount    int64
	DecompressErrors   int64
	DecompressFrames   int64
	DecompressInBytes  int64
	DecompressOutBytes int64
	DecompressAvgNanos int64
}
