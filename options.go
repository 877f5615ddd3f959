package chunkgo

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/chunkgo/compression"
	"github.com/hupe1980/chunkgo/resource"
)

type options struct {
	params      CompressionParams
	codec       compression.Codec
	logger      *Logger
	metrics     MetricsCollector
	progress    ProgressFunc
	concurrency int
	resource    *resource.Controller
}

// Option configures compressor and decompressor constructors.
//
// A single option set serves all constructors; options that do not
// apply to a given constructor are ignored by it.
type Option func(*options)

// WithCodec selects the compression backend.
//
// The archive format does not record the codec, so archives must be
// decompressed with the codec they were compressed with. If nil is
// passed, compression.Default is used.
func WithCodec(c compression.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = compression.Default
		}
		o.codec = c
	}
}

// WithParams sets the compression parameters used by the
// package-level CompressBytes helper. Constructors that take params
// directly, such as NewCompressor, ignore this option.
func WithParams(p CompressionParams) Option {
	return func(o *options) {
		o.params = p
	}
}

// WithProgress installs a callback invoked synchronously after each
// completed frame of a sequential compression, in frame order, with
// cumulative counts. Applies to Compressor only.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithConcurrency sets the number of goroutines a Decompressor uses
// to decompress frames. Values below 2 select the sequential path.
// Applies to Decompressor only.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithGOMAXPROCSConcurrency is shorthand for
// WithConcurrency(runtime.GOMAXPROCS(0)).
func WithGOMAXPROCSConcurrency() Option {
	return func(o *options) {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
}

// WithResource attaches a resource controller that gates job
// admission: concurrent job slots, output memory reservations, and
// input byte throughput. Applies to ParallelCompressor only. Pass nil
// to disable gating.
func WithResource(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &chunkgo.BasicMetricsCollector{}
//	c, _ := chunkgo.NewCompressor(chunkgo.DefaultParams(), chunkgo.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := chunkgo.NewJSONLogger(slog.LevelInfo)
//	c, _ := chunkgo.NewCompressor(chunkgo.DefaultParams(), chunkgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		params:  DefaultParams(),
		codec:   compression.Default,
		metrics: NoopMetricsCollector{},
		logger:  NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
