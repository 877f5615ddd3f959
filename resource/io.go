package resource

import (
	"context"
	"io"
)

// RateLimitedReader wraps an io.Reader with throughput limiting.
// Useful for throttling the input side of streaming compression.
type RateLimitedReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader creates a new RateLimitedReader. ctx bounds the
// waits of every subsequent Read.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{
		r:   r,
		rc:  rc,
		ctx: ctx,
	}
}

func (r *RateLimitedReader) Read(p []byte) (n int, err error) {
	// Budget for the full buffer up front; Read may return fewer
	// bytes than reserved.
	if err := r.rc.AcquireThroughput(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// RateLimitedWriter wraps an io.Writer with throughput limiting.
type RateLimitedWriter struct {
	w   io.Writer
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedWriter creates a new RateLimitedWriter. ctx bounds the
// waits of every subsequent Write.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{
		w:   w,
		rc:  rc,
		ctx: ctx,
	}
}

func (w *RateLimitedWriter) Write(p []byte) (n int, err error) {
	if err := w.rc.AcquireThroughput(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}
