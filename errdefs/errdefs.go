// Package errdefs defines the error taxonomy shared by all chunkgo
// packages.
//
// Errors are classified by sentinel values that callers test with
// errors.Is (or the Is* helpers below). Packages wrap the sentinels
// with fmt.Errorf("...: %w", ...) to attach context, so a returned
// error carries both its class and a human-readable cause chain.
package errdefs

import "errors"

var (
	// ErrInvalidArgs indicates malformed caller input: nil or short
	// buffers, out-of-range sizes, or invalid parameters.
	ErrInvalidArgs = errors.New("invalid arguments")

	// ErrBufferTooSmall indicates a caller-supplied destination buffer
	// that cannot hold the result.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrBadState indicates an operation invoked in the wrong
	// lifecycle state, such as adding entries after finalization or
	// compressing on a closed pool.
	ErrBadState = errors.New("bad state")

	// ErrDataIntegrity indicates corrupted or foreign data: checksum
	// mismatches, unrecognized magic, or seek table inconsistencies.
	ErrDataIntegrity = errors.New("data integrity failure")

	// ErrInternal indicates an unexpected failure inside the
	// compression backend.
	ErrInternal = errors.New("internal error")
)

// IsInvalidArgs reports whether err is classified as invalid arguments.
func IsInvalidArgs(err error) bool { return errors.Is(err, ErrInvalidArgs) }

// IsBufferTooSmall reports whether err is classified as an undersized
// destination buffer.
func IsBufferTooSmall(err error) bool { return errors.Is(err, ErrBufferTooSmall) }

// IsBadState reports whether err is classified as a lifecycle
// violation.
func IsBadState(err error) bool { return errors.Is(err, ErrBadState) }

// IsDataIntegrity reports whether err is classified as a data
// integrity failure.
func IsDataIntegrity(err error) bool { return errors.Is(err, ErrDataIntegrity) }

// IsInternal reports whether err is classified as an internal backend
// failure.
func IsInternal(err error) bool { return errors.Is(err, ErrInternal) }
