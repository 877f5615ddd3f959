package chunkgo

import (
	"github.com/hupe1980/chunkgo/errdefs"
)

// The package-level sentinels alias errdefs so callers can classify
// failures with errors.Is without importing a second package.
var (
	// ErrInvalidArgs is returned for malformed caller input.
	ErrInvalidArgs = errdefs.ErrInvalidArgs

	// ErrBufferTooSmall is returned when a caller-supplied destination
	// cannot hold the result.
	ErrBufferTooSmall = errdefs.ErrBufferTooSmall

	// ErrBadState is returned when an operation is invoked in the
	// wrong lifecycle state, such as Update before Init or any call
	// after Close.
	ErrBadState = errdefs.ErrBadState

	// ErrDataIntegrity is returned when an archive fails validation:
	// header corruption, seek table inconsistencies, or frames that do
	// not decode to their recorded sizes.
	ErrDataIntegrity = errdefs.ErrDataIntegrity

	// ErrInternal is returned for unexpected failures inside the
	// compression backend.
	ErrInternal = errdefs.ErrInternal
)
