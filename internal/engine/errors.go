package engine

import "errors"

var (
	// ErrInvalidParameter reports a bad block size, name length, hash
	// length, or slicer kind.
	ErrInvalidParameter = errors.New("engine: invalid parameter")

	// ErrMissingFragment reports a fragment named by the keyfile that
	// could not be located.
	ErrMissingFragment = errors.New("engine: missing fragment")

	// ErrSizeMismatch reports a fragment whose byte count differs from
	// the keyfile record.
	ErrSizeMismatch = errors.New("engine: fragment size mismatch")

	// ErrIntegrityMismatch reports a fragment (or the reconstructed
	// stream) whose digest differs from the keyfile record.
	ErrIntegrityMismatch = errors.New("engine: integrity mismatch")

	// ErrLengthMismatch reports a reconstructed stream whose total length
	// differs from the recorded original size.
	ErrLengthMismatch = errors.New("engine: reconstructed length mismatch")
)
