package priority

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrorType classifies a priority.Error the way common/errors.ErrorType
// classifies wind's HTTP-facing errors, scaled down to the two kinds
// SPEC_FULL.md §7 calls for.
type ErrorType uint8

const (
	// ErrInvalidArgument reports a constructor or setter argument outside
	// its documented range (allocation quantum <= 0, negative retention
	// size). No state changes.
	ErrInvalidArgument ErrorType = iota
	// ErrWriterFailure reports that a Writer.Write call returned an
	// error. Distribute wraps it and aborts; every node's invariants
	// remain valid because the re-enqueue step still ran.
	ErrWriterFailure
)

// Error is this package's error type: an underlying cause plus a
// classification, mirroring common/errors.Error's Err/Type/Unwrap shape.
type Error struct {
	Err  error
	Type ErrorType
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func newInvalidArgument(format string, args ...any) *Error {
	return &Error{Err: fmt.Errorf(format, args...), Type: ErrInvalidArgument}
}

// wrapWriterFailure attaches a stack trace to a Writer.Write failure
// before it propagates out of Distribute, so a connection-level log can
// point back at the failing write instead of just the scheduler frame
// that observed it.
func wrapWriterFailure(streamID uint32, err error) *Error {
	return &Error{
		Err:  pkgerrors.Wrapf(err, "priority: write failed for stream %d", streamID),
		Type: ErrWriterFailure,
	}
}
