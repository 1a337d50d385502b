package core

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfxref/internal/filters"
)

var (
	// ErrMalformedXRef reports an unexpected token inside a cross-reference
	// section or its trailer.
	ErrMalformedXRef = errors.New("malformed cross-reference section")

	// ErrCircularXRef reports a /Prev chain that returns to an offset it
	// already visited.
	ErrCircularXRef = errors.New("circular cross-reference chain")

	// ErrUndefinedObject reports a reference to an object number that the
	// resolved cross-reference table does not define as in use.
	ErrUndefinedObject = errors.New("undefined object")

	// ErrIO marks failures of the underlying byte source.
	ErrIO = errors.New("i/o failure")

	// ErrUnsupportedFilter reports a stream filter this package cannot decode.
	ErrUnsupportedFilter = errors.New("unsupported filter")

	ErrUnsupportedPredictor       = filters.ErrUnsupportedPredictor
	ErrUnsupportedFilterParameter = filters.ErrUnsupportedFilterParameter
)

// XRefError describes a failure to read the cross-reference data starting at
// Offset. Kind is ErrMalformedXRef or ErrCircularXRef.
type XRefError struct {
	Offset int64
	Kind   error
	Err    error
}

func (e *XRefError) Error() string {
	msg := fmt.Sprintf("%v at offset %d", e.Kind, e.Offset)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *XRefError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// malformed wraps err as an ErrMalformedXRef at offset. I/O failures are
// passed through unchanged so that callers can tell them apart.
func malformed(offset int64, err error) error {
	if errors.Is(err, ErrIO) {
		return err
	}
	return &XRefError{Offset: offset, Kind: ErrMalformedXRef, Err: err}
}

// IOError wraps an error returned by the byte source.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrIO, e.Op, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
