// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfilter

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind
// when determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific FilterError.
const (
	// ErrFilterTooShort signifies serialized filter bytes were truncated
	// before the declared contents could be read.
	ErrFilterTooShort = ErrorKind("ErrFilterTooShort")

	// ErrBitLenMismatch signifies the declared bit array length is
	// inconsistent with the number of bytes present.
	ErrBitLenMismatch = ErrorKind("ErrBitLenMismatch")

	// ErrNonZeroPadding signifies the unused high bits of the final bit
	// array byte were not zero.
	ErrNonZeroPadding = ErrorKind("ErrNonZeroPadding")

	// ErrBadParams signifies the recorded filter parameters are outside
	// the valid range, such as a zero bit array length or a hash function
	// count beyond the supported maximum.
	ErrBadParams = ErrorKind("ErrBadParams")

	// ErrBuilderFinished signifies an insertion was attempted on a
	// builder that was already finalized.
	ErrBuilderFinished = ErrorKind("ErrBuilderFinished")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// FilterError identifies a block filter related error.  It has full support
// for errors.Is and errors.As, so the caller can ascertain the specific
// reason for the error by checking the underlying error.
//
// Every decoding failure is recoverable: a caller receiving a FilterError
// can fall back to a full block scan rather than treating the block as
// invalid.
type FilterError struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e FilterError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e FilterError) Unwrap() error {
	return e.Err
}

// filterError creates a FilterError given a set of arguments.
func filterError(kind ErrorKind, desc string) FilterError {
	return FilterError{Err: kind, Description: desc}
}
