// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package viewkey

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind
// when determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific KeyError.
const (
	// ErrInvalidSecret indicates a secret scalar is zero, overflows the
	// group order, or is otherwise not usable for tag derivation.
	ErrInvalidSecret = ErrorKind("ErrInvalidSecret")

	// ErrInvalidPubKey indicates a public key is missing, malformed, or
	// does not represent a valid point on the secp256k1 curve.
	ErrInvalidPubKey = ErrorKind("ErrInvalidPubKey")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// KeyError identifies an error related to view key material.  It has full
// support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type KeyError struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e KeyError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e KeyError) Unwrap() error {
	return e.Err
}

// keyError creates a KeyError given a set of arguments.
func keyError(kind ErrorKind, desc string) KeyError {
	return KeyError{Err: kind, Description: desc}
}
