// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package viewkey

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	// TagSize is the size of a view tag in bytes.
	TagSize = chainhash.HashSize

	// PrivKeyBytesLen is the length of a serialized private view key.
	PrivKeyBytesLen = 32
)

// Tag is a fixed-length pseudorandom value derived from a view key and an
// output's public ephemeral data.  It is the item inserted into and queried
// against per-block filters.
type Tag [TagSize]byte

// Bytes returns a copy of the tag as a byte slice.
func (t Tag) Bytes() []byte {
	c := make([]byte, TagSize)
	copy(c, t[:])
	return c
}

// String returns the tag as a hexadecimal string.
func (t Tag) String() string {
	return fmt.Sprintf("%x", t[:])
}

// OutputDescriptor holds the minimal public data of a confidential
// transaction output needed to derive its view tag: the ephemeral public key
// attached to the output and the output's commitment material.  Descriptors
// are owned by the surrounding transaction structures and only borrowed
// read-only here.
type OutputDescriptor struct {
	// EphemeralKey is the one-time public key the output creator attached
	// to the output.
	EphemeralKey *btcec.PublicKey

	// Commitment is the output's commitment or public key material.  It is
	// mixed into the tag so that two outputs sharing an ephemeral key
	// still derive distinct tags.
	Commitment []byte
}

// ParsePrivateKey parses a serialized private view key, rejecting scalars
// that are zero or not within the secp256k1 group order.
func ParsePrivateKey(serialized []byte) (*btcec.PrivateKey, error) {
	if len(serialized) != PrivKeyBytesLen {
		str := fmt.Sprintf("invalid private key length %d", len(serialized))
		return nil, keyError(ErrInvalidSecret, str)
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(serialized); overflow {
		str := "private key exceeds the group order"
		return nil, keyError(ErrInvalidSecret, str)
	}
	if scalar.IsZero() {
		str := "private key is zero"
		return nil, keyError(ErrInvalidSecret, str)
	}

	return secp.NewPrivateKey(&scalar), nil
}

// ParsePublicKey parses a serialized public view key, ensuring it represents
// a valid point on the secp256k1 curve.  Compressed, uncompressed, and hybrid
// encodings are accepted.
func ParsePublicKey(serialized []byte) (*btcec.PublicKey, error) {
	pubKey, err := btcec.ParsePubKey(serialized)
	if err != nil {
		str := fmt.Sprintf("invalid public key: %v", err)
		return nil, keyError(ErrInvalidPubKey, str)
	}
	return pubKey, nil
}

// validateSecret ensures a secret scalar is usable for tag derivation.
func validateSecret(priv *btcec.PrivateKey) error {
	if priv == nil {
		return keyError(ErrInvalidSecret, "nil private key")
	}
	if priv.Key.IsZero() {
		return keyError(ErrInvalidSecret, "private key is zero")
	}
	return nil
}

// validatePubKey ensures a public key is present and usable for tag
// derivation.  Keys constructed through ParsePublicKey or btcec are already
// known to be on the curve, so only the degenerate cases remain.
func validatePubKey(pub *btcec.PublicKey) error {
	if pub == nil {
		return keyError(ErrInvalidPubKey, "nil public key")
	}
	if !pub.IsOnCurve() {
		return keyError(ErrInvalidPubKey, "public key is not on the curve")
	}
	return nil
}
