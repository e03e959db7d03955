// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package viewkey

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// TagViewFilter is the domain separation tag applied when compressing an
// ECDH shared secret into a view tag.
var TagViewFilter = []byte("Perimera/ViewFilterTag")

// deriveTag compresses the ECDH shared secret between the given secret
// scalar and public point into a view tag bound to the output commitment.
//
// Only the affine x coordinate of the shared point is retained (RFC 5903
// style, as in ECIES key agreement).  The raw shared point has algebraic
// structure, so it is never used directly: the tagged hash is what gives the
// tag its uniform distribution.
//
// NOTE: The underlying scalar multiplication is not constant time, so the
// execution time can leak information about the secret scalar through side
// channels.  Callers handling long-lived view secrets in hostile timing
// environments must provide their own hardening.
func deriveTag(secret *btcec.PrivateKey, point *btcec.PublicKey,
	commitment []byte) (Tag, error) {

	var tag Tag
	if err := validateSecret(secret); err != nil {
		return tag, err
	}
	if err := validatePubKey(point); err != nil {
		return tag, err
	}

	sharedX := secp.GenerateSharedSecret(secret, point)
	hash := chainhash.TaggedHash(TagViewFilter, sharedX, commitment)
	copy(tag[:], hash[:])

	return tag, nil
}

// ProducerTag derives the view tag for an output from the creator's side:
// the output's ephemeral secret key and the recipient's public view key.
// Block producers insert the resulting tag into the block's filter.
//
// For a recipient view key pair (b, B = b·G) and ephemeral pair (e, E = e·G),
// ProducerTag(e, B, c) equals RecipientTag(b, {E, c}) because e·B = b·E.
func ProducerTag(ephemeralSecret *btcec.PrivateKey,
	recipientKey *btcec.PublicKey, commitment []byte) (Tag, error) {

	return deriveTag(ephemeralSecret, recipientKey, commitment)
}

// RecipientTag derives the view tag for an output from the recipient's side:
// the private view key and the output's public ephemeral data.  Scanning
// clients test the resulting tag against the block's filter.
func RecipientTag(viewSecret *btcec.PrivateKey,
	desc *OutputDescriptor) (Tag, error) {

	if desc == nil {
		var tag Tag
		return tag, keyError(ErrInvalidPubKey, "nil output descriptor")
	}
	return deriveTag(viewSecret, desc.EphemeralKey, desc.Commitment)
}
