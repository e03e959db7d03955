// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfilter

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/Perimera/chain/viewkey"
)

// MatchOutputs derives the recipient-side view tag for every candidate
// output and returns the indices of candidates that possibly belong to the
// holder of the private view key.  Outputs whose index is absent are
// certainly irrelevant and need not be fetched or decrypted.
//
// The filter is only read, so many goroutines may call MatchOutputs against
// the same decoded filter concurrently, each with their own candidate slice.
func MatchOutputs(f *BlockFilter, viewSecret *btcec.PrivateKey,
	candidates []viewkey.OutputDescriptor) ([]int, error) {

	// A filter with no bits set cannot match, so skip the per-candidate
	// derivation work entirely.  The bit array is checked directly since
	// the item count in a decoded filter is untrusted metadata.
	if f.filter.IsEmpty() {
		return nil, nil
	}

	var matched []int
	for i := range candidates {
		tag, err := viewkey.RecipientTag(viewSecret, &candidates[i])
		if err != nil {
			return nil, err
		}
		if f.MatchTag(tag) {
			matched = append(matched, i)
		}
	}

	log.Debugf("Matched %d of %d candidate outputs", len(matched),
		len(candidates))

	return matched, nil
}
