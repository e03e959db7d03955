// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfilter

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/Perimera/chain/bloom"
	"github.com/Perimera/chain/viewkey"
)

// DefaultFalsePositiveRate is the false-positive rate used for block filters
// when the caller has no reason to choose otherwise.  At one percent, a
// scanning client fetches roughly one irrelevant block per hundred filtered
// blocks while the filter stays under ten bits per output.
const DefaultFalsePositiveRate = 0.01

// OutputEntry pairs a confidential output's producer-side key material with
// its recipient: everything needed to derive the output's view tag at block
// assembly time.
type OutputEntry struct {
	// RecipientKey is the recipient's public view key.
	RecipientKey *btcec.PublicKey

	// EphemeralSecret is the ephemeral secret key the transaction creator
	// generated for this output.  The matching public key travels with
	// the output itself.
	EphemeralSecret *btcec.PrivateKey

	// Commitment is the output's commitment material, mixed into the tag.
	Commitment []byte
}

// Builder accumulates view tags for a block under construction.  A Builder
// is owned by a single goroutine; tag derivation for many outputs may be
// parallelized by the caller with results funneled to the owner through
// AddTag, or sharded across bloom filters and merged before finalization.
//
// Finish converts the accumulated state into an immutable BlockFilter, after
// which the Builder refuses further insertion.
type Builder struct {
	filter   *bloom.Filter
	finished bool
}

// NewBuilder creates a builder sized for the expected number of outputs and
// target false-positive rate.  Zero expected outputs is valid and yields a
// minimal filter that matches nothing until something is inserted.
func NewBuilder(expectedOutputs uint32, fprate float64) *Builder {
	return &Builder{
		filter: bloom.NewFilter(expectedOutputs, fprate),
	}
}

// AddTag inserts a pre-derived view tag into the filter under construction.
func (b *Builder) AddTag(tag viewkey.Tag) error {
	if b.finished {
		return filterError(ErrBuilderFinished,
			"insertion into a finalized filter")
	}
	b.filter.Add(tag[:])
	return nil
}

// AddOutput derives the producer-side view tag for the given output and
// inserts it into the filter under construction.  Invalid key material fails
// the insertion without modifying the filter.
func (b *Builder) AddOutput(recipientKey *btcec.PublicKey,
	ephemeralSecret *btcec.PrivateKey, commitment []byte) error {

	if b.finished {
		return filterError(ErrBuilderFinished,
			"insertion into a finalized filter")
	}

	tag, err := viewkey.ProducerTag(ephemeralSecret, recipientKey, commitment)
	if err != nil {
		return err
	}
	b.filter.Add(tag[:])
	return nil
}

// Merge folds a privately built bloom filter into the filter under
// construction.  The shard must have been created with the same parameters
// as the builder's own filter.
func (b *Builder) Merge(shard *bloom.Filter) error {
	if b.finished {
		return filterError(ErrBuilderFinished,
			"merge into a finalized filter")
	}
	return b.filter.Merge(shard)
}

// Finish finalizes the builder into an immutable BlockFilter.  The builder
// must not be used for insertion afterwards; subsequent calls to AddTag,
// AddOutput, or Merge return ErrBuilderFinished.
func (b *Builder) Finish() *BlockFilter {
	b.finished = true
	return &BlockFilter{filter: b.filter}
}

// BuildFilter derives the view tag for every entry and returns the finalized
// filter for the block, sized to the number of entries at the given
// false-positive rate.  An empty entry list yields a valid filter that
// matches nothing.
func BuildFilter(entries []OutputEntry, fprate float64) (*BlockFilter, error) {
	b := NewBuilder(uint32(len(entries)), fprate)
	for i, entry := range entries {
		err := b.AddOutput(
			entry.RecipientKey, entry.EphemeralSecret, entry.Commitment,
		)
		if err != nil {
			log.Debugf("Output %d rejected during filter build: %v", i, err)
			return nil, err
		}
	}
	return b.Finish(), nil
}
