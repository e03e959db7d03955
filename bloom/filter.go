// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bloom provides the probabilistic set underlying per-block view tag
// filters.
//
// Unlike the classic SPV bloom filter, which a client uploads to a remote
// peer with a randomized tweak, this filter is built by a block producer and
// matched locally by scanning clients.  Producer and consumer must therefore
// derive identical bit positions for identical items, so the index derivation
// is keyed with fixed, documented constants and carries no per-filter
// randomness.
//
// A filter under construction is exclusively owned by its builder and is not
// internally synchronized.  Once the owner stops inserting, the filter is
// safe for any number of concurrent readers.
package bloom

import (
	"math"

	"github.com/dchest/siphash"
)

// ln2Squared is simply the square of the natural log of 2.
const ln2Squared = math.Ln2 * math.Ln2

const (
	// MaxFilterSize is the maximum byte size of the filter bit array,
	// matching the cap applied to committed filters on the wire.
	MaxFilterSize = 256 * 1024

	// MaxHashFuncs is the maximum number of independent index derivation
	// functions a filter may use.
	MaxHashFuncs = 50
)

// The SipHash key used to hash items before deriving bit positions.  These
// constants are part of the filter's wire-level contract: every producer and
// every consumer must use the same key or membership tests silently fail.
const (
	sipKey0 uint64 = 0x506572696d657261
	sipKey1 uint64 = 0x566965775461672f
)

// minUint32 is a convenience function to return the minimum value of the two
// passed uint32 values.
func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// Filter is a fixed-capacity probabilistic set with no false negatives and a
// tunable false-positive rate.
type Filter struct {
	filter    []byte
	numBits   uint32 // m
	hashFuncs uint32 // k
	count     uint32 // n inserted so far
}

// NewFilter creates a new filter sized for the given expected item count and
// target false-positive rate.  The false-positive rate is the probability
// that an item never inserted tests positive, where 1.0 is "match
// everything"; rates outside (0, 1] are adjusted to the valid range.  An
// expected item count of zero is treated as one so that an empty block still
// yields a valid, minimal filter.
//
// Inserting more than the expected number of items does not fail; the
// effective false-positive rate simply degrades past the configured target.
func NewFilter(expectedItems uint32, fprate float64) *Filter {
	// Massage the inputs to sane values.
	if fprate > 1.0 {
		fprate = 1.0
	}
	if fprate < 1e-9 {
		fprate = 1e-9
	}
	if expectedItems == 0 {
		expectedItems = 1
	}

	// Calculate the size of the filter in bits for the given number of
	// elements and false positive rate, then clamp it to the maximum
	// filter size.
	//
	// Equivalent to m = ceil(-(n*ln(p)) / ln(2)^2).
	numBits := uint32(math.Ceil(-1 * float64(expectedItems) *
		math.Log(fprate) / ln2Squared))
	numBits = minUint32(numBits, MaxFilterSize*8)
	if numBits == 0 {
		numBits = 1
	}

	// Calculate the number of independent index derivation functions
	// based on the size of the filter calculated above and the number of
	// elements, then clamp it to the maximum allowed.
	//
	// Equivalent to k = round((m/n) * ln(2)).
	hashFuncs := uint32(math.Round(float64(numBits) /
		float64(expectedItems) * math.Ln2))
	if hashFuncs == 0 {
		hashFuncs = 1
	}
	hashFuncs = minUint32(hashFuncs, MaxHashFuncs)

	return &Filter{
		filter:    make([]byte, (numBits+7)/8),
		numBits:   numBits,
		hashFuncs: hashFuncs,
	}
}

// NewFilterFromBits reconstructs a filter from previously serialized
// parameters.  The bit array is copied.  The caller is responsible for
// validating the parameters against each other; decoding-level consistency
// checks live with the codec.
func NewFilterFromBits(bits []byte, numBits, hashFuncs, count uint32) *Filter {
	filter := make([]byte, len(bits))
	copy(filter, bits)
	return &Filter{
		filter:    filter,
		numBits:   numBits,
		hashFuncs: hashFuncs,
		count:     count,
	}
}

// hashIndices returns the bit offsets in the filter which correspond to the
// passed item.
//
// The item is hashed once with the fixed SipHash key and the 64-bit result is
// split into two 32-bit halves which are folded into the required number of
// positions as (lo + i*hi) mod m.  Deriving every position from one wide hash
// keeps insertion and matching cheap while remaining fully deterministic
// across producers and consumers.
func (bf *Filter) hashIndices(data []byte) (uint64, uint64) {
	sum := siphash.Hash(sipKey0, sipKey1, data)
	return uint64(uint32(sum)), uint64(uint32(sum >> 32))
}

// Add adds the passed item to the filter.  Insertion is idempotent: adding
// the same item again sets no new bits.
func (bf *Filter) Add(data []byte) {
	lo, hi := bf.hashIndices(data)
	for i := uint64(0); i < uint64(bf.hashFuncs); i++ {
		idx := (lo + i*hi) % uint64(bf.numBits)

		// The shifts and masks below are a faster equivalent of:
		//   arrayIndex := idx / 8    (idx >> 3)
		//   bitOffset := idx % 8     (idx & 7)
		//   filter[arrayIndex] |= 1<<bitOffset
		bf.filter[idx>>3] |= 1 << (idx & 7)
	}
	if bf.count < math.MaxUint32 {
		bf.count++
	}
}

// Matches returns true if the filter might contain the passed item and false
// if it definitely does not.
func (bf *Filter) Matches(data []byte) bool {
	lo, hi := bf.hashIndices(data)
	for i := uint64(0); i < uint64(bf.hashFuncs); i++ {
		idx := (lo + i*hi) % uint64(bf.numBits)
		if bf.filter[idx>>3]&(1<<(idx&7)) == 0 {
			return false
		}
	}
	return true
}

// Merge folds the contents of the passed filter into the receiver by ORing
// the bit arrays.  Both filters must have been created with identical
// parameters.  Merging supports sharded construction: workers insert into
// private filters and a single owner combines them, which is valid because
// insertion is idempotent and order-independent.
func (bf *Filter) Merge(other *Filter) error {
	if bf.numBits != other.numBits || bf.hashFuncs != other.hashFuncs {
		return ErrMismatchedFilters
	}
	for i, b := range other.filter {
		bf.filter[i] |= b
	}
	if sum := uint64(bf.count) + uint64(other.count); sum <= math.MaxUint32 {
		bf.count = uint32(sum)
	} else {
		bf.count = math.MaxUint32
	}
	return nil
}

// IsEmpty returns true if no bit of the filter is set, in which case no item
// can possibly match.  The bit array itself is inspected rather than the
// item counter, since the counter is advisory metadata on deserialized
// filters.
func (bf *Filter) IsEmpty() bool {
	for _, b := range bf.filter {
		if b != 0 {
			return false
		}
	}
	return true
}

// N returns the number of items inserted into the filter.
func (bf *Filter) N() uint32 {
	return bf.count
}

// K returns the number of independent index derivation functions.
func (bf *Filter) K() uint32 {
	return bf.hashFuncs
}

// M returns the length of the filter bit array in bits.
func (bf *Filter) M() uint32 {
	return bf.numBits
}

// Bits returns a copy of the raw filter bit array, packed 8 bits per byte
// with any unused high bits of the final byte zero.
func (bf *Filter) Bits() []byte {
	c := make([]byte, len(bf.filter))
	copy(c, bf.filter)
	return c
}
