// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfilter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Perimera/chain/bloom"
	"github.com/Perimera/chain/viewkey"
)

// Serialized filter layout, fixed once and never changed:
//
//	item_count    : uint32, little endian (n)
//	hash_fn_count : uint32, little endian (k)
//	bit_array_len : uint32, little endian (m, in bits)
//	bit_array     : ceil(m/8) bytes, bit i stored at byte i/8, bit i%8
//
// k is stored explicitly rather than re-derived from m and n on decode so
// that no floating point rounding can diverge between implementations.  The
// unused high bits of the final bit array byte must be zero; decoding is
// strict and rejects anything else.
const headerSize = 12

// BlockFilter is the finalized, immutable view tag filter for a single
// block.  It is created once by the block producer, persisted as chain data,
// and safely shared read-only by any number of concurrent queriers.
//
// A BlockFilter can only be obtained by finalizing a Builder or by decoding
// serialized filter bytes, which is what makes the in-progress and finalized
// states distinct types.
type BlockFilter struct {
	filter *bloom.Filter
}

// N returns the number of tags inserted into the filter.
func (f *BlockFilter) N() uint32 {
	return f.filter.N()
}

// K returns the number of independent index derivation functions.
func (f *BlockFilter) K() uint32 {
	return f.filter.K()
}

// M returns the length of the filter bit array in bits.
func (f *BlockFilter) M() uint32 {
	return f.filter.M()
}

// MatchTag returns true if the filter might contain the passed tag and false
// if it definitely does not.
//
// This function is safe for concurrent access.
func (f *BlockFilter) MatchTag(tag viewkey.Tag) bool {
	return f.filter.Matches(tag[:])
}

// Serialize encodes the filter to w using the fixed byte layout documented
// above.
func (f *BlockFilter) Serialize(w io.Writer) error {
	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], f.filter.N())
	binary.LittleEndian.PutUint32(header[4:8], f.filter.K())
	binary.LittleEndian.PutUint32(header[8:12], f.filter.M())

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(f.filter.Bits())
	return err
}

// Bytes returns the serialized filter using the fixed byte layout documented
// above.
func (f *BlockFilter) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize + int((f.filter.M()+7)/8))

	// Writes to a bytes.Buffer cannot fail.
	_ = f.Serialize(&buf)
	return buf.Bytes()
}

// Deserialize decodes a filter from r, validating the recorded parameters
// against each other.  All failures are reported as a FilterError and leave
// the caller free to fall back to a full scan of the block.
func Deserialize(r io.Reader) (*BlockFilter, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		str := fmt.Sprintf("filter shorter than %d header bytes", headerSize)
		return nil, filterError(ErrFilterTooShort, str)
	}

	itemCount := binary.LittleEndian.Uint32(header[0:4])
	hashFuncs := binary.LittleEndian.Uint32(header[4:8])
	numBits := binary.LittleEndian.Uint32(header[8:12])

	if numBits == 0 || numBits > bloom.MaxFilterSize*8 {
		str := fmt.Sprintf("bit array length %d outside valid range [1, %d]",
			numBits, bloom.MaxFilterSize*8)
		return nil, filterError(ErrBadParams, str)
	}
	if hashFuncs == 0 || hashFuncs > bloom.MaxHashFuncs {
		str := fmt.Sprintf("hash function count %d outside valid range "+
			"[1, %d]", hashFuncs, bloom.MaxHashFuncs)
		return nil, filterError(ErrBadParams, str)
	}

	bits := make([]byte, (numBits+7)/8)
	if _, err := io.ReadFull(r, bits); err != nil {
		str := fmt.Sprintf("bit array truncated: want %d bytes", len(bits))
		return nil, filterError(ErrFilterTooShort, str)
	}

	// Unused high bits of the final byte must be zero.
	if rem := numBits % 8; rem != 0 {
		if bits[len(bits)-1]&(0xff<<rem) != 0 {
			str := "non-zero padding bits in final bit array byte"
			return nil, filterError(ErrNonZeroPadding, str)
		}
	}

	filter := bloom.NewFilterFromBits(bits, numBits, hashFuncs, itemCount)
	return &BlockFilter{filter: filter}, nil
}

// FromBytes decodes a filter from the passed bytes, additionally rejecting
// trailing data beyond the declared bit array length.
func FromBytes(serialized []byte) (*BlockFilter, error) {
	r := bytes.NewReader(serialized)
	f, err := Deserialize(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		str := fmt.Sprintf("%d trailing bytes beyond declared bit array "+
			"length", r.Len())
		return nil, filterError(ErrBitLenMismatch, str)
	}
	return f, nil
}
