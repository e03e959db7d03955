// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom_test

import (
	"bytes"
	"encoding/hex"
	"math/rand"
	"testing"

	"github.com/Perimera/chain/bloom"
)

// randomItems returns count pseudorandom 32-byte items from the passed
// source.  A fixed seed keeps the tests deterministic.
func randomItems(rng *rand.Rand, count int) [][]byte {
	items := make([][]byte, count)
	for i := range items {
		item := make([]byte, 32)
		rng.Read(item)
		items[i] = item
	}
	return items
}

// TestFilterInsert ensures inserting data into the filter causes that data to
// be matched and data that was not inserted is (for this fixed set) not.
func TestFilterInsert(t *testing.T) {
	var tests = []struct {
		hex    string
		insert bool
	}{
		{"99108ad8ed9bb6274d3980bab5a85c048f0950c8", true},
		{"19108ad8ed9bb6274d3980bab5a85c048f0950c8", false},
		{"b5a2c786d9ef4658287ced5914b37a1b4aa32eee", true},
		{"b9300670b4c5366e95b2699e8b18bc75e5f729c5", true},
	}

	f := bloom.NewFilter(3, 0.0001)

	for _, test := range tests {
		data, err := hex.DecodeString(test.hex)
		if err != nil {
			t.Fatalf("TestFilterInsert DecodeString failed: %v", err)
		}
		if test.insert {
			f.Add(data)
		}
	}

	for i, test := range tests {
		data, err := hex.DecodeString(test.hex)
		if err != nil {
			t.Fatalf("TestFilterInsert DecodeString failed: %v", err)
		}
		result := f.Matches(data)
		if test.insert && !result {
			t.Errorf("TestFilterInsert Matches test #%d failure: got %v want %v",
				i, result, test.insert)
		}
	}

	if f.N() != 3 {
		t.Errorf("TestFilterInsert N test failed: got %d want 3", f.N())
	}
}

// TestFilterNoFalseNegatives ensures every inserted item always tests
// positive, including well past the expected item count.
func TestFilterNoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := randomItems(rng, 2000)

	// Deliberately undersized: only 500 expected items for 2000 inserts.
	f := bloom.NewFilter(500, 0.01)
	for _, item := range items {
		f.Add(item)
	}
	for i, item := range items {
		if !f.Matches(item) {
			t.Fatalf("false negative for inserted item #%d", i)
		}
	}
}

// TestFilterFalsePositiveRate ensures the observed false-positive rate for a
// properly sized filter is statistically consistent with the configured
// target.
func TestFilterFalsePositiveRate(t *testing.T) {
	const (
		numInserted = 1000
		numProbes   = 20000
		fprate      = 0.01
	)

	rng := rand.New(rand.NewSource(2))
	f := bloom.NewFilter(numInserted, fprate)
	for _, item := range randomItems(rng, numInserted) {
		f.Add(item)
	}

	falsePositives := 0
	for _, probe := range randomItems(rng, numProbes) {
		if f.Matches(probe) {
			falsePositives++
		}
	}

	// Allow 2x headroom over the target rate to keep the statistical test
	// from flaking while still catching broken sizing or indexing.
	observed := float64(falsePositives) / float64(numProbes)
	if observed > 2*fprate {
		t.Fatalf("observed false positive rate %v exceeds target %v",
			observed, fprate)
	}
}

// TestFilterIdempotentInsert ensures repeated insertion of an identical item
// changes neither the bit array nor the results of unrelated queries.
func TestFilterIdempotentInsert(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	item := randomItems(rng, 1)[0]

	f := bloom.NewFilter(100, 0.01)
	f.Add(item)
	once := f.Bits()

	for i := 0; i < 50; i++ {
		f.Add(item)
	}

	if !bytes.Equal(once, f.Bits()) {
		t.Fatal("repeated insertion of an identical item changed the bit array")
	}
	if !f.Matches(item) {
		t.Fatal("inserted item no longer matches")
	}
}

// TestFilterIsEmpty ensures emptiness reflects the bit array contents, not
// the advisory item counter.
func TestFilterIsEmpty(t *testing.T) {
	f := bloom.NewFilter(100, 0.01)
	if !f.IsEmpty() {
		t.Fatal("fresh filter reports non-empty")
	}

	f.Add([]byte("item"))
	if f.IsEmpty() {
		t.Fatal("filter with an inserted item reports empty")
	}

	// A reconstructed filter whose recorded count disagrees with its bit
	// array must report emptiness from the bits alone.
	lying := bloom.NewFilterFromBits(f.Bits(), f.M(), f.K(), 0)
	if lying.IsEmpty() {
		t.Fatal("filter with set bits but zero count reports empty")
	}

	zeroed := bloom.NewFilterFromBits(
		make([]byte, len(f.Bits())), f.M(), f.K(), 5,
	)
	if !zeroed.IsEmpty() {
		t.Fatal("filter with no set bits but non-zero count reports non-empty")
	}
}

// TestFilterMerge ensures merged filters answer membership for the union of
// their contents and that parameter mismatches are rejected.
func TestFilterMerge(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	itemsA := randomItems(rng, 50)
	itemsB := randomItems(rng, 50)

	// Shard insertion across two filters with identical parameters, then
	// combine.
	fA := bloom.NewFilter(100, 0.01)
	fB := bloom.NewFilter(100, 0.01)
	for _, item := range itemsA {
		fA.Add(item)
	}
	for _, item := range itemsB {
		fB.Add(item)
	}

	if err := fA.Merge(fB); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	for i, item := range append(itemsA, itemsB...) {
		if !fA.Matches(item) {
			t.Fatalf("merged filter missing item #%d", i)
		}
	}
	if fA.N() != 100 {
		t.Fatalf("merged item count: got %d want 100", fA.N())
	}

	// The merged result must equal single-filter insertion bit for bit.
	fAll := bloom.NewFilter(100, 0.01)
	for _, item := range append(itemsA, itemsB...) {
		fAll.Add(item)
	}
	if !bytes.Equal(fA.Bits(), fAll.Bits()) {
		t.Fatal("sharded construction diverged from sequential construction")
	}

	// Differently sized filters must refuse to merge.
	fOther := bloom.NewFilter(5000, 0.001)
	if err := fA.Merge(fOther); err != bloom.ErrMismatchedFilters {
		t.Fatalf("Merge mismatch: got %v want %v", err,
			bloom.ErrMismatchedFilters)
	}
}

// TestFilterSizing ensures the m and k parameters follow the standard bloom
// filter relations and that degenerate inputs are clamped to valid values.
func TestFilterSizing(t *testing.T) {
	tests := []struct {
		name          string
		expectedItems uint32
		fprate        float64
		wantM         uint32
		wantK         uint32
	}{{
		// m = ceil(100 * ln(100) / ln(2)^2) = ceil(958.51) = 959
		// k = round(959/100 * ln(2)) = 7
		name:          "100 items at 1%",
		expectedItems: 100,
		fprate:        0.01,
		wantM:         959,
		wantK:         7,
	}, {
		// Sized as a single item: m = ceil(9.59) = 10,
		// k = round(10 * ln(2)) = 7.
		name:          "zero items clamps to one",
		expectedItems: 0,
		fprate:        0.01,
		wantM:         10,
		wantK:         7,
	}, {
		name:          "match everything rate clamps to minimum size",
		expectedItems: 10,
		fprate:        2.0,
		wantM:         1,
		wantK:         1,
	}}

	for _, test := range tests {
		f := bloom.NewFilter(test.expectedItems, test.fprate)
		if f.M() != test.wantM {
			t.Errorf("%s: M got %d want %d", test.name, f.M(), test.wantM)
		}
		if f.K() != test.wantK {
			t.Errorf("%s: K got %d want %d", test.name, f.K(), test.wantK)
		}
		if len(f.Bits()) != int((f.M()+7)/8) {
			t.Errorf("%s: bit array length %d inconsistent with M %d",
				test.name, len(f.Bits()), f.M())
		}
	}
}

// TestFilterLarge ensures a filter sized far beyond the maximum is clamped to
// the maximum filter size.
func TestFilterLarge(t *testing.T) {
	f := bloom.NewFilter(100000000, 0.01)
	if len(f.Bits()) > bloom.MaxFilterSize {
		t.Fatalf("TestFilterLarge test failed: %d > %d", len(f.Bits()),
			bloom.MaxFilterSize)
	}
}
