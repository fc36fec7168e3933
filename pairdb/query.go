// Copyright 2013-2015, Derrick Wood <dwood@cs.jhu.edu>
// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package pairdb

import (
	"github.com/BenLangmead/kraken/bitkmer"
)

// linearScanThreshold is the largest window size (in pairs) that the
// hybrid search scans linearly; larger windows are narrowed by binary
// search first. A tuning constant, not a correctness parameter.
const linearScanThreshold = 16

// QueryState carries the amortised query's cached bin across
// successive calls on k-mers drawn from the same read. It stores the
// cached range as [lo, hiPlus1) rather than the more natural [lo, hi]
// so that the zero value ([0, 0), i.e. empty) is itself a valid
// initial state that forces a full lookup on the first call -- a
// plain int64 hi would zero-value to 0, making [0,0] a seemingly
// valid one-element range instead of an empty one.
type QueryState struct {
	lastBinKey uint64
	lo         int64
	hiPlus1    int64
}

// valid reports whether the cached range holds at least one position.
func (s *QueryState) valid() bool {
	return s.lo < s.hiPlus1
}

// Query looks up kmer (assumed already canonical) and returns its
// taxon id and whether it was found. BindIndex must have been called
// first.
//
// Query performs no I/O, no allocation, and cannot fail: a missing
// k-mer is reported as (0, false), never an error.
func (db *Database) Query(kmer uint64) (uint32, bool) {
	b := bitkmer.BinKey(kmer, db.k, db.idx.Nt(), db.idx.XORMask(bitkmer.Index2XORMask))
	lo := int64(db.idx.At(b))
	hi := int64(db.idx.At(b+1)) - 1
	return db.search(kmer, lo, hi)
}

// QueryWithState is Query's amortised form: when consecutive calls
// share a minimizer (as consecutive k-mers along a read usually do),
// it reuses state's cached bin instead of recomputing the bin key and
// re-reading the offset table.
//
// This is a flat two-attempt loop -- attempt 1 against the cached bin,
// attempt 2 against a freshly computed one -- rather than the single
// level of recursion the original C++ implementation used, per the
// design notes' "recursive retry" re-expression.
func (db *Database) QueryWithState(kmer uint64, state *QueryState) (uint32, bool) {
	if state.valid() {
		if v, ok := db.search(kmer, state.lo, state.hiPlus1-1); ok {
			return v, true
		}
	}

	b := bitkmer.BinKey(kmer, db.k, db.idx.Nt(), db.idx.XORMask(bitkmer.Index2XORMask))
	if state.valid() && b == state.lastBinKey {
		// already searched this exact bin above and missed; the
		// k-mer simply isn't present.
		return 0, false
	}

	lo := int64(db.idx.At(b))
	hi := int64(db.idx.At(b+1)) - 1
	state.lastBinKey = b
	state.lo = lo
	state.hiPlus1 = hi + 1
	return db.search(kmer, lo, hi)
}

// search performs the hybrid binary+linear search for kmer within pair
// positions [lo, hi] (inclusive), both ends expressed in pair-array
// index units, not byte offsets.
func (db *Database) search(kmer uint64, lo, hi int64) (uint32, bool) {
	// a uint64 shift of 64 (key_bits==64, i.e. k==32) is well-defined in
	// Go and yields 0, so this also produces the correct all-ones mask.
	mask := uint64(1)<<db.keyBits - 1

	for lo+linearScanThreshold <= hi {
		mid := lo + (hi-lo)/2
		k := db.keyAt(mid) & mask
		switch {
		case kmer > k:
			lo = mid + 1
		case kmer < k:
			hi = mid - 1
		default:
			return db.valueAt(mid), true
		}
	}

	for mid := lo; mid <= hi; mid++ {
		if db.keyAt(mid)&mask == kmer {
			return db.valueAt(mid), true
		}
	}
	return 0, false
}

// keyAt loads the key_len bytes of the pair at position p as a
// little-endian uint64, unmasked.
func (db *Database) keyAt(p int64) uint64 {
	off := db.pairOff + uint64(p)*db.stride
	b := db.data[off : off+db.keyLen]
	var kmer uint64
	for i := range b {
		kmer |= uint64(b[i]) << (8 * uint(i))
	}
	return kmer
}

// valueAt loads the 4-byte taxon id of the pair at position p.
func (db *Database) valueAt(p int64) uint32 {
	off := db.pairOff + uint64(p)*db.stride + db.keyLen
	b := db.data[off : off+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
