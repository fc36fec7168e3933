// Copyright 2013-2015, Derrick Wood <dwood@cs.jhu.edu>
// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bitkmer

// Index2XORMask scrambles the lexicographic order of minimizers for
// better bin balance in v2 indices. v1 indices pass a xorMask of 0.
const Index2XORMask = uint64(0xe37e28c4271b5a2d)

// BinKey returns the minimizer of a k-mer of length k: the minimum,
// under an xorMask-scrambled canonical order, of all k-nt+1
// length-nt substrings of kmer.
//
// nt must be in [1, 15] -- the index header's nt byte is a single byte,
// and 1<<(2*nt) must fit comfortably in a uint64 shift without the
// 32-bit overflow the original C++ mask computation was vulnerable to
// for nt=16: this implementation always shifts a uint64 literal.
func BinKey(kmer uint64, k uint8, nt uint8, xorMask uint64) uint64 {
	mask := (uint64(1) << (uint(nt) << 1)) - 1
	effectiveXor := xorMask & mask

	minBinKey := ^uint64(0)
	n := int(k) - int(nt) + 1
	for i := 0; i < n; i++ {
		sub := kmer & mask
		temp := effectiveXor ^ Canonical(sub, nt)
		if temp < minBinKey {
			minBinKey = temp
		}
		kmer >>= 2
	}
	return minBinKey
}
