// Copyright 2013-2015, Derrick Wood <dwood@cs.jhu.edu>
// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package bitkmer implements bit-exact, allocation-free primitives over
// 2-bit-packed DNA k-mers: string<->integer conversion, reverse
// complement, canonical form, and minimizer ("bin key") extraction.
//
// A k-mer of length n (1 <= n <= 32) lives in the low 2n bits of a
// uint64, with the 5' base in the most significant of those bits.
// Every function here is pure and side-effect-free; on-disk ordering in
// the pairdb/binidx packages depends on these being bit-exactly
// reproducible.
package bitkmer

import (
	"errors"
	"strings"
)

// ErrInvalidBase is returned by Encode when a string contains a byte
// outside {A,C,G,T,a,c,g,t}.
var ErrInvalidBase = errors.New("bitkmer: invalid base")

// MaxK is the largest k-mer length representable in a uint64 under this
// package's 2-bits-per-base packing.
const MaxK = 32

const bases = "ACGT"

// code maps an ASCII base to its 2-bit encoding; index by byte value.
var code [256]int8

func init() {
	for i := range code {
		code[i] = -1
	}
	code['A'], code['a'] = 0, 0
	code['C'], code['c'] = 1, 1
	code['G'], code['g'] = 2, 2
	code['T'], code['t'] = 3, 3
}

// Encode packs s (length 1..32, bytes in {A,C,G,T,a,c,g,t}) into the low
// 2*len(s) bits of a uint64, leftmost base most significant.
func Encode(s string) (uint64, error) {
	if len(s) == 0 || len(s) > MaxK {
		return 0, ErrInvalidBase
	}
	var kmer uint64
	for i := 0; i < len(s); i++ {
		c := code[s[i]]
		if c < 0 {
			return 0, ErrInvalidBase
		}
		kmer = (kmer << 2) | uint64(c)
	}
	return kmer, nil
}

// Decode is the inverse of Encode for a k-mer of length n: it returns
// the uppercase base string packed in the low 2n bits of kmer.
func Decode(kmer uint64, n uint8) string {
	var sb strings.Builder
	sb.Grow(int(n))
	for i := int(n) - 1; i >= 0; i-- {
		b := (kmer >> uint(2*i)) & 0x3
		sb.WriteByte(bases[b])
	}
	return sb.String()
}
