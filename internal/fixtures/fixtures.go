// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package fixtures builds in-memory pairdb byte regions for this
// module's own tests and for cmd/kraken-gendb; binidx bytes come from
// binidx.Build, not from this package. It is the "writer path" referred
// to in SPEC_FULL.md's domain-stack additions: it checksums the pair
// array into the database header's reserved tail with go-farm, the way
// bpowers-bit's datafile package checksums its own records, purely as
// an internal consistency aid for round-trip tests.
package fixtures

import (
	"encoding/binary"

	"github.com/dgryski/go-farm"
)

// Pair is a single (canonical k-mer, taxon id) record.
type Pair struct {
	Key   uint64
	Value uint32
}

// PairdbHeaderSize returns header_size() for the given key_bits.
func PairdbHeaderSize(keyBits uint64) uint64 {
	return 72 + 2*(4+8*keyBits)
}

// KeyLen returns ceil(keyBits/8).
func KeyLen(keyBits uint64) uint64 {
	n := keyBits / 8
	if keyBits%8 != 0 {
		n++
	}
	return n
}

// BuildPairdbBytes serialises pairs (which the caller must have sorted
// by (bin key, key) already -- sorting is an upstream concern this
// package does not perform) into a pairdb-formatted byte slice.
func BuildPairdbBytes(keyBits uint64, pairs []Pair) []byte {
	keyLen := KeyLen(keyBits)
	const valLen = 4
	stride := keyLen + valLen
	hdrSize := PairdbHeaderSize(keyBits)

	buf := make([]byte, hdrSize+stride*uint64(len(pairs)))
	copy(buf[0:8], "JFLISTDN")
	binary.LittleEndian.PutUint64(buf[8:16], keyBits)
	binary.LittleEndian.PutUint64(buf[16:24], valLen)
	binary.LittleEndian.PutUint64(buf[48:56], uint64(len(pairs)))

	off := hdrSize
	for _, p := range pairs {
		for i := uint64(0); i < keyLen; i++ {
			buf[off+i] = byte(p.Key >> (8 * i))
		}
		binary.LittleEndian.PutUint32(buf[off+keyLen:off+keyLen+4], p.Value)
		off += stride
	}

	// Opportunistically checksum the pair array into the last 8 bytes
	// of the opaque header tail. Readers must treat this region as
	// opaque regardless -- see SPEC_FULL.md §3a.
	if hdrSize >= 64 {
		sum := farm.Hash64(buf[hdrSize:])
		binary.LittleEndian.PutUint64(buf[hdrSize-8:hdrSize], sum)
	}

	return buf
}

// PairArrayChecksum recomputes the farm hash a BuildPairdbBytes-style
// writer would have stored, for tests that want to assert the
// reserved-tail checksum round-trips.
func PairArrayChecksum(pairArray []byte) uint64 {
	return farm.Hash64(pairArray)
}
