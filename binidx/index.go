// Copyright 2013-2015, Derrick Wood <dwood@cs.jhu.edu>
// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package binidx implements the minimizer-bin offset index: a sparse,
// read-only array of (4^nt)+1 monotone offsets into a pairdb pair
// array, keyed by minimizer bin key, plus the builder that produces
// that array from an already-sorted pair array.
package binidx

import (
	"encoding/binary"
	"fmt"
)

// Version distinguishes the minimizer XOR-scrambling used to sort the
// bound pair array: V1 indices use no scrambling, V2 XOR the
// minimizer with bitkmer.Index2XORMask for better bin balance.
type Version uint8

const (
	// V1 is the unscrambled minimizer order ("KRAKIDX").
	V1 Version = iota + 1
	// V2 is the XOR-scrambled minimizer order ("KRAKIX2").
	V2
)

const (
	magicV1 = "KRAKIDX"
	magicV2 = "KRAKIX2"

	magicLen  = 7
	ntLen     = 1
	headerLen = magicLen + ntLen
)

// uint64Slice is a read-only view of a byte slice interpreted as a
// little-endian []uint64, in the style of bpowers-bit's indexfile
// uint64Slice.
type uint64Slice []byte

func (s uint64Slice) get(i uint64) uint64 {
	return binary.LittleEndian.Uint64(s[i*8 : i*8+8])
}

func (s uint64Slice) len() uint64 {
	return uint64(len(s)) / 8
}

// Index is a non-owning, read-only view over a binidx-formatted byte
// region: a header followed by (4^nt)+1 little-endian uint64 offsets.
type Index struct {
	version Version
	nt      uint8
	offsets uint64Slice
}

// Open parses a binidx header and offset array from data.
func Open(data []byte) (*Index, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("binidx: header too short: %d < %d: %w", len(data), headerLen, ErrBadFormat)
	}

	var version Version
	switch string(data[:magicLen]) {
	case magicV1:
		version = V1
	case magicV2:
		version = V2
	default:
		return nil, fmt.Errorf("binidx: bad magic %q: %w", data[:magicLen], ErrBadFormat)
	}

	nt := data[magicLen]
	entries := uint64(1) << (uint64(nt) << 1)
	wantLen := headerLen + int((entries+1)*8)
	if len(data) < wantLen {
		return nil, fmt.Errorf("binidx: file too short for nt=%d: %d < %d: %w", nt, len(data), wantLen, ErrBadFormat)
	}

	return &Index{
		version: version,
		nt:      nt,
		offsets: uint64Slice(data[headerLen : headerLen+int((entries+1)*8)]),
	}, nil
}

// Version reports whether this index uses the scrambled (V2) or
// unscrambled (V1) minimizer order.
func (idx *Index) Version() Version { return idx.version }

// Nt returns the minimizer length in bases.
func (idx *Index) Nt() uint8 { return idx.nt }

// Len returns the number of offsets, i.e. 4^nt + 1.
func (idx *Index) Len() uint64 { return idx.offsets.len() }

// At returns B[i]: the pair-array position of the first pair whose
// minimizer bin key is i. It performs no bounds checking -- this is
// the hot-path accessor the query engine uses on every lookup, and a
// caller that has already validated i (as every in-package caller has)
// pays nothing for a check it doesn't need.
func (idx *Index) At(i uint64) uint64 {
	return idx.offsets.get(i)
}

// AtChecked is At with bounds checking. Use it from tests and other
// non-hot-path callers that want ErrOutOfRange instead of an
// out-of-bounds panic.
func (idx *Index) AtChecked(i uint64) (uint64, error) {
	if i >= idx.offsets.len() {
		return 0, fmt.Errorf("binidx: At(%d) >= len %d: %w", i, idx.offsets.len(), ErrOutOfRange)
	}
	return idx.offsets.get(i), nil
}

// XORMask returns the XOR mask bitkmer.BinKey should use to compute
// minimizers consistent with this index's sort order.
func (idx *Index) XORMask(index2Mask uint64) uint64 {
	if idx.version == V1 {
		return 0
	}
	return index2Mask
}
