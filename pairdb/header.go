// Copyright 2013-2015, Derrick Wood <dwood@cs.jhu.edu>
// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package pairdb

import (
	"encoding/binary"
	"fmt"
)

const (
	magicDatabase = "JFLISTDN"

	// requiredValLen is the only value width this package supports: a
	// 32-bit taxon id.
	requiredValLen = 4

	// baseHeaderSize is the portion of the header this package
	// interprets directly; the remainder (up to headerSize) is an
	// opaque, variable-width preamble borrowed from an upstream hash
	// format that this package never reads.
	baseHeaderSize = 72

	offMagic   = 0
	offKeyBits = 8
	offValLen  = 16
	offKeyCt   = 48
)

// header holds the fixed-offset little-endian fields parsed from the
// first bytes of a pair-array file.
type header struct {
	keyBits uint64
	valLen  uint64
	keyCt   uint64
}

// parseHeader reads and validates a pairdb file header from the front
// of data. It never reads past headerSize(keyBits).
func parseHeader(data []byte) (header, error) {
	if len(data) < baseHeaderSize {
		return header{}, fmt.Errorf("pairdb: header too short: %d < %d: %w", len(data), baseHeaderSize, ErrBadFormat)
	}
	if string(data[offMagic:offMagic+8]) != magicDatabase {
		return header{}, fmt.Errorf("pairdb: bad magic %q: %w", data[offMagic:offMagic+8], ErrBadFormat)
	}

	h := header{
		keyBits: binary.LittleEndian.Uint64(data[offKeyBits : offKeyBits+8]),
		valLen:  binary.LittleEndian.Uint64(data[offValLen : offValLen+8]),
		keyCt:   binary.LittleEndian.Uint64(data[offKeyCt : offKeyCt+8]),
	}
	if h.valLen != requiredValLen {
		return header{}, fmt.Errorf("pairdb: unsupported val_len %d (want %d): %w", h.valLen, requiredValLen, ErrBadFormat)
	}
	if len(data) < int(headerSize(h.keyBits)) {
		return header{}, fmt.Errorf("pairdb: file too short for header_size() %d: %w", headerSize(h.keyBits), ErrBadFormat)
	}
	return h, nil
}

// headerSize returns the total header length in bytes for a given
// key_bits, per the variable-width preamble inherited from the
// upstream hash format: 72 + 2*(4 + 8*key_bits).
func headerSize(keyBits uint64) uint64 {
	return baseHeaderSize + 2*(4+8*keyBits)
}
