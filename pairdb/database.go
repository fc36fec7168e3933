// Copyright 2013-2015, Derrick Wood <dwood@cs.jhu.edu>
// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package pairdb

import (
	"github.com/BenLangmead/kraken/binidx"
)

// Database is a non-owning view over an mmap-able byte region holding a
// pairdb-formatted pair array: a sorted sequence of fixed-stride
// (k-mer key, taxon id) records. Database parses only the header; it
// never reads the pair array eagerly, and it never copies or retains
// ownership of data -- the caller's byte slice (typically a memory
// mapping) must outlive the Database.
type Database struct {
	data []byte

	keyBits uint64
	valLen  uint64
	keyCt   uint64
	k       uint8
	keyLen  uint64
	stride  uint64
	pairOff uint64

	idx *binidx.Index
}

// Open parses a pairdb header from data and returns a Database bound to
// it. It does not read or validate the pair array itself.
func Open(data []byte) (*Database, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	keyLen := h.keyBits/8 + boolToUint64(h.keyBits%8 != 0)
	db := &Database{
		data:    data,
		keyBits: h.keyBits,
		valLen:  h.valLen,
		keyCt:   h.keyCt,
		k:       uint8(h.keyBits / 2),
		keyLen:  keyLen,
		stride:  keyLen + h.valLen,
		pairOff: headerSize(h.keyBits),
	}
	return db, nil
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// K returns the k-mer length implied by this database's key width.
func (db *Database) K() uint8 { return db.k }

// KeyBits returns the number of significant bits in each stored key.
func (db *Database) KeyBits() uint64 { return db.keyBits }

// KeyLen returns the number of bytes each stored key occupies.
func (db *Database) KeyLen() uint64 { return db.keyLen }

// ValLen returns the number of bytes each stored value occupies;
// always 4 in this package.
func (db *Database) ValLen() uint64 { return db.valLen }

// PairCount returns the number of (key, value) pairs in the array.
func (db *Database) PairCount() uint64 { return db.keyCt }

// PairStride returns the byte width of a single pair record
// (KeyLen() + ValLen()).
func (db *Database) PairStride() uint64 { return db.stride }

// PairPtr returns the byte offset of the first pair within the
// backing byte region (i.e. the header size).
func (db *Database) PairPtr() uint64 { return db.pairOff }

// BindIndex attaches idx to this Database. A Query/QueryWithState call
// on a Database with no bound index panics, the same way a nil-pointer
// dereference would: binding is a precondition the caller controls, not
// a runtime condition to recover from.
func (db *Database) BindIndex(idx *binidx.Index) {
	db.idx = idx
}

// Index returns the Index previously bound with BindIndex, or nil.
func (db *Database) Index() *binidx.Index {
	return db.idx
}
