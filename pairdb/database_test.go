// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package pairdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BenLangmead/kraken/internal/fixtures"
)

// S6: for key_bits=32, header_size() == 72 + 2*(4+256) == 592.
func TestHeaderSizeScenarioS6(t *testing.T) {
	require.EqualValues(t, 592, headerSize(32))
}

func TestOpenParsesHeader(t *testing.T) {
	dbBytes := fixtures.BuildPairdbBytes(8, []fixtures.Pair{
		{Key: 0x3, Value: 42},
		{Key: 0xC, Value: 7},
	})

	db, err := Open(dbBytes)
	require.NoError(t, err)
	require.EqualValues(t, 8, db.KeyBits())
	require.EqualValues(t, 4, db.K())
	require.EqualValues(t, 1, db.KeyLen())
	require.EqualValues(t, 4, db.ValLen())
	require.EqualValues(t, 5, db.PairStride())
	require.EqualValues(t, 2, db.PairCount())
	require.EqualValues(t, headerSize(8), db.PairPtr())
}

func TestOpenBadMagic(t *testing.T) {
	dbBytes := fixtures.BuildPairdbBytes(8, nil)
	copy(dbBytes[0:8], "NOTAMAGC")
	_, err := Open(dbBytes)
	require.ErrorIs(t, err, ErrBadFormat)
}

func TestOpenBadValLen(t *testing.T) {
	dbBytes := fixtures.BuildPairdbBytes(8, nil)
	// corrupt val_len field.
	dbBytes[16] = 5
	_, err := Open(dbBytes)
	require.ErrorIs(t, err, ErrBadFormat)
}

func TestOpenTruncated(t *testing.T) {
	_, err := Open(make([]byte, 10))
	require.ErrorIs(t, err, ErrBadFormat)
}
