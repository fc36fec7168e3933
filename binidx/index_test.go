// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package binidx

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildRawIndex(t testing.TB, magic string, nt uint8, offsets []uint64) []byte {
	t.Helper()
	buf := make([]byte, headerLen+len(offsets)*8)
	copy(buf[:magicLen], magic)
	buf[magicLen] = nt
	for i, off := range offsets {
		binary.LittleEndian.PutUint64(buf[headerLen+i*8:headerLen+i*8+8], off)
	}
	return buf
}

func TestOpenV1(t *testing.T) {
	offsets := []uint64{0, 3, 7, 7, 10}
	buf := buildRawIndex(t, magicV1, 1, offsets)

	idx, err := Open(buf)
	require.NoError(t, err)
	require.Equal(t, V1, idx.Version())
	require.EqualValues(t, 1, idx.Nt())
	require.EqualValues(t, len(offsets), idx.Len())
	for i, want := range offsets {
		require.Equal(t, want, idx.At(uint64(i)))
	}
	require.EqualValues(t, 0, idx.XORMask(0xdead))
}

func TestOpenV2(t *testing.T) {
	offsets := []uint64{0, 3, 7, 7, 10}
	buf := buildRawIndex(t, magicV2, 1, offsets)

	idx, err := Open(buf)
	require.NoError(t, err)
	require.Equal(t, V2, idx.Version())
	require.EqualValues(t, 0xdead, idx.XORMask(0xdead))
}

func TestOpenBadMagic(t *testing.T) {
	buf := buildRawIndex(t, "BADMAGIC", 1, []uint64{0, 1, 1, 2})
	_, err := Open(buf)
	require.ErrorIs(t, err, ErrBadFormat)
}

func TestOpenTruncated(t *testing.T) {
	offsets := []uint64{0, 3, 7, 7, 10}
	buf := buildRawIndex(t, magicV2, 1, offsets)
	_, err := Open(buf[:len(buf)-4])
	require.ErrorIs(t, err, ErrBadFormat)
}

func TestAtChecked(t *testing.T) {
	offsets := []uint64{0, 3, 7, 7, 10}
	buf := buildRawIndex(t, magicV2, 1, offsets)
	idx, err := Open(buf)
	require.NoError(t, err)

	v, err := idx.AtChecked(uint64(len(offsets) - 1))
	require.NoError(t, err)
	require.Equal(t, offsets[len(offsets)-1], v)

	_, err = idx.AtChecked(uint64(len(offsets)))
	require.ErrorIs(t, err, ErrOutOfRange)
}
