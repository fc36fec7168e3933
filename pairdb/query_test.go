// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package pairdb

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BenLangmead/kraken/binidx"
	"github.com/BenLangmead/kraken/bitkmer"
	"github.com/BenLangmead/kraken/internal/fixtures"
)

const testNt = 2

// buildTestDB builds a pairdb+binidx pair from a map of canonical
// k-mer string -> taxon id, sorted the way the on-disk format requires
// (by minimizer bin key, then by key), and returns a bound Database.
func buildTestDB(t testing.TB, k uint8, kv map[string]uint32) *Database {
	t.Helper()

	type entry struct {
		key uint64
		val uint32
	}
	entries := make([]entry, 0, len(kv))
	for s, v := range kv {
		kmer, err := bitkmer.Encode(s)
		require.NoError(t, err)
		canon := bitkmer.Canonical(kmer, k)
		entries = append(entries, entry{key: canon, val: v})
	}

	binKey := func(e entry) uint64 {
		return bitkmer.BinKey(e.key, k, testNt, bitkmer.Index2XORMask)
	}
	sort.Slice(entries, func(i, j int) bool {
		bi, bj := binKey(entries[i]), binKey(entries[j])
		if bi != bj {
			return bi < bj
		}
		return entries[i].key < entries[j].key
	})

	pairs := make([]fixtures.Pair, len(entries))
	for i, e := range entries {
		pairs[i] = fixtures.Pair{Key: e.key, Value: e.val}
	}

	keyBits := uint64(k) * 2
	dbBytes := fixtures.BuildPairdbBytes(keyBits, pairs)

	db, err := Open(dbBytes)
	require.NoError(t, err)

	idxBytes, err := binidx.Build(dbBytes[db.PairPtr():], binidx.BuildOptions{
		KeyLen:     db.KeyLen(),
		KeyBits:    db.KeyBits(),
		PairStride: db.PairStride(),
		KeyCt:      db.PairCount(),
		Nt:         testNt,
	})
	require.NoError(t, err)

	idx, err := binidx.Open(idxBytes)
	require.NoError(t, err)

	db.BindIndex(idx)
	return db
}

// S5: build {AAAA:10, ACGT:20, CCCC:30} with k=4, nt=2; after index
// build, query(ACGT)==some(20), query(GGGG)==none.
func TestQueryScenarioS5(t *testing.T) {
	db := buildTestDB(t, 4, map[string]uint32{
		"AAAA": 10,
		"ACGT": 20,
		"CCCC": 30,
	})

	acgt, err := bitkmer.Encode("ACGT")
	require.NoError(t, err)
	v, ok := db.Query(bitkmer.Canonical(acgt, 4))
	require.True(t, ok)
	require.EqualValues(t, 20, v)

	// GGGG is not canonical (its reverse complement CCCC is what is
	// stored), so the raw GGGG key is absent.
	gggg, err := bitkmer.Encode("GGGG")
	require.NoError(t, err)
	_, ok = db.Query(gggg)
	require.False(t, ok)
}

// Property 8: query round-trip for every stored pair, and absence for
// every k-mer that was never stored.
func TestQueryRoundTrip(t *testing.T) {
	k := uint8(6)
	// None of these may be the reverse complement of another entry in
	// this map: bitkmer.Canonical would collapse such a pair onto the
	// same key, violating the pair array's strictly-increasing-keys-
	// per-bin invariant and making which of the two taxon ids survives
	// the sort nondeterministic.
	stored := map[string]uint32{
		"AAAAAA": 1,
		"AAAACG": 2,
		"ACGTAC": 3,
		"CCCCCC": 4,
		"GATTAC": 7,
		"TACGAT": 8,
		"GGATCC": 9,
		"AAGCTT": 10,
	}
	db := buildTestDB(t, k, stored)

	for s, want := range stored {
		kmer, err := bitkmer.Encode(s)
		require.NoError(t, err)
		canon := bitkmer.Canonical(kmer, k)
		got, ok := db.Query(canon)
		require.True(t, ok, "expected to find %s", s)
		require.Equal(t, want, got)
	}

	for _, s := range []string{"AAAAAT", "CGCGCG", "TTTTTA"} {
		if _, present := stored[s]; present {
			continue
		}
		kmer, err := bitkmer.Encode(s)
		require.NoError(t, err)
		canon := bitkmer.Canonical(kmer, k)
		if _, present := stored[bitkmer.Decode(canon, k)]; present {
			continue
		}
		_, ok := db.Query(canon)
		require.False(t, ok, "did not expect to find %s", s)
	}
}

// Property 9: the amortised query agrees with the stateless query on
// every input regardless of state history, including when consecutive
// k-mers share and don't share a minimizer.
func TestQueryWithStateAgreesWithQuery(t *testing.T) {
	k := uint8(6)
	// As in TestQueryRoundTrip, no entry here may be the reverse
	// complement of another.
	stored := map[string]uint32{
		"AAAAAA": 1,
		"AAAACG": 2,
		"ACGTAC": 3,
		"CCCCCC": 4,
		"GGATCC": 5,
		"AAGCTT": 6,
	}
	db := buildTestDB(t, k, stored)

	queries := []string{
		"AAAAAA", "AAAACG", "AAAAAT", "ACGTAC", "CGCGCG",
		"CCCCCC", "GGATCC", "AAGCTT", "AAAAAA",
	}

	var state QueryState
	for _, s := range queries {
		kmer, err := bitkmer.Encode(s)
		require.NoError(t, err)
		canon := bitkmer.Canonical(kmer, k)

		wantVal, wantOK := db.Query(canon)
		gotVal, gotOK := db.QueryWithState(canon, &state)
		require.Equal(t, wantOK, gotOK, "query %s", s)
		if wantOK {
			require.Equal(t, wantVal, gotVal, "query %s", s)
		}
	}
}

func TestQueryWithStateInitialStateForcesFullLookup(t *testing.T) {
	var state QueryState
	require.False(t, state.valid())
}
