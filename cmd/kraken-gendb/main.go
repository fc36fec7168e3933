// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// kraken-gendb generates a synthetic pairdb database plus its binidx
// sidecar: random canonical k-mers mapped to random taxon ids, the
// shape of data build_db would otherwise need a real reference genome
// to produce. Useful for benchmarking and load-testing the query path.
package main

import (
	crand "crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/BenLangmead/kraken/binidx"
	"github.com/BenLangmead/kraken/bitkmer"
	"github.com/BenLangmead/kraken/internal/fixtures"
	"github.com/BenLangmead/kraken/pairdb"
)

func newRand() *rand.Rand {
	var seedBytes [8]byte
	if _, err := crand.Read(seedBytes[:]); err != nil {
		panic(err)
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return rand.New(rand.NewSource(seed))
}

func main() {
	var (
		dbPath  = flag.String("db", "db.kdb", "path to write the generated pairdb database to")
		idxPath = flag.String("idx", "db.kdx", "path to write the generated binidx sidecar to")
		k       = flag.Int("k", 31, "k-mer length")
		nt      = flag.Int("nt", 15, "minimizer length in bases")
		n       = flag.Int("n", 1000000, "number of distinct k-mers to generate")
		maxTaxa = flag.Int("max-taxa", 10000, "highest taxon id to assign, inclusive (ids start at 1)")
	)
	flag.Parse()

	if err := run(*dbPath, *idxPath, *k, *nt, *n, *maxTaxa); err != nil {
		fmt.Fprintln(os.Stderr, "kraken-gendb:", err)
		os.Exit(1)
	}
}

func run(dbPath, idxPath string, k, nt, n, maxTaxa int) error {
	if k < 1 || k > bitkmer.MaxK {
		return fmt.Errorf("-k must be between 1 and %d", bitkmer.MaxK)
	}

	rng := newRand()
	seen := make(map[uint64]struct{}, n)
	pairs := make([]fixtures.Pair, 0, n)

	for len(pairs) < n {
		kmer := randomKmer(rng, uint8(k))
		canon := bitkmer.Canonical(kmer, uint8(k))
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		pairs = append(pairs, fixtures.Pair{
			Key:   canon,
			Value: uint32(rng.Intn(maxTaxa) + 1),
		})
	}

	keyBits := uint64(k) * 2
	sort.Slice(pairs, func(i, j int) bool {
		bi := bitkmer.BinKey(pairs[i].Key, uint8(k), uint8(nt), bitkmer.Index2XORMask)
		bj := bitkmer.BinKey(pairs[j].Key, uint8(k), uint8(nt), bitkmer.Index2XORMask)
		if bi != bj {
			return bi < bj
		}
		return pairs[i].Key < pairs[j].Key
	})

	dbBytes := fixtures.BuildPairdbBytes(keyBits, pairs)
	if err := os.WriteFile(dbPath, dbBytes, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dbPath, err)
	}

	db, err := pairdb.Open(dbBytes)
	if err != nil {
		return fmt.Errorf("opening generated database: %w", err)
	}

	opts := binidx.BuildOptions{
		KeyLen:     db.KeyLen(),
		KeyBits:    db.KeyBits(),
		PairStride: db.PairStride(),
		KeyCt:      db.PairCount(),
		Nt:         uint8(nt),
	}
	if err := binidx.BuildToFile(idxPath, dbBytes[db.PairPtr():], opts); err != nil {
		return fmt.Errorf("building %s: %w", idxPath, err)
	}

	fmt.Printf("wrote %d pairs to %s, index to %s\n", len(pairs), dbPath, idxPath)
	return nil
}

func randomKmer(rng *rand.Rand, k uint8) uint64 {
	var kmer uint64
	for i := uint8(0); i < k; i++ {
		kmer = (kmer << 2) | uint64(rng.Intn(4))
	}
	return kmer
}
