// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// kraken-idxbuild reads a pairdb-formatted database file and writes
// its minimizer-bin offset index (binidx) as a sidecar file.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/BenLangmead/kraken/binidx"
	"github.com/BenLangmead/kraken/pairdb"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "path to a pairdb database file")
		idxPath = flag.String("idx", "", "path to write the binidx sidecar to")
		nt      = flag.Int("nt", 15, "minimizer length in bases")
	)
	flag.Parse()

	if err := run(*dbPath, *idxPath, *nt); err != nil {
		fmt.Fprintln(os.Stderr, "kraken-idxbuild:", err)
		os.Exit(1)
	}
}

func run(dbPath, idxPath string, nt int) error {
	if dbPath == "" || idxPath == "" {
		return fmt.Errorf("-db and -idx are required")
	}
	if nt < 1 || nt > 15 {
		return fmt.Errorf("-nt must be between 1 and 15")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("zap.NewProduction: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Sugar()

	data, err := os.ReadFile(dbPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dbPath, err)
	}

	db, err := pairdb.Open(data)
	if err != nil {
		return fmt.Errorf("opening %s as a pairdb database: %w", dbPath, err)
	}

	log.Infow("building index", "db", dbPath, "pairs", db.PairCount(), "key_bits", db.KeyBits(), "nt", nt)

	pairArray := data[db.PairPtr():]
	opts := binidx.BuildOptions{
		KeyLen:     db.KeyLen(),
		KeyBits:    db.KeyBits(),
		PairStride: db.PairStride(),
		KeyCt:      db.PairCount(),
		Nt:         uint8(nt),
		Logger:     log,
	}

	if err := binidx.BuildToFile(idxPath, pairArray, opts); err != nil {
		return fmt.Errorf("building %s: %w", idxPath, err)
	}

	log.Infow("done", "idx", idxPath)
	return nil
}
