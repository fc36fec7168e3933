// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmapfile is the thin, swappable seam between the on-disk
// pairdb/binidx formats and the filesystem: it memory-maps a path
// read-only and hands the resulting byte slice to pairdb.Open or
// binidx.Open. It contains no k-mer or query logic -- see SPEC_FULL.md
// §2 and §6.
package mmapfile

import (
	"fmt"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/BenLangmead/kraken/binidx"
	"github.com/BenLangmead/kraken/internal/mmapreader"
	"github.com/BenLangmead/kraken/pairdb"
)

var log = zap.NewNop().Sugar()

// SetLogger replaces the package-level logger used to report mmap and
// madvise activity. The query path never logs, per SPEC_FULL.md §3a --
// this only affects the open/close plumbing in this package.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		log = l
	}
}

// region wraps an mmapreader.ReaderAt as an io.Closer and exposes its
// backing bytes with no copy. pairdb and binidx hold onto this slice
// for the lifetime of the Database; it must not outlive Close.
type region struct {
	r *mmapreader.ReaderAt
}

func openRegion(path string) (*region, []byte, error) {
	r, err := mmapreader.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mmapfile: open(%s): %w", path, err)
	}

	data := r.Data()
	if err := unix.Madvise(data, syscall.MADV_RANDOM); err != nil {
		log.Warnw("madvise failed, continuing anyway", "path", path, "error", err)
	}

	log.Infow("mapped file", "path", path, "bytes", len(data))
	return &region{r: r}, data, nil
}

func (r *region) Close() error {
	return r.r.Close()
}

// Database is a pairdb.Database bound to a memory-mapped file, plus
// the handles needed to unmap it on Close.
type Database struct {
	*pairdb.Database
	dataRegion  *region
	indexRegion *region
}

// OpenDatabase memory-maps dataPath and indexPath, opens a
// pairdb.Database and binidx.Index over them, binds the index, and
// returns a Database whose Close unmaps both regions.
func OpenDatabase(dataPath, indexPath string) (*Database, error) {
	dataRegion, dataBytes, err := openRegion(dataPath)
	if err != nil {
		return nil, err
	}

	indexRegion, indexBytes, err := openRegion(indexPath)
	if err != nil {
		_ = dataRegion.Close()
		return nil, err
	}

	db, err := pairdb.Open(dataBytes)
	if err != nil {
		_ = multierr.Combine(dataRegion.Close(), indexRegion.Close())
		return nil, fmt.Errorf("mmapfile: pairdb.Open(%s): %w", dataPath, err)
	}

	idx, err := binidx.Open(indexBytes)
	if err != nil {
		_ = multierr.Combine(dataRegion.Close(), indexRegion.Close())
		return nil, fmt.Errorf("mmapfile: binidx.Open(%s): %w", indexPath, err)
	}

	db.BindIndex(idx)

	return &Database{
		Database:    db,
		dataRegion:  dataRegion,
		indexRegion: indexRegion,
	}, nil
}

// Close unmaps both the data and index regions, combining any errors
// from the two with go.uber.org/multierr rather than discarding the
// second, per SPEC_FULL.md §3a.
func (db *Database) Close() error {
	return multierr.Combine(db.dataRegion.Close(), db.indexRegion.Close())
}
