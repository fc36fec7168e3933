// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmapreader memory-maps a file read-only and exposes its
// bytes directly, with no copy. The upstream golang.org/x/exp/mmap
// package (which bpowers/bit wraps for this purpose) only exposes
// ReadAt, which forces a copy on every open; this package gives
// mmapfile a Data() escape hatch onto the real mapping instead, the
// same shape bit's own internal/exp/mmap fork exposes to its
// datafile and indexfile readers.
package mmapreader

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ReaderAt is a read-only memory mapping of a file.
type ReaderAt struct {
	f    *os.File
	data []byte
}

// Open maps path into memory read-only. The caller must call Close
// when done with the returned ReaderAt.
func Open(path string) (*ReaderAt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("mmapreader: %s is empty", path)
	}
	if size < 0 || size != int64(int(size)) {
		_ = f.Close()
		return nil, fmt.Errorf("mmapreader: %s too large to map", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmapreader: mmap %s: %w", path, err)
	}

	return &ReaderAt{f: f, data: data}, nil
}

// Data returns the mapped region. It is valid only until Close.
func (r *ReaderAt) Data() []byte { return r.data }

// Len returns the length of the mapped region.
func (r *ReaderAt) Len() int { return len(r.data) }

// ReadAt implements io.ReaderAt over the mapping.
func (r *ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(r.data)) {
		return 0, fmt.Errorf("mmapreader: invalid ReadAt offset %d", off)
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, fmt.Errorf("mmapreader: short read at offset %d", off)
	}
	return n, nil
}

// Close unmaps the region and closes the underlying file descriptor.
func (r *ReaderAt) Close() error {
	var err error
	if r.data != nil {
		err = unix.Munmap(r.data)
		r.data = nil
	}
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	return err
}
