// Copyright 2013-2015, Derrick Wood <dwood@cs.jhu.edu>
// Copyright 2022 The bit Authors and Caleb Spare. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package binidx

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/BenLangmead/kraken/bitkmer"
)

// BuildOptions configures Build/BuildToWriter/BuildToFile.
type BuildOptions struct {
	// KeyLen is the byte width of each pair's key (pairdb.Database.KeyLen()).
	KeyLen uint64
	// KeyBits is the number of significant bits per key
	// (pairdb.Database.KeyBits()).
	KeyBits uint64
	// PairStride is the byte width of one (key, value) record
	// (pairdb.Database.PairStride()).
	PairStride uint64
	// KeyCt is the number of pairs in pairArray
	// (pairdb.Database.PairCount()).
	KeyCt uint64
	// Nt is the minimizer length in bases.
	Nt uint8

	// NumWorkers bounds the goroutines used to histogram bin keys in
	// parallel. Zero means runtime.NumCPU().
	NumWorkers int

	// Logger receives build progress; a nop logger is used if nil.
	Logger *zap.SugaredLogger
}

func (o BuildOptions) numWorkers() int {
	if o.NumWorkers > 0 {
		return o.NumWorkers
	}
	return runtime.NumCPU()
}

func (o BuildOptions) logger() *zap.SugaredLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop().Sugar()
}

// entries returns 4^nt, the number of distinct minimizer bin keys.
func entries(nt uint8) uint64 {
	return uint64(1) << (uint64(nt) << 1)
}

// Build computes per-bin counts over pairArray, prefix-sums them into
// offsets, and returns the serialised v2 index (header + offsets).
//
// The counting phase is data-parallel across pair indices, sharded
// across opts.numWorkers() goroutines with atomic.AddUint64 on the
// shared counter array -- the Go-idiomatic re-expression of the
// original C++ implementation's "#pragma omp parallel for" with
// "#pragma omp atomic", per the design notes.
func Build(pairArray []byte, opts BuildOptions) ([]byte, error) {
	counts, err := histogram(pairArray, opts)
	if err != nil {
		return nil, err
	}

	n := entries(opts.Nt)
	offsets := make([]uint64, n+1)
	var sum uint64
	for i := uint64(0); i < n; i++ {
		offsets[i] = sum
		sum += atomic.LoadUint64(&counts[i])
	}
	offsets[n] = sum

	if sum != opts.KeyCt {
		return nil, fmt.Errorf("binidx: histogram total %d != KeyCt %d (pair array not sorted consistently?)", sum, opts.KeyCt)
	}

	buf := make([]byte, headerLen+len(offsets)*8)
	copy(buf[:magicLen], magicV2)
	buf[magicLen] = opts.Nt
	for i, off := range offsets {
		binary.LittleEndian.PutUint64(buf[headerLen+i*8:headerLen+i*8+8], off)
	}
	return buf, nil
}

// histogram computes the per-bin pair counts in parallel, returning a
// slice of length 4^nt that the caller prefix-sums.
func histogram(pairArray []byte, opts BuildOptions) ([]uint64, error) {
	n := entries(opts.Nt)
	counts := make([]uint64, n)

	pairCt := opts.KeyCt
	if need := pairCt * opts.PairStride; uint64(len(pairArray)) < need {
		return nil, fmt.Errorf("binidx: pair array is %d bytes, need %d for KeyCt %d", len(pairArray), need, pairCt)
	}
	workers := opts.numWorkers()
	if uint64(workers) > pairCt {
		workers = int(pairCt)
	}
	if workers < 1 {
		workers = 1
	}

	log := opts.logger()
	log.Infow("histogramming minimizer bin keys", "pairs", pairCt, "workers", workers, "nt", opts.Nt)

	var wg sync.WaitGroup
	chunk := (pairCt + uint64(workers) - 1) / uint64(workers)
	for w := 0; w < workers; w++ {
		start := uint64(w) * chunk
		end := start + chunk
		if end > pairCt {
			end = pairCt
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end uint64) {
			defer wg.Done()
			for p := start; p < end; p++ {
				off := p * opts.PairStride
				kmer := loadMaskedKey(pairArray[off:off+opts.KeyLen], opts.KeyBits)
				b := bitkmer.BinKey(kmer, uint8(opts.KeyBits/2), opts.Nt, bitkmer.Index2XORMask)
				atomic.AddUint64(&counts[b], 1)
			}
		}(start, end)
	}
	wg.Wait()

	return counts, nil
}

// loadMaskedKey reads a little-endian key of up to 8 bytes and masks
// off any high-order garbage bits past keyBits, matching the key
// comparison detail in the query engine.
func loadMaskedKey(b []byte, keyBits uint64) uint64 {
	var kmer uint64
	for i := 0; i < len(b); i++ {
		kmer |= uint64(b[i]) << (8 * uint(i))
	}
	if keyBits < 64 {
		kmer &= (uint64(1) << keyBits) - 1
	}
	return kmer
}

// BuildToWriter streams Build's result to w.
func BuildToWriter(w io.Writer, pairArray []byte, opts BuildOptions) error {
	buf, err := Build(pairArray, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// BuildToFile creates (or truncates) path, pre-sizes it to the exact
// index length -- mirroring both krakendb.cpp's make_index, which
// sizes its QuickFile destination up front, and bpowers-bit's on-disk
// index builder, which truncates its destination file before writing
// its arrays -- and writes the built index into it.
func BuildToFile(path string, pairArray []byte, opts BuildOptions) error {
	n := entries(opts.Nt)
	size := int64(headerLen + (n+1)*8)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("binidx: os.Create(%s): %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("binidx: truncate %s to %d: %w", path, size, err)
	}

	if err := BuildToWriter(f, pairArray, opts); err != nil {
		return err
	}

	opts.logger().Infow("wrote index", "path", path, "nt", opts.Nt, "bins", n)
	return f.Sync()
}
