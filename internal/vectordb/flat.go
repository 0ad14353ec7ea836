package vectordb

import (
	"context"
	"fmt"
	"sync"
)

// FlatIndex is a brute-force index using squared Euclidean distance.
// It is safe for concurrent readers once loading is done.
type FlatIndex struct {
	mu   sync.RWMutex
	dims int
	rows [][]float32
}

// NewFlatIndex returns an empty FlatIndex.
func NewFlatIndex() *FlatIndex {
	return &FlatIndex{}
}

func (f *FlatIndex) Add(_ context.Context, vectors [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dims := f.dims
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("vector %d is empty", i)
		}
		if dims == 0 {
			dims = len(v)
		}
		if len(v) != dims {
			return fmt.Errorf("vector %d has %d dimensions, index has %d: %w", i, len(v), dims, ErrDimensionMismatch)
		}
	}

	for _, v := range vectors {
		row := make([]float32, len(v))
		copy(row, v)
		f.rows = append(f.rows, row)
	}
	f.dims = dims
	return nil
}

func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.rows) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != f.dims {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w", len(query), f.dims, ErrDimensionMismatch)
	}

	hits := make([]Hit, len(f.rows))
	for i, row := range f.rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = Hit{Position: i, Distance: squaredL2(query, row)}
	}

	sortHits(hits)
	return hits[:min(k, len(hits))], nil
}

func (f *FlatIndex) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.rows)
}

func (f *FlatIndex) Dimensions() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dims
}

func squaredL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}
