package vectordb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ziadkadry99/campusbot/internal/config"
)

// ErrDimensionMismatch is returned when a vector does not match the index dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Hit is one search result: the position of the matching vector in
// insertion order and its distance to the query (smaller is closer).
type Hit struct {
	Position int
	Distance float32
}

// Index stores embedding vectors by insertion position and answers
// exact nearest-neighbour queries. Row i always belongs to the i-th
// vector passed to Add.
type Index interface {
	// Add appends vectors; the first one gets position Len().
	Add(ctx context.Context, vectors [][]float32) error

	// Search returns up to k hits ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector dimension, or 0 while empty.
	Dimensions() int
}

// New returns an empty index for the given metric.
func New(metric config.Metric) (Index, error) {
	switch metric {
	case config.MetricL2, "":
		return NewFlatIndex(), nil
	case config.MetricCosine:
		return NewChromemIndex()
	default:
		return nil, fmt.Errorf("unsupported metric %q", metric)
	}
}

// sortHits orders hits by distance, breaking ties by position.
func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Position < hits[j].Position
	})
}
