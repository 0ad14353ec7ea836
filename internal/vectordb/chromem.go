package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "documents"

var errNoEmbedding = errors.New("chromem index only accepts precomputed vectors")

// ChromemIndex implements Index on a chromem-go collection, ranking by
// cosine similarity. Documents are keyed by their position.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	dims       int
}

// NewChromemIndex creates a new in-memory ChromemIndex.
func NewChromemIndex() (*ChromemIndex, error) {
	db := chromem.NewDB()

	// Vectors always arrive precomputed, so chromem must never embed on its own.
	ef := func(context.Context, string) ([]float32, error) { return nil, errNoEmbedding }

	col, err := db.CreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemIndex{db: db, collection: col}, nil
}

func (c *ChromemIndex) Add(ctx context.Context, vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	dims := c.dims
	start := c.collection.Count()
	docs := make([]chromem.Document, len(vectors))
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
		// chromem normalizes in place.
		emb := make([]float32, len(v))
		copy(emb, v)
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(start + i),
			Embedding: emb,
		}
	}

	if err := c.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("chromem add: %w", err)
	}
	c.dims = dims
	return nil
}

func (c *ChromemIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	count := c.collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != c.dims {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w", len(query), c.dims, ErrDimensionMismatch)
	}

	// chromem-go requires nResults <= collection size.
	results, err := c.collection.QueryEmbedding(ctx, query, min(k, count), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		pos, err := strconv.Atoi(r.ID)
		if err != nil {
			return nil, fmt.Errorf("chromem returned foreign id %q", r.ID)
		}
		hits = append(hits, Hit{Position: pos, Distance: 1 - r.Similarity})
	}

	sortHits(hits)
	return hits, nil
}

func (c *ChromemIndex) Len() int {
	return c.collection.Count()
}

func (c *ChromemIndex) Dimensions() int {
	return c.dims
}
