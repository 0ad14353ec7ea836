package vectordb

import (
	"context"
	"errors"
	"testing"

	"github.com/ziadkadry99/campusbot/internal/config"
)

func mustAdd(t *testing.T, idx Index, vectors [][]float32) {
	t.Helper()
	if err := idx.Add(context.Background(), vectors); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestFlatIndexSearchOrdersBySquaredL2(t *testing.T) {
	idx := NewFlatIndex()
	mustAdd(t, idx, [][]float32{
		{0, 0},
		{3, 4},
		{1, 1},
		{10, 10},
		{-1, 0},
	})

	if idx.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", idx.Len())
	}
	if idx.Dimensions() != 2 {
		t.Fatalf("Dimensions() = %d, want 2", idx.Dimensions())
	}

	hits, err := idx.Search(context.Background(), []float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []Hit{{0, 0}, {4, 1}, {2, 2}}
	if len(hits) != len(want) {
		t.Fatalf("got %d hits, want %d", len(hits), len(want))
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Errorf("hit %d = %+v, want %+v", i, hits[i], want[i])
		}
	}
}

func TestFlatIndexTiesKeepInsertionOrder(t *testing.T) {
	idx := NewFlatIndex()
	mustAdd(t, idx, [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}})

	hits, err := idx.Search(context.Background(), []float32{0, 0}, 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i, h := range hits {
		if h.Position != i {
			t.Errorf("hit %d has position %d", i, h.Position)
		}
	}
}

func TestFlatIndexClampsK(t *testing.T) {
	idx := NewFlatIndex()
	mustAdd(t, idx, [][]float32{{1}, {2}})

	hits, err := idx.Search(context.Background(), []float32{0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
}

func TestFlatIndexEmpty(t *testing.T) {
	hits, err := NewFlatIndex().Search(context.Background(), []float32{1, 2}, 3)
	if err != nil {
		t.Fatalf("Search on empty index: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %v", hits)
	}
}

func TestFlatIndexDimensionMismatch(t *testing.T) {
	idx := NewFlatIndex()
	mustAdd(t, idx, [][]float32{{1, 2, 3}})

	if err := idx.Add(context.Background(), [][]float32{{1, 2}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Add: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := idx.Search(context.Background(), []float32{1}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Search: expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("failed Add must not change Len, got %d", idx.Len())
	}
}

func TestFlatIndexDeterministic(t *testing.T) {
	idx := NewFlatIndex()
	mustAdd(t, idx, [][]float32{{0.2, 0.9}, {0.5, 0.5}, {0.9, 0.1}, {0.4, 0.6}})

	q := []float32{0.45, 0.55}
	first, _ := idx.Search(context.Background(), q, 3)
	for i := 0; i < 10; i++ {
		again, _ := idx.Search(context.Background(), q, 3)
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d differs at %d: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestChromemIndexCosine(t *testing.T) {
	idx, err := NewChromemIndex()
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	mustAdd(t, idx, [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	})

	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}

	hits, err := idx.Search(context.Background(), []float32{2, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	if hits[0].Position != 0 || hits[1].Position != 2 || hits[2].Position != 1 {
		t.Errorf("unexpected order %+v", hits)
	}
	if hits[0].Distance > 1e-5 {
		t.Errorf("identical direction should have ~0 distance, got %v", hits[0].Distance)
	}
}

func TestChromemIndexDimensionMismatch(t *testing.T) {
	idx, err := NewChromemIndex()
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	mustAdd(t, idx, [][]float32{{1, 0}})

	if _, err := idx.Search(context.Background(), []float32{1, 0, 0}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNewSelectsMetric(t *testing.T) {
	l2, err := New(config.MetricL2)
	if err != nil {
		t.Fatalf("New(l2): %v", err)
	}
	if _, ok := l2.(*FlatIndex); !ok {
		t.Errorf("New(l2) returned %T", l2)
	}

	cos, err := New(config.MetricCosine)
	if err != nil {
		t.Fatalf("New(cosine): %v", err)
	}
	if _, ok := cos.(*ChromemIndex); !ok {
		t.Errorf("New(cosine) returned %T", cos)
	}

	if _, err := New("manhattan"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
