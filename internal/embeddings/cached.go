package embeddings

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ziadkadry99/campusbot/internal/db"
)

// CachedEmbedder serves embeddings from the SQLite cache and only sends
// texts it has not seen before to the wrapped embedder.
type CachedEmbedder struct {
	inner  Embedder
	key    string
	db     *db.DB
	logger *slog.Logger
}

// endpointer is implemented by embedders that talk to a configurable server.
type endpointer interface {
	Endpoint() string
}

// NewCachedEmbedder wraps inner with a cache stored in database. Entries are
// keyed by model name and, when inner exposes one, by server endpoint.
func NewCachedEmbedder(inner Embedder, database *db.DB, logger *slog.Logger) *CachedEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedder{inner: inner, key: cacheKey(inner), db: database, logger: logger}
}

func cacheKey(e Embedder) string {
	if ep, ok := e.(endpointer); ok && ep.Endpoint() != "" {
		return e.Name() + "@" + ep.Endpoint()
	}
	return e.Name()
}

func (c *CachedEmbedder) Name() string    { return c.inner.Name() }
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	hashes := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		hashes[i] = contentHash(text)
		vec, err := c.lookup(ctx, hashes[i])
		if err != nil {
			return nil, err
		}
		if vec != nil {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	for j, i := range missIdx {
		out[i] = fresh[j]
		if err := c.store(ctx, hashes[i], fresh[j]); err != nil {
			// A cache write failure only costs a re-embed next time.
			c.logger.Warn("embedding cache write failed", "model", c.inner.Name(), "error", err)
		}
	}

	c.logger.Debug("embedded texts", "model", c.inner.Name(), "cached", len(texts)-len(missTexts), "fresh", len(missTexts))
	return out, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, hash string) ([]float32, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT vector FROM embedding_cache WHERE model = ? AND content_hash = ?`,
		c.key, hash,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading embedding cache: %w", err)
	}
	return decodeVector(blob)
}

func (c *CachedEmbedder) store(ctx context.Context, hash string, vec []float32) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embedding_cache (model, content_hash, dimensions, vector) VALUES (?, ?, ?, ?)`,
		c.key, hash, len(vec), encodeVector(vec),
	)
	return err
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("corrupt cached vector of %d bytes", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
