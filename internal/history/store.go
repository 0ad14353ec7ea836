package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/campusbot/internal/db"
)

const (
	// DefaultLimit is the number of exchanges Recent returns when limit <= 0.
	DefaultLimit = 20
	// MaxLimit caps the number of exchanges returned by Recent.
	MaxLimit = 100
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Exchange is one answered question.
type Exchange struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists chat exchanges in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts an exchange. Empty ID and zero CreatedAt are filled in.
func (s *Store) Record(ctx context.Context, ex Exchange) (*Exchange, error) {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}
	if ex.Sources == nil {
		ex.Sources = []string{}
	}

	sources, err := json.Marshal(ex.Sources)
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_exchanges (id, question, answer, sources, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		ex.ID, ex.Question, ex.Answer, string(sources), ex.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting chat exchange: %w", err)
	}
	return &ex, nil
}

// Recent returns up to limit exchanges, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	limit = ClampLimit(limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, sources, created_at
		FROM chat_exchanges
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chat exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var (
			ex          Exchange
			sourcesJSON string
			ts          string
		)
		if err := rows.Scan(&ex.ID, &ex.Question, &ex.Answer, &sourcesJSON, &ts); err != nil {
			return nil, fmt.Errorf("scanning chat exchange: %w", err)
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &ex.Sources); err != nil {
			ex.Sources = nil
		}
		ex.CreatedAt = parseTimestamp(ts)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// Count returns the number of stored exchanges.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_exchanges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chat exchanges: %w", err)
	}
	return n, nil
}

// ClampLimit maps a requested page size onto [1, MaxLimit], using
// DefaultLimit for non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// parseTimestamp accepts both the stored layout and the RFC 3339 form the
// driver produces for DATETIME columns.
func parseTimestamp(ts string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, timeLayout, time.DateTime} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}
