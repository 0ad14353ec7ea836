package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/ziadkadry99/campusbot/internal/db"
)

// PageStatus is the outcome of visiting one URL.
type PageStatus string

const (
	StatusScraped PageStatus = "scraped"
	StatusSkipped PageStatus = "skipped"
	StatusFailed  PageStatus = "failed"
)

// PageEntry is one ledger row.
type PageEntry struct {
	RunID     string
	URL       string
	Status    PageStatus
	Error     string
	Records   int
	VisitedAt time.Time
}

// Ledger records the outcome of every visited page in SQLite.
type Ledger struct {
	db *db.DB
}

// NewLedger creates a Ledger backed by the given database.
func NewLedger(database *db.DB) *Ledger {
	return &Ledger{db: database}
}

// Append stores one page outcome. Visiting the same URL twice within a run
// replaces the earlier entry.
func (l *Ledger) Append(ctx context.Context, e PageEntry) error {
	if e.VisitedAt.IsZero() {
		e.VisitedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO crawl_pages (run_id, url, status, error, records, visited_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.URL, string(e.Status), e.Error, e.Records, e.VisitedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting crawl page: %w", err)
	}
	return nil
}

// Pages returns the entries of a run in visit order.
func (l *Ledger) Pages(ctx context.Context, runID string) ([]PageEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, url, status, error, records, visited_at
		FROM crawl_pages
		WHERE run_id = ?
		ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying crawl pages: %w", err)
	}
	defer rows.Close()

	var out []PageEntry
	for rows.Next() {
		var (
			e      PageEntry
			status string
			ts     string
		)
		if err := rows.Scan(&e.RunID, &e.URL, &status, &e.Error, &e.Records, &ts); err != nil {
			return nil, fmt.Errorf("scanning crawl page: %w", err)
		}
		e.Status = PageStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.VisitedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Counts returns the number of pages per status for a run.
func (l *Ledger) Counts(ctx context.Context, runID string) (map[PageStatus]int, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM crawl_pages WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, fmt.Errorf("counting crawl pages: %w", err)
	}
	defer rows.Close()

	counts := make(map[PageStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning crawl page count: %w", err)
		}
		counts[PageStatus(status)] = n
	}
	return counts, rows.Err()
}
