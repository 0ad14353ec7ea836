package sink

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ziadkadry99/campusbot/internal/crawler"
)

// Sink persists scraped records.
type Sink interface {
	Write(ctx context.Context, name string, rec crawler.Record) error
	Close(ctx context.Context) error
}

// Persister writes every record to a primary sink and then, best effort,
// to an optional secondary store. Primary failures are returned; store
// failures are only logged.
type Persister struct {
	primary Sink
	store   Sink
	logger  *slog.Logger
}

// NewPersister creates a Persister. store may be nil.
func NewPersister(primary, store Sink, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{primary: primary, store: store, logger: logger}
}

func (p *Persister) Write(ctx context.Context, name string, rec crawler.Record) error {
	if err := p.primary.Write(ctx, name, rec); err != nil {
		return err
	}
	if p.store == nil {
		return nil
	}
	if err := p.store.Write(ctx, name, rec); err != nil {
		p.logger.Warn("inserting record into document store", "name", name, "error", err)
		return nil
	}
	p.logger.Debug("inserted record into document store", "name", name, "path", rec.Path)
	return nil
}

// Close closes both sinks.
func (p *Persister) Close(ctx context.Context) error {
	var errs []error
	if err := p.primary.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if p.store != nil {
		if err := p.store.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
