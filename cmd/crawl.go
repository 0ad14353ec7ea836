package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/campusbot/internal/crawler"
	"github.com/ziadkadry99/campusbot/internal/progress"
	"github.com/ziadkadry99/campusbot/internal/sink"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Scrape the configured website into JSON documents",
	Long: `Walks the website depth-first from crawl.base_url, writing one JSON file per
paragraph to crawl.output_dir and inserting the same record into MongoDB.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().Int("max-pages", 0, "stop after visiting this many pages (0 = crawl.max_pages)")
	crawlCmd.Flags().Bool("no-store", false, "write JSON files only, skip the document store")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("max-pages"); n > 0 {
		cfg.Crawl.MaxPages = n
	}
	noStore, _ := cmd.Flags().GetBool("no-store")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	var store sink.Sink
	if !noStore {
		mongoSink, err := sink.NewMongoSink(ctx, sink.MongoConfig{
			URI:        cfg.Store.MongoURI,
			Database:   cfg.Store.Database,
			Collection: cfg.Store.Collection,
		})
		if err != nil {
			logger.Warn("document store unavailable, writing JSON files only", "error", err)
		} else {
			store = mongoSink
		}
	}

	persister := sink.NewPersister(sink.NewFileSink(cfg.Crawl.OutputDir), store, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := persister.Close(closeCtx); err != nil {
			logger.Warn("closing sinks", "error", err)
		}
	}()

	c, err := crawler.New(crawler.Options{
		BaseURL:        cfg.Crawl.BaseURL,
		Delay:          cfg.Crawl.Delay,
		MaxPages:       cfg.Crawl.MaxPages,
		UserAgent:      cfg.Crawl.UserAgent,
		FileExtensions: cfg.Crawl.FileExtensions,
		Sink:           persister,
		Ledger:         crawler.NewLedger(database),
		Reporter:       progress.NewReporter("Crawling"),
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	sum, err := c.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("crawl: %w", err)
	}

	fmt.Printf("Crawl %s finished: %d pages (%d scraped, %d skipped, %d failed), %d records written to %s\n",
		sum.RunID, sum.Pages(), sum.Scraped, sum.Skipped, sum.Failed, sum.Records, cfg.Crawl.OutputDir)
	return nil
}
