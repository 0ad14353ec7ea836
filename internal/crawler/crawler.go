package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/ziadkadry99/campusbot/internal/progress"
)

// errNotHTML marks a page whose content type is not text/html.
var errNotHTML = errors.New("not an HTML page")

// Sink receives every record produced by the crawler. name is the
// record's file name, e.g. "scolarite_4_2.json".
type Sink interface {
	Write(ctx context.Context, name string, rec Record) error
}

// Options configures a Crawler.
type Options struct {
	BaseURL        string        // Crawl root; only URLs with this prefix are followed.
	Delay          time.Duration // Pause after each page before fetching the next one.
	MaxPages       int           // 0 = unlimited.
	UserAgent      string
	FileExtensions []string
	HTTPClient     *http.Client
	Sink           Sink
	Ledger         *Ledger // optional
	Reporter       progress.Reporter
	Logger         *slog.Logger
}

// Summary reports what one run did.
type Summary struct {
	RunID   string
	Scraped int
	Skipped int
	Failed  int
	Records int
}

// Pages returns the number of visited pages.
func (s Summary) Pages() int {
	return s.Scraped + s.Skipped + s.Failed
}

// task is a URL waiting on the work stack.
type task struct {
	url   string
	topic string
	path  string
}

// Crawler walks a site depth-first from its base URL. A Crawler holds the
// visited set of one run; create a new one per run.
type Crawler struct {
	opts    Options
	base    *url.URL
	client  *http.Client
	logger  *slog.Logger
	visited map[string]bool
}

// New creates a Crawler.
func New(opts Options) (*Crawler, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("crawler: invalid base URL %q", opts.BaseURL)
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("crawler: a sink is required")
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Discard
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Crawler{
		opts:    opts,
		base:    base,
		client:  client,
		logger:  logger,
		visited: make(map[string]bool),
	}
	return c, nil
}

// Run crawls from the base URL until the work stack is empty, MaxPages
// pages were visited or ctx is cancelled. Page-level failures are logged
// and counted; they never stop the run.
func (c *Crawler) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{RunID: uuid.New().String()}

	topic, path := topicAndPath(c.base)
	stack := []task{{url: c.opts.BaseURL, topic: topic, path: path}}

	c.opts.Reporter.Start(-1)
	defer c.opts.Reporter.Finish()

	c.logger.Info("crawl started", "run_id", sum.RunID, "base_url", c.opts.BaseURL)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if c.visited[t.url] {
			continue
		}
		if c.opts.MaxPages > 0 && len(c.visited) >= c.opts.MaxPages {
			c.logger.Info("page limit reached", "max_pages", c.opts.MaxPages)
			break
		}
		c.visited[t.url] = true
		visitCount := len(c.visited)

		// Every page but the root waits a full delay after the previous
		// page finished, however long that page took.
		if visitCount > 1 {
			if err := c.pause(ctx); err != nil {
				return sum, err
			}
		}

		c.opts.Reporter.Update(visitCount, t.url)
		c.logger.Info("scraping", "url", t.url)

		records, links, err := c.scrape(ctx, t, visitCount)
		entry := PageEntry{RunID: sum.RunID, URL: t.url, Records: records}
		switch {
		case errors.Is(err, errNotHTML):
			sum.Skipped++
			entry.Status = StatusSkipped
			entry.Error = err.Error()
			c.logger.Info("skipping non-HTML page", "url", t.url)
		case err != nil:
			sum.Failed++
			entry.Status = StatusFailed
			entry.Error = err.Error()
			c.logger.Warn("scrape failed", "url", t.url, "error", err)
		default:
			sum.Scraped++
			entry.Status = StatusScraped
		}
		sum.Records += records

		if c.opts.Ledger != nil {
			if lerr := c.opts.Ledger.Append(ctx, entry); lerr != nil {
				c.logger.Warn("recording crawl page", "url", t.url, "error", lerr)
			}
		}

		// Push in reverse so the first link on the page is visited next.
		for i := len(links) - 1; i >= 0; i-- {
			if !c.visited[links[i].url] {
				stack = append(stack, links[i])
			}
		}
	}

	c.logger.Info("crawl finished",
		"run_id", sum.RunID,
		"scraped", sum.Scraped,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"records", sum.Records)
	return sum, nil
}

// pause blocks for the configured delay or until ctx is done.
func (c *Crawler) pause(ctx context.Context) error {
	if c.opts.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(c.opts.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scrape fetches one page, hands its records to the sink and returns the
// internal links to follow.
func (c *Crawler) scrape(ctx context.Context, t task, visitCount int) (int, []task, error) {
	pageURL, err := url.Parse(t.url)
	if err != nil {
		return 0, nil, fmt.Errorf("parsing url: %w", err)
	}

	body, err := c.get(ctx, t.url)
	if err != nil {
		return 0, nil, err
	}

	isHTML, err := c.isHTML(ctx, t.url)
	if err != nil {
		c.logger.Warn("checking content type", "url", t.url, "error", err)
	}
	if !isHTML {
		return 0, nil, errNotHTML
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("parsing html: %w", err)
	}
	pg := extract(doc, pageURL, c.opts.FileExtensions)

	written := 0
	for _, p := range pg.Paragraphs {
		rec := Record{
			Topic:  t.topic,
			Path:   t.path,
			Text:   p.Text,
			Files:  pg.Files,
			Tables: pg.Tables,
		}
		name := fmt.Sprintf("%s_%d_%d.json", t.topic, visitCount, p.Index)
		if err := c.opts.Sink.Write(ctx, name, rec); err != nil {
			return written, nil, fmt.Errorf("writing %s: %w", name, err)
		}
		written++
	}

	var links []task
	for _, link := range pg.Links {
		if !strings.HasPrefix(link, c.opts.BaseURL) {
			continue
		}
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		topic, path := topicAndPath(u)
		links = append(links, task{url: link, topic: topic, path: path})
	}
	return written, links, nil
}

func (c *Crawler) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching page: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	return body, nil
}

// isHTML asks the server for the content type of rawURL with a HEAD
// request, following redirects.
func (c *Crawler) isHTML(ctx context.Context, rawURL string) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return strings.Contains(resp.Header.Get("Content-Type"), "text/html"), nil
}

func (c *Crawler) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	return req, nil
}
