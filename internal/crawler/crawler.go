// Package crawler walks the upstream term registry and persists the
// normalized term graph. Two strategies exist: "lstrm" sweeps the legal-term
// listing by initial-consonant group, "relations" expands every stored legal
// term to its daily-term relations. Both commit in batches and persist a
// cursor after each commit so an interrupted run resumes where it stopped.
package crawler

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lawglot/lawglot-go/internal/conf"
	"github.com/lawglot/lawglot-go/internal/datastore"
	"github.com/lawglot/lawglot-go/internal/errors"
	"github.com/lawglot/lawglot-go/internal/lawapi"
	"github.com/lawglot/lawglot-go/internal/logging"
	"github.com/lawglot/lawglot-go/internal/observability"
)

var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	serviceLevelVar.Set(slog.LevelDebug)
	logger, closeLogger, err = logging.NewFileLogger("logs/crawler.log", "crawler", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize crawler file logger: %v. Using default logger.", err)
		logger = slog.Default().With("service", "crawler")
		closeLogger = func() error { return nil }
	}
}

// State is the orchestrator lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePaging
	StateCommitting
	StateDone
	StateAborted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePaging:
		return "paging"
	case StateCommitting:
		return "committing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// maxConsecutiveTransient is the number of transient upstream failures in a
// row (each already retried inside the API client) that aborts the run.
const maxConsecutiveTransient = 3

// ganaCodes are the initial-consonant group codes the listing endpoint
// accepts, in upstream order.
var ganaCodes = []string{"ga", "na", "da", "ra", "ma", "ba", "sa", "aa", "ja", "cha", "ka", "ta", "pa", "ha"}

// TermAPI is the slice of the upstream client the crawler needs.
type TermAPI interface {
	ListLegalTerms(ctx context.Context, gana string, page, display int) (*lawapi.RawRecord, error)
	LegalToDaily(ctx context.Context, legalTermID string) (*lawapi.RawRecord, error)
}

// Store is the slice of the datastore the crawler needs.
type Store interface {
	ApplyBatch(batch *datastore.NormalizedBatch, meta *datastore.BatchMeta) (datastore.UpsertSummary, error)
	GetCursor(strategy string) (*datastore.CrawlCursor, error)
	SaveCursor(cursor *datastore.CrawlCursor) error
	ListLegalTermIDs() ([]string, error)
}

// Options controls one crawl run.
type Options struct {
	Display    int  // page size for listing calls
	FlushEvery int  // relation seeds per commit
	MaxTerms   int  // stop after this many terms, 0 means unlimited
	Resume     bool // continue from the persisted cursor
}

// OptionsFromSettings derives crawl options from loaded settings.
func OptionsFromSettings(settings *conf.Settings) Options {
	return Options{
		Display:    settings.Crawl.Display,
		FlushEvery: settings.Crawl.FlushEvery,
		MaxTerms:   settings.Crawl.MaxTerms,
	}
}

// Progress is a snapshot of a running crawl for status display.
type Progress struct {
	State     State
	Strategy  string
	Gana      string
	Page      int
	SeedIndex int
	SeedTotal int
	Committed int
	StartedAt time.Time
}

// Crawler orchestrates one crawl strategy against the upstream API and the
// datastore.
type Crawler struct {
	api     TermAPI
	store   Store
	opts    Options
	metrics *observability.Metrics
	runID   string

	mu                  sync.Mutex
	progress            Progress
	consecutiveFailures int
}

// New creates a crawler. Metrics may be nil.
func New(api TermAPI, store Store, opts Options, metrics *observability.Metrics) *Crawler {
	if opts.Display <= 0 {
		opts.Display = 100
	}
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = 200
	}
	return &Crawler{
		api:     api,
		store:   store,
		opts:    opts,
		metrics: metrics,
		runID:   uuid.New().String(),
	}
}

// Progress returns a snapshot of the current run.
func (c *Crawler) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Run executes the named strategy until it completes, aborts, or ctx is
// cancelled. A cancelled or aborted run leaves its cursor behind and can be
// resumed later with Options.Resume.
func (c *Crawler) Run(ctx context.Context, strategy string) error {
	c.mu.Lock()
	c.progress = Progress{State: StatePaging, Strategy: strategy, StartedAt: time.Now()}
	c.consecutiveFailures = 0
	c.mu.Unlock()

	logger.Info("crawl starting", "strategy", strategy, "run_id", c.runID, "resume", c.opts.Resume)

	var err error
	switch strategy {
	case "lstrm":
		err = c.runListing(ctx)
	case "relations":
		err = c.runRelations(ctx)
	default:
		err = errors.Newf("unknown crawl strategy %q, expected lstrm or relations", strategy).
			Component("crawler").
			Category(errors.CategoryValidation).
			Build()
	}

	c.mu.Lock()
	if err != nil {
		c.progress.State = StateAborted
	} else {
		c.progress.State = StateDone
	}
	c.mu.Unlock()

	if err != nil {
		logger.Error("crawl stopped", "strategy", strategy, "run_id", c.runID, "error", err)
		return err
	}
	logger.Info("crawl complete", "strategy", strategy, "run_id", c.runID,
		"rows_committed", c.Progress().Committed)
	return nil
}

// Close releases crawler resources.
func (c *Crawler) Close() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing crawler logger: %v", err)
		}
	}
}

// noteFailure tracks consecutive transient failures and converts the third
// one into an abort. Permanent failures abort immediately on listing pages
// but are merely counted by the caller for per-seed work.
func (c *Crawler) noteFailure(strategy string, err error) error {
	if !errors.IsTransient(err) {
		return err
	}
	c.mu.Lock()
	c.consecutiveFailures++
	failures := c.consecutiveFailures
	c.mu.Unlock()

	if failures < maxConsecutiveTransient {
		logger.Warn("transient failure, continuing", "strategy", strategy,
			"consecutive", failures, "error", err)
		return nil
	}
	if c.metrics != nil {
		c.metrics.CrawlAborts.WithLabelValues(strategy).Inc()
	}
	return errors.Newf("aborting after %d consecutive transient failures: %w", failures, err).
		Component("crawler").
		Category(errors.CategoryCrawl).
		Context("strategy", strategy).
		Build()
}

// noteSuccess resets the consecutive failure counter.
func (c *Crawler) noteSuccess() {
	c.mu.Lock()
	c.consecutiveFailures = 0
	c.mu.Unlock()
}

// commit applies one batch with its meta record and updates counters.
func (c *Crawler) commit(strategy string, batch *datastore.NormalizedBatch, meta *datastore.BatchMeta) error {
	if batch.Empty() {
		return nil
	}
	c.mu.Lock()
	c.progress.State = StateCommitting
	c.mu.Unlock()

	summary, err := c.store.ApplyBatch(batch, meta)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.progress.Committed += summary.Total()
	c.progress.State = StatePaging
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.BatchesCommitted.WithLabelValues(strategy).Inc()
		c.metrics.RowsUpserted.WithLabelValues(strategy).Add(float64(summary.Total()))
	}
	logger.Debug("batch committed", "strategy", strategy, "key", meta.Key, "rows", summary.Total())
	return nil
}
