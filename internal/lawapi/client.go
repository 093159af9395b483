// Package lawapi implements the client for the law.go.kr DRF open API.
//
// The upstream exposes eight endpoints (0-7) across two base URLs with
// heterogeneous JSON shapes; this package turns each call into a RawRecord
// and classifies failures into transient and permanent ones.
package lawapi

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/lawglot/lawglot-go/internal/conf"
	"github.com/lawglot/lawglot-go/internal/errors"
	"github.com/lawglot/lawglot-go/internal/logging"
	"github.com/lawglot/lawglot-go/internal/observability"
)

// Package-level logger specific to the lawapi service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	serviceLevelVar.Set(slog.LevelDebug)
	logger, closeLogger, err = logging.NewFileLogger("logs/lawapi.log", "lawapi", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize lawapi file logger: %v. Using default logger.", err)
		logger = slog.Default().With("service", "lawapi")
		closeLogger = func() error { return nil }
	}
}

// Config holds the client configuration.
type Config struct {
	OC         string        // API key
	SearchURL  string        // lawSearch.do base URL
	ServiceURL string        // lawService.do base URL
	Timeout    time.Duration // per-call timeout
	Sleep      time.Duration // courtesy delay between calls
	MaxRetries int           // attempts for transient failures
	RetryDelay time.Duration // base backoff, multiplied by attempt number
	CacheTTL   time.Duration // response cache TTL
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		SearchURL:  "https://www.law.go.kr/DRF/lawSearch.do",
		ServiceURL: "https://www.law.go.kr/DRF/lawService.do",
		Timeout:    6 * time.Second,
		Sleep:      300 * time.Millisecond,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
		CacheTTL:   6 * time.Hour,
	}
}

// ConfigFromSettings builds a Config from loaded application settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	cfg := DefaultConfig()
	cfg.OC = settings.LawAPI.OC
	if settings.LawAPI.SearchURL != "" {
		cfg.SearchURL = settings.LawAPI.SearchURL
	}
	if settings.LawAPI.ServiceURL != "" {
		cfg.ServiceURL = settings.LawAPI.ServiceURL
	}
	if settings.LawAPI.Timeout > 0 {
		cfg.Timeout = settings.LawAPI.Timeout
	}
	if settings.LawAPI.Sleep > 0 {
		cfg.Sleep = settings.LawAPI.Sleep
	}
	if settings.LawAPI.MaxRetries > 0 {
		cfg.MaxRetries = settings.LawAPI.MaxRetries
	}
	if settings.LawAPI.RetryDelay > 0 {
		cfg.RetryDelay = settings.LawAPI.RetryDelay
	}
	if settings.LawAPI.CacheTTL > 0 {
		cfg.CacheTTL = settings.LawAPI.CacheTTL
	}
	return cfg
}

// Client provides methods for calling the law.go.kr DRF API.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache
	metrics    *observability.Metrics

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates a new DRF API client.
func NewClient(config Config) (*Client, error) {
	if config.OC == "" {
		return nil, errors.Newf("law.go.kr API key is required, set LAWGO_OC").
			Component("lawapi").
			Category(errors.CategoryConfiguration).
			Build()
	}
	defaults := DefaultConfig()
	if config.SearchURL == "" {
		config.SearchURL = defaults.SearchURL
	}
	if config.ServiceURL == "" {
		config.ServiceURL = defaults.ServiceURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = defaults.CacheTTL
	}

	client := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		cache:      cache.New(config.CacheTTL, config.CacheTTL*2),
	}

	logger.Info("lawapi client initialized",
		"search_url", config.SearchURL,
		"service_url", config.ServiceURL,
		"timeout", config.Timeout,
		"sleep", config.Sleep,
		"max_retries", config.MaxRetries)
	return client, nil
}

// SetMetrics attaches a metrics instance; nil disables metric updates.
func (c *Client) SetMetrics(metrics *observability.Metrics) {
	c.metrics = metrics
}

// Close cleans up client resources.
func (c *Client) Close() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing lawapi logger: %v", err)
		}
	}
}

// Call issues one upstream request. Parameters are validated before any
// network I/O; transient failures are retried up to MaxRetries with linear
// backoff; permanent failures surface immediately.
func (c *Client) Call(ctx context.Context, endpoint Endpoint, params *Params) (*RawRecord, error) {
	if params == nil {
		params = &Params{}
	}
	if err := validateParams(endpoint, params); err != nil {
		return nil, err
	}

	requestURL := c.buildURL(endpoint, params)
	cacheKey := endpoint.Target() + "?" + requestURL

	// Listing pages are crawled once per run and must not be served stale.
	cacheable := endpoint != EndpointLegalList
	if cacheable {
		if cached, found := c.cache.Get(cacheKey); found {
			if record, ok := cached.(*RawRecord); ok {
				logger.Debug("cache hit", "endpoint", endpoint.String())
				return record, nil
			}
		}
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	record, err := c.callWithRetry(ctx, endpoint, requestURL)
	if err != nil {
		if c.metrics != nil {
			class := "permanent"
			if errors.IsTransient(err) {
				class = "transient"
			}
			c.metrics.APIErrors.WithLabelValues(endpoint.Target(), class).Inc()
		}
		return nil, err
	}

	if cacheable {
		c.cache.Set(cacheKey, record, cache.DefaultExpiration)
	}
	return record, nil
}

// throttle enforces the courtesy delay between consecutive upstream calls.
func (c *Client) throttle(ctx context.Context) error {
	if c.config.Sleep <= 0 {
		return nil
	}
	c.mu.Lock()
	now := time.Now()
	wait := c.config.Sleep - now.Sub(c.lastCall)
	if wait < 0 {
		wait = 0
	}
	// Reserve the next slot so concurrent callers queue up behind each other.
	c.lastCall = now.Add(wait)
	c.mu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.New(ctx.Err()).
			Component("lawapi").
			Category(errors.CategoryTimeout).
			Build()
	case <-timer.C:
		return nil
	}
}

func (c *Client) buildURL(endpoint Endpoint, params *Params) string {
	spec := endpointSpecs[endpoint]
	base := c.config.SearchURL
	if spec.service {
		base = c.config.ServiceURL
	}

	query := url.Values{}
	query.Set("OC", c.config.OC)
	query.Set("target", spec.target)
	query.Set("type", "JSON")
	if params.Query != "" {
		query.Set("query", params.Query)
	}
	if params.MST != "" {
		query.Set("MST", params.MST)
	}
	if params.ID != "" {
		query.Set("ID", params.ID)
	}
	if params.Gana != "" {
		query.Set("gana", params.Gana)
	}
	if spec.paged {
		if params.Display > 0 {
			query.Set("display", strconv.Itoa(params.Display))
		}
		if params.Page > 0 {
			query.Set("page", strconv.Itoa(params.Page))
		}
	}
	return base + "?" + query.Encode()
}

// callWithRetry executes the HTTP request with retry logic for transient failures.
func (c *Client) callWithRetry(ctx context.Context, endpoint Endpoint, requestURL string) (*RawRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		isLastAttempt := attempt == c.config.MaxRetries
		attemptLogger := logger.With("endpoint", endpoint.String(), "attempt", attempt, "max_attempts", c.config.MaxRetries)

		record, err := c.doRequest(ctx, endpoint, requestURL)
		if err == nil {
			if c.metrics != nil {
				c.metrics.APICalls.WithLabelValues(endpoint.Target()).Inc()
			}
			return record, nil
		}

		if !errors.IsTransient(err) {
			attemptLogger.Warn("permanent upstream failure", "error", err)
			return nil, err
		}

		lastErr = err
		if isLastAttempt {
			break
		}
		if c.metrics != nil {
			c.metrics.APIRetries.Inc()
		}
		backoff := c.config.RetryDelay * time.Duration(attempt)
		attemptLogger.Warn("transient upstream failure, retrying", "error", err, "backoff", backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.New(ctx.Err()).
				Component("lawapi").
				Category(errors.CategoryTimeout).
				Context("endpoint", int(endpoint)).
				Build()
		case <-timer.C:
		}
	}

	return nil, errors.Newf("endpoint %s failed after %d attempts: %w", endpoint, c.config.MaxRetries, lastErr).
		Component("lawapi").
		Category(errors.CategoryNetwork).
		Context("endpoint", int(endpoint)).
		Build()
}

// doRequest performs one HTTP round trip and classifies the outcome.
func (c *Client) doRequest(ctx context.Context, endpoint Endpoint, requestURL string) (*RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, errors.New(err).
			Component("lawapi").
			Category(errors.CategoryValidation).
			Build()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		category := errors.CategoryNetwork
		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			category = errors.CategoryTimeout
		}
		return nil, errors.New(err).
			Component("lawapi").
			Category(category).
			Context("endpoint", int(endpoint)).
			Build()
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.Newf("upstream rate limit hit (status %d)", resp.StatusCode).
			Component("lawapi").
			Category(errors.CategoryRateLimit).
			Context("endpoint", int(endpoint)).
			Build()
	case resp.StatusCode >= 500:
		return nil, errors.Newf("upstream server error (status %d)", resp.StatusCode).
			Component("lawapi").
			Category(errors.CategoryNetwork).
			Context("endpoint", int(endpoint)).
			Build()
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Newf("unexpected upstream status %d", resp.StatusCode).
			Component("lawapi").
			Category(errors.CategoryHTTP).
			Context("endpoint", int(endpoint)).
			Build()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(err).
			Component("lawapi").
			Category(errors.CategoryNetwork).
			Context("endpoint", int(endpoint)).
			Build()
	}

	return decodeRecord(endpoint, body)
}

// Typed wrappers over Call, one per traversal step.

// SearchLegalTerms queries endpoint 0 (lstrmAI) by keyword.
func (c *Client) SearchLegalTerms(ctx context.Context, query string, page, display int) (*RawRecord, error) {
	return c.Call(ctx, EndpointLegalSearch, &Params{Query: query, Page: page, Display: display})
}

// SearchDailyTerms queries endpoint 1 (dlytrm) by keyword.
func (c *Client) SearchDailyTerms(ctx context.Context, query string, page, display int) (*RawRecord, error) {
	return c.Call(ctx, EndpointDailySearch, &Params{Query: query, Page: page, Display: display})
}

// ListLegalTerms pages through endpoint 2 (lstrm) for one gana code.
func (c *Client) ListLegalTerms(ctx context.Context, gana string, page, display int) (*RawRecord, error) {
	return c.Call(ctx, EndpointLegalList, &Params{Gana: gana, Page: page, Display: display})
}

// DailyToLegal expands a daily term to its legal terms via endpoint 3 (dlytrmRlt).
func (c *Client) DailyToLegal(ctx context.Context, dailyTermID string) (*RawRecord, error) {
	return c.Call(ctx, EndpointDailyToLegal, &Params{MST: dailyTermID})
}

// LegalToArticles expands a legal term to its articles via endpoint 4 (lstrmRltJo).
func (c *Client) LegalToArticles(ctx context.Context, legalTermID string) (*RawRecord, error) {
	return c.Call(ctx, EndpointLegalToArticle, &Params{MST: legalTermID})
}

// LegalToDaily expands a legal term to its daily terms via endpoint 5 (lstrmRlt).
func (c *Client) LegalToDaily(ctx context.Context, legalTermID string) (*RawRecord, error) {
	return c.Call(ctx, EndpointLegalToDaily, &Params{MST: legalTermID})
}

// ArticleToLegal lists the legal terms of an article via endpoint 6 (joRltLstrm).
func (c *Client) ArticleToLegal(ctx context.Context, articleID string) (*RawRecord, error) {
	return c.Call(ctx, EndpointArticleToLegal, &Params{MST: articleID})
}

// FetchArticle fetches a statute article body via endpoint 7 (law).
func (c *Client) FetchArticle(ctx context.Context, articleID string) (*RawRecord, error) {
	return c.Call(ctx, EndpointArticle, &Params{ID: articleID})
}
