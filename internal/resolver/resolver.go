// Package resolver turns colloquial Korean text into legal vocabulary with
// statutory context. For each extracted token it collects daily-term
// candidates (stored relations first, then the live search endpoint), maps
// them to legal terms, and attaches article previews with a one-sentence
// summary. Token lookups fan out concurrently but the response preserves
// token order, and any partial upstream failure degrades to a warning
// instead of failing the whole request.
package resolver

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lawglot/lawglot-go/internal/conf"
	"github.com/lawglot/lawglot-go/internal/datastore"
	"github.com/lawglot/lawglot-go/internal/errors"
	"github.com/lawglot/lawglot-go/internal/lawapi"
	"github.com/lawglot/lawglot-go/internal/logging"
	"github.com/lawglot/lawglot-go/internal/observability"
	"github.com/lawglot/lawglot-go/internal/termgraph"
	"github.com/lawglot/lawglot-go/internal/tokenizer"
)

var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	serviceLevelVar.Set(slog.LevelDebug)
	logger, closeLogger, err = logging.NewFileLogger("logs/resolver.log", "resolver", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize resolver file logger: %v. Using default logger.", err)
		logger = slog.Default().With("service", "resolver")
		closeLogger = func() error { return nil }
	}
}

// TermAPI is the slice of the upstream client the resolver needs.
type TermAPI interface {
	SearchDailyTerms(ctx context.Context, query string, page, display int) (*lawapi.RawRecord, error)
	DailyToLegal(ctx context.Context, dailyTermID string) (*lawapi.RawRecord, error)
	LegalToArticles(ctx context.Context, legalTermID string) (*lawapi.RawRecord, error)
	FetchArticle(ctx context.Context, articleID string) (*lawapi.RawRecord, error)
}

// Store is the slice of the datastore the resolver needs.
type Store interface {
	FindLegalTermsByName(name string, limit int) ([]datastore.LegalTerm, error)
	RelationsForLegalTerm(legalTermID string, limit int) ([]datastore.TermRelation, error)
	ApplyBatch(batch *datastore.NormalizedBatch, meta *datastore.BatchMeta) (datastore.UpsertSummary, error)
}

// Config tunes one resolution run.
type Config struct {
	TopK            int           // keyword cap
	DailyPerKeyword int           // daily-term candidates per keyword
	LegalPerDaily   int           // legal terms expanded per daily term
	ArticlePreview  int           // articles kept per legal term
	SummaryLimit    int           // summary length cap in runes
	Budget          time.Duration // wall-clock budget per request
	Concurrency     int           // concurrent token lookups
}

// ConfigFromSettings derives resolver configuration from loaded settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	return Config{
		TopK:            settings.Resolve.TopK,
		DailyPerKeyword: settings.Resolve.DailyPerKeyword,
		LegalPerDaily:   settings.Resolve.LegalPerDaily,
		ArticlePreview:  settings.Resolve.ArticlePreview,
		SummaryLimit:    settings.Resolve.SummaryLimit,
		Budget:          settings.Resolve.Budget,
		Concurrency:     settings.Resolve.Concurrency,
	}
}

func (c *Config) applyDefaults() {
	if c.TopK <= 0 {
		c.TopK = 8
	}
	if c.DailyPerKeyword <= 0 {
		c.DailyPerKeyword = 3
	}
	if c.LegalPerDaily <= 0 {
		c.LegalPerDaily = 5
	}
	if c.ArticlePreview < 0 {
		c.ArticlePreview = 0
	}
	if c.SummaryLimit <= 0 {
		c.SummaryLimit = 160
	}
	if c.Budget <= 0 {
		c.Budget = 20 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
}

// Request is one translation request. Zero-valued tuning fields fall back to
// the service configuration.
type Request struct {
	Text            string `json:"text"`
	TopK            int    `json:"top_k,omitempty"`
	DailyPerKeyword int    `json:"daily_per_keyword,omitempty"`
	LegalPerDaily   int    `json:"legal_per_daily,omitempty"`
}

// Article is one statute article attached to a legal term.
type Article struct {
	LawID         string `json:"law_id,omitempty"`
	LawName       string `json:"law_name,omitempty"`
	ArticleNumber string `json:"article_number,omitempty"`
	OrderNumber   string `json:"order_number,omitempty"`
	Content       string `json:"content,omitempty"`
	TermTypeCode  string `json:"term_type_code,omitempty"`
	TermType      string `json:"term_type,omitempty"`
}

// LegalCandidate is one legal term reached from a daily term.
type LegalCandidate struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	RelationCode string    `json:"relation_code,omitempty"`
	Relation     string    `json:"relation,omitempty"`
	Note         string    `json:"note,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Articles     []Article `json:"articles,omitempty"`
}

// DailyCandidate is one daily term matched for a token.
type DailyCandidate struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	Source     string           `json:"source,omitempty"`
	Keyword    string           `json:"keyword"`
	LegalTerms []LegalCandidate `json:"legal_terms"`
}

// TokenBundle groups the candidates of one extracted token.
type TokenBundle struct {
	Token      string           `json:"token"`
	DailyTerms []DailyCandidate `json:"daily_terms"`
}

// Response is the full resolution result.
type Response struct {
	Tokens   []TokenBundle `json:"tokens"`
	Keywords []string      `json:"keywords,omitempty"`
	Warnings []string      `json:"warnings"`
}

// Service resolves colloquial text against the term graph.
type Service struct {
	api     TermAPI
	store   Store
	config  Config
	metrics *observability.Metrics
}

// New creates a resolution service. Store and metrics may be nil; without a
// store every lookup goes straight to the upstream API.
func New(api TermAPI, store Store, config Config, metrics *observability.Metrics) *Service {
	config.applyDefaults()
	return &Service{api: api, store: store, config: config, metrics: metrics}
}

// Close releases service resources.
func (s *Service) Close() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing resolver logger: %v", err)
		}
	}
}

// Resolve runs the full token-to-article pipeline for one request.
func (s *Service) Resolve(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.Text == "" {
		return nil, errors.Newf("text is required").
			Component("resolver").
			Category(errors.CategoryValidation).
			Build()
	}

	cfg := s.config
	if req.TopK > 0 {
		cfg.TopK = req.TopK
	}
	if req.DailyPerKeyword > 0 {
		cfg.DailyPerKeyword = req.DailyPerKeyword
	}
	if req.LegalPerDaily > 0 {
		cfg.LegalPerDaily = req.LegalPerDaily
	}

	start := time.Now()
	if s.metrics != nil {
		s.metrics.ResolveRequests.Inc()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Budget)
	defer cancel()

	// Expansion terms are searched per token below, so keyword extraction
	// itself stays unexpanded.
	tokens := tokenizer.ExtractKeywords(req.Text, tokenizer.Options{TopK: cfg.TopK})

	response := &Response{
		Tokens:   make([]TokenBundle, len(tokens)),
		Keywords: tokens,
		Warnings: []string{},
	}
	if len(tokens) == 0 {
		response.Warnings = append(response.Warnings, "no keywords extracted from input text")
		return response, nil
	}

	tokenWarnings := make([][]string, len(tokens))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Concurrency)
	for idx, token := range tokens {
		group.Go(func() error {
			bundle, warnings := s.resolveToken(groupCtx, token, cfg)
			response.Tokens[idx] = bundle
			tokenWarnings[idx] = warnings
			return nil
		})
	}
	// Worker errors all degrade to warnings, so Wait only observes ctx.
	_ = group.Wait()

	for _, warnings := range tokenWarnings {
		response.Warnings = append(response.Warnings, warnings...)
	}

	if s.metrics != nil {
		s.metrics.ResolveDuration.Observe(time.Since(start).Seconds())
		s.metrics.ResolveWarnings.Add(float64(len(response.Warnings)))
	}
	logger.Info("request resolved",
		"tokens", len(tokens),
		"warnings", len(response.Warnings),
		"elapsed", time.Since(start))
	return response, nil
}

// resolveToken builds the candidate bundle for one token. All failures along
// the way become warnings; the bundle keeps whatever was collected.
func (s *Service) resolveToken(ctx context.Context, token string, cfg Config) (TokenBundle, []string) {
	bundle := TokenBundle{Token: token, DailyTerms: []DailyCandidate{}}
	var warnings []string
	seenDaily := make(map[string]struct{})

	// stored relations first, no upstream calls involved
	for _, candidate := range s.storedCandidates(token, cfg, &warnings) {
		if len(bundle.DailyTerms) >= cfg.DailyPerKeyword {
			break
		}
		if _, dup := seenDaily[candidate.ID]; dup {
			continue
		}
		seenDaily[candidate.ID] = struct{}{}
		bundle.DailyTerms = append(bundle.DailyTerms, candidate)
	}

	// then the live search: the token itself plus its expansion terms
	searchTerms := append([]string{token}, tokenizer.ExpandRelated(token)...)
	for _, term := range searchTerms {
		if len(bundle.DailyTerms) >= cfg.DailyPerKeyword {
			break
		}
		if ctx.Err() != nil {
			warnings = append(warnings, warnf("daily search timed out for %q", term))
			break
		}
		display := cfg.DailyPerKeyword
		if display < 20 {
			display = 20
		}
		record, err := s.api.SearchDailyTerms(ctx, term, 1, display)
		if err != nil {
			warnings = append(warnings, warnf("daily search failed for %q: %v", term, err))
			continue
		}
		s.persistDaily(term, record.Items)

		for _, item := range record.Items {
			if len(bundle.DailyTerms) >= cfg.DailyPerKeyword {
				break
			}
			daily := termgraph.DailyTermFromItem(item)
			if daily.ID == "" {
				continue
			}
			if _, dup := seenDaily[daily.ID]; dup {
				continue
			}
			seenDaily[daily.ID] = struct{}{}

			legalTerms := s.expandDaily(ctx, daily.ID, cfg, &warnings)
			bundle.DailyTerms = append(bundle.DailyTerms, DailyCandidate{
				ID:         daily.ID,
				Name:       daily.Name,
				Source:     daily.Source,
				Keyword:    token,
				LegalTerms: legalTerms,
			})
		}
	}

	if len(bundle.DailyTerms) == 0 {
		warnings = append(warnings, warnf("no daily terms found for %q", token))
	}
	return bundle, warnings
}

// storedCandidates derives daily-term candidates from persisted relations:
// legal terms whose name contains the token, expanded through their stored
// daily-term relations.
func (s *Service) storedCandidates(token string, cfg Config, warnings *[]string) []DailyCandidate {
	if s.store == nil {
		return nil
	}
	const maxStoredLegal = 50

	legalTerms, err := s.store.FindLegalTermsByName(token, maxStoredLegal)
	if err != nil {
		*warnings = append(*warnings, warnf("stored lookup failed for %q: %v", token, err))
		return nil
	}

	maxDaily := cfg.DailyPerKeyword * 2
	byDaily := make(map[string]*DailyCandidate)
	var order []string

	for _, legal := range legalTerms {
		relations, err := s.store.RelationsForLegalTerm(legal.ID, maxDaily)
		if err != nil {
			*warnings = append(*warnings, warnf("stored relations failed for %q: %v", legal.ID, err))
			continue
		}
		for _, rel := range relations {
			candidate := LegalCandidate{
				ID:           legal.ID,
				Name:         legal.Name,
				RelationCode: rel.RelationCode,
				Relation:     rel.Relation,
				Note:         legal.Note,
			}
			if existing, ok := byDaily[rel.DailyTermID]; ok {
				if len(existing.LegalTerms) < cfg.LegalPerDaily {
					existing.LegalTerms = append(existing.LegalTerms, candidate)
				}
				continue
			}
			if len(byDaily) >= maxDaily {
				break
			}
			byDaily[rel.DailyTermID] = &DailyCandidate{
				ID:         rel.DailyTermID,
				Name:       rel.DailyTermName,
				Source:     "store:relations",
				Keyword:    token,
				LegalTerms: []LegalCandidate{candidate},
			}
			order = append(order, rel.DailyTermID)
		}
		if len(byDaily) >= maxDaily {
			break
		}
	}

	candidates := make([]DailyCandidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, *byDaily[id])
	}
	return candidates
}

// expandDaily maps one daily term to its legal terms and attaches article
// previews with a summary.
func (s *Service) expandDaily(ctx context.Context, dailyID string, cfg Config, warnings *[]string) []LegalCandidate {
	candidates := []LegalCandidate{}

	mapped, err := s.api.DailyToLegal(ctx, dailyID)
	if err != nil {
		*warnings = append(*warnings, warnf("daily-to-legal failed for %q: %v", dailyID, err))
		return candidates
	}

	for _, item := range mapped.Items {
		if len(candidates) >= cfg.LegalPerDaily {
			break
		}
		legal := termgraph.RelatedLegalFromItem(item)
		if legal.ID == "" {
			continue
		}

		candidate := LegalCandidate{
			ID:           legal.ID,
			Name:         legal.Name,
			RelationCode: legal.RelationCode,
			Relation:     legal.Relation,
			Note:         legal.Note,
		}

		articleRecord, err := s.api.LegalToArticles(ctx, legal.ID)
		if err != nil {
			*warnings = append(*warnings, warnf("legal-to-article failed for %q: %v", legal.ID, err))
		} else {
			contents := make([]string, 0, len(articleRecord.Items))
			for _, articleItem := range articleRecord.Items {
				article := termgraph.ArticleFromItem(articleItem)
				if article.Content == "" && article.LawID != "" && len(candidate.Articles) < cfg.ArticlePreview {
					article.Content = s.fetchArticleBody(ctx, article.LawID, warnings)
				}
				contents = append(contents, article.Content)
				if len(candidate.Articles) < cfg.ArticlePreview {
					candidate.Articles = append(candidate.Articles, Article{
						LawID:         article.LawID,
						LawName:       article.LawName,
						ArticleNumber: article.ArticleNumber,
						OrderNumber:   article.OrderNumber,
						Content:       article.Content,
						TermTypeCode:  article.TermTypeCode,
						TermType:      article.TermType,
					})
				}
			}
			candidate.Summary = pickSummary(contents, cfg.SummaryLimit)
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

// persistDaily writes live-fetched daily terms back to the store so later
// lookups for the same vocabulary are served locally. Persistence is best
// effort; a write failure never degrades the response.
func (s *Service) persistDaily(term string, items []lawapi.Item) {
	if s.store == nil || len(items) == 0 {
		return
	}
	batch := termgraph.BuildDailyBatch(items)
	if len(batch.DailyTerms) == 0 {
		return
	}
	meta := &datastore.BatchMeta{
		Key:      "resolve:daily:" + term,
		RunID:    uuid.New().String(),
		Strategy: "resolve",
	}
	if _, err := s.store.ApplyBatch(batch, meta); err != nil {
		logger.Warn("failed to persist daily terms", "term", term, "error", err)
	}
}

// fetchArticleBody fills in a missing article body via the statute endpoint.
func (s *Service) fetchArticleBody(ctx context.Context, lawID string, warnings *[]string) string {
	record, err := s.api.FetchArticle(ctx, lawID)
	if err != nil {
		*warnings = append(*warnings, warnf("article fetch failed for %q: %v", lawID, err))
		return ""
	}
	for _, item := range record.Items {
		if content := item.Get("조문내용", "법령내용"); content != "" {
			return content
		}
	}
	return ""
}

func warnf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
