// Package audit runs the page audit pipeline: extract features, assemble
// prompts, call the scoring oracle, validate its answer and build the
// report. It owns the cache, metrics and webhook hooks around that core.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/aeoaudit/cache"
	"github.com/use-agent/aeoaudit/extractor"
	"github.com/use-agent/aeoaudit/fetcher"
	"github.com/use-agent/aeoaudit/metrics"
	"github.com/use-agent/aeoaudit/models"
	"github.com/use-agent/aeoaudit/oracle"
	"github.com/use-agent/aeoaudit/prompt"
	"github.com/use-agent/aeoaudit/report"
	"github.com/use-agent/aeoaudit/webhook"
)

// PageFetcher retrieves pages for requests that carry only a URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*fetcher.Page, error)
	FetchRobots(ctx context.Context, pageURL string) string
}

// Deps wires a Service. Only Oracle is required for Audit; every other
// collaborator is optional.
type Deps struct {
	Oracle  oracle.Oracle
	Fetcher PageFetcher
	Cache   *cache.Cache
	Metrics *metrics.Metrics
	Webhook *webhook.Sender
}

// Options holds service-wide defaults.
type Options struct {
	// Model is recorded in report metadata.
	Model         string
	OracleTimeout time.Duration

	// BestPractices is injected into every system prompt.
	BestPractices string

	MaxWords              int
	SchemaCap             int
	SkipLanguageDetection bool
	DefaultMaxAge         time.Duration
}

// Request is one audit input. Either HTML or a fetchable URL is required.
// When HTML is supplied RobotsTxt is used as given and nothing is fetched.
type Request struct {
	URL        string
	HTML       string
	RobotsTxt  string
	MaxWords   int
	SchemaCap  int
	MaxAge     *time.Duration
	WebhookURL string
}

// Timing records how long each stage took.
type Timing struct {
	TotalMs   int64 `json:"total_ms"`
	FetchMs   int64 `json:"fetch_ms"`
	ExtractMs int64 `json:"extract_ms"`
	OracleMs  int64 `json:"oracle_ms"`
}

// Result is a finished audit.
type Result struct {
	Report   *models.TransformedReport
	CacheHit bool
	Timing   Timing
}

// Prompts is the assembled oracle input for a page.
type Prompts struct {
	System          string
	User            string
	EstimatedTokens int
}

// Service is safe for concurrent use.
type Service struct {
	deps  Deps
	opts  Options
	now   func() time.Time
	newID func() string
}

// New creates a Service.
func New(deps Deps, opts Options) *Service {
	if opts.MaxWords <= 0 {
		opts.MaxWords = extractor.DefaultMaxWords
	}
	if opts.SchemaCap <= 0 {
		opts.SchemaCap = extractor.DefaultSchemaCap
	}
	return &Service{
		deps:  deps,
		opts:  opts,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Status describes what the service can do.
type Status struct {
	OracleReady   bool
	FetchEnabled  bool
	CachedReports int
}

// Status reports the wired collaborators.
func (s *Service) Status() Status {
	st := Status{
		OracleReady:  s.deps.Oracle != nil,
		FetchEnabled: s.deps.Fetcher != nil,
	}
	if s.deps.Cache != nil {
		st.CachedReports = s.deps.Cache.Len()
	}
	return st
}

// input is a request with page content resolved.
type input struct {
	url       string
	html      string
	robotsTxt string
	maxWords  int
	schemaCap int
	fetchMs   int64
}

// Features extracts the feature document for a page.
func (s *Service) Features(ctx context.Context, req Request) (models.FeatureDocument, error) {
	in, err := s.resolve(ctx, req)
	if err != nil {
		return models.FeatureDocument{}, err
	}
	return s.extract(in), nil
}

// Prompts extracts a page and assembles the oracle prompts without calling
// the oracle.
func (s *Service) Prompts(ctx context.Context, req Request) (Prompts, models.FeatureDocument, error) {
	doc, err := s.Features(ctx, req)
	if err != nil {
		return Prompts{}, doc, err
	}
	p := s.buildPrompts(doc)
	return Prompts{
		System:          p.System,
		User:            p.User,
		EstimatedTokens: prompt.EstimateTokens(p.System) + prompt.EstimateTokens(p.User),
	}, doc, nil
}

// Audit runs the full pipeline for one page. The oracle is called at most
// once and never retried.
func (s *Service) Audit(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	res, err := s.audit(ctx, req, start)
	elapsed := s.now().Sub(start)

	switch {
	case err != nil:
		s.recordAudit(metrics.OutcomeError, errorCode(err), elapsed)
		slog.Warn("audit failed", "url", req.URL, "code", errorCode(err), "error", err)
		return nil, err
	case res.CacheHit:
		s.recordAudit(metrics.OutcomeCacheHit, "", elapsed)
	default:
		s.recordAudit(metrics.OutcomeSuccess, "", elapsed)
	}
	res.Timing.TotalMs = elapsed.Milliseconds()

	slog.Info("audit completed",
		"id", res.Report.Meta.ID,
		"url", req.URL,
		"score", res.Report.Scores.Overall,
		"cache_hit", res.CacheHit,
		"elapsed", elapsed,
	)

	if req.WebhookURL != "" && s.deps.Webhook != nil && !res.CacheHit {
		s.deps.Webhook.DeliverAsync(req.WebhookURL, &webhook.Event{
			Type:      webhook.EventAuditCompleted,
			AuditID:   res.Report.Meta.ID,
			Timestamp: s.now().Unix(),
			Data:      res.Report,
		})
	}
	return res, nil
}

func (s *Service) audit(ctx context.Context, req Request, start time.Time) (*Result, error) {
	if s.deps.Oracle == nil {
		return nil, models.NewAuditError(models.ErrCodeInternal, "no scoring oracle configured", nil)
	}

	// ── 1. Resolve input ────────────────────────────────────────────
	in, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	res := &Result{Timing: Timing{FetchMs: in.fetchMs}}

	// ── 2. Extract ──────────────────────────────────────────────────
	extractStart := s.now()
	doc := s.extract(in)
	res.Timing.ExtractMs = s.now().Sub(extractStart).Milliseconds()

	fp := cache.Fingerprint(doc.Text)
	key := cache.Key(in.url, in.maxWords, in.schemaCap)

	// ── 3. Cache lookup ─────────────────────────────────────────────
	maxAge := s.opts.DefaultMaxAge
	if req.MaxAge != nil {
		maxAge = *req.MaxAge
	}
	if s.deps.Cache != nil && maxAge > 0 {
		cached, hit := s.deps.Cache.Get(key, fp, maxAge)
		s.recordCache(hit)
		if hit {
			res.Report = cached
			res.CacheHit = true
			return res, nil
		}
	}

	// ── 4. Oracle ───────────────────────────────────────────────────
	oracleStart := s.now()
	raw, err := oracle.Call(ctx, s.deps.Oracle, s.buildPrompts(doc), s.opts.OracleTimeout)
	oracleElapsed := s.now().Sub(oracleStart)
	res.Timing.OracleMs = oracleElapsed.Milliseconds()
	if err != nil {
		s.recordOracle(errorCode(err), oracleElapsed)
		return nil, err
	}
	s.recordOracle("ok", oracleElapsed)

	validated, err := oracle.Parse(raw)
	if err != nil {
		return nil, err
	}
	s.recordViolations(len(validated.Violations))

	// ── 5. Transform ────────────────────────────────────────────────
	meta := models.AnalysisMeta{
		ID:          s.newID(),
		URL:         in.url,
		Model:       s.opts.Model,
		GeneratedAt: start.UTC().Format(time.RFC3339),
		Fingerprint: fmt.Sprintf("%016x", fp),
		Violations:  validated.Violations,
	}
	rep, err := report.Transform(validated.Analysis, doc.Metrics, meta)
	if err != nil {
		return nil, err
	}
	res.Report = rep

	// ── 6. Cache store ──────────────────────────────────────────────
	if s.deps.Cache != nil {
		s.deps.Cache.Set(key, fp, rep)
	}
	return res, nil
}

// resolve validates a request and fetches the page when no HTML was given.
func (s *Service) resolve(ctx context.Context, req Request) (input, error) {
	in := input{
		url:       strings.TrimSpace(req.URL),
		html:      req.HTML,
		robotsTxt: req.RobotsTxt,
		maxWords:  req.MaxWords,
		schemaCap: req.SchemaCap,
	}
	if in.maxWords <= 0 {
		in.maxWords = s.opts.MaxWords
	}
	if in.schemaCap <= 0 {
		in.schemaCap = s.opts.SchemaCap
	}

	if in.url == "" {
		return in, models.NewAuditError(models.ErrCodeInvalidInput, "url is required", nil)
	}
	if strings.TrimSpace(in.html) != "" {
		return in, nil
	}

	u, err := url.Parse(in.url)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return in, models.NewAuditError(models.ErrCodeInvalidInput,
			"url must be an absolute http(s) URL when html is not supplied", err)
	}
	if s.deps.Fetcher == nil {
		return in, models.NewAuditError(models.ErrCodeInvalidInput,
			"html is required: page fetching is not enabled", nil)
	}

	fetchStart := s.now()
	page, err := s.deps.Fetcher.FetchPage(ctx, in.url)
	if err != nil {
		return in, err
	}
	in.html = page.HTML
	in.robotsTxt = s.deps.Fetcher.FetchRobots(ctx, in.url)
	in.fetchMs = s.now().Sub(fetchStart).Milliseconds()
	return in, nil
}

func (s *Service) extract(in input) models.FeatureDocument {
	return extractor.Extract(in.html, in.url, in.robotsTxt, extractor.Options{
		MaxWords:              in.maxWords,
		SchemaCap:             in.schemaCap,
		Now:                   s.now(),
		SkipLanguageDetection: s.opts.SkipLanguageDetection,
	})
}

func (s *Service) buildPrompts(doc models.FeatureDocument) oracle.Prompts {
	return oracle.Prompts{
		System: prompt.BuildSystemPrompt(s.opts.BestPractices),
		User:   prompt.BuildUserPrompt(doc),
	}
}

func errorCode(err error) string {
	var ae *models.AuditError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return models.ErrCodeInternal
}

func (s *Service) recordAudit(outcome, code string, d time.Duration) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordAudit(outcome, code, d)
	}
}

func (s *Service) recordOracle(status string, d time.Duration) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordOracle(status, d)
	}
}

func (s *Service) recordCache(hit bool) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordCache(hit)
	}
}

func (s *Service) recordViolations(n int) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordViolations(n)
	}
}
