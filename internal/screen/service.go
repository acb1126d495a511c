// Package screen composes query expansion, search aggregation and report
// building into a single adverse-media screening.
package screen

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/trustcheck/internal/cost"
	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/query"
	"github.com/sells-group/trustcheck/internal/search"
)

// Expander turns an entity name into search queries.
type Expander interface {
	Expand(name string, lang model.Language) ([]model.ScreeningQuery, error)
}

// Aggregator runs queries against the search provider.
type Aggregator interface {
	Aggregate(ctx context.Context, queries []model.ScreeningQuery, targetCount, perQueryCap int) (*search.Result, error)
}

// Builder analyzes merged results into a report.
type Builder interface {
	Build(query string, merged []*model.MergedResult, lang model.Language) *model.ScreeningReport
}

// Options holds screening defaults.
type Options struct {
	DefaultLanguage   model.Language
	DefaultMaxResults int
	PerQueryCap       int
}

// Service runs screenings. It keeps no state between calls besides what
// its collaborators share, such as the provider throttle.
type Service struct {
	expander   Expander
	aggregator Aggregator
	builder    Builder
	costs      *cost.Calculator
	opts       Options
}

// New returns a Service. A nil calculator reports zero cost.
func New(expander Expander, aggregator Aggregator, builder Builder, costs *cost.Calculator, opts Options) *Service {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = model.LanguageEN
	}
	if opts.DefaultMaxResults <= 0 {
		opts.DefaultMaxResults = 30
	}
	if opts.PerQueryCap <= 0 {
		opts.PerQueryCap = 20
	}
	if costs == nil {
		costs = cost.NewCalculator(cost.Rates{})
	}
	return &Service{
		expander:   expander,
		aggregator: aggregator,
		builder:    builder,
		costs:      costs,
		opts:       opts,
	}
}

// Defaults returns the options the Service applies to omitted arguments.
func (s *Service) Defaults() Options {
	return s.opts
}

// Screen searches for adverse media about entityName. An empty lang uses
// the default language and maxResults <= 0 the default result count; the
// count is clamped to [search.MinTarget, search.MaxTarget]. A blank name is
// rejected before any provider call. Any provider failure fails the whole
// screening and no report is returned.
func (s *Service) Screen(ctx context.Context, entityName string, lang model.Language, maxResults int) (*model.ScreeningReport, error) {
	name := strings.TrimSpace(entityName)
	if name == "" {
		return nil, &model.ValidationError{Field: "query", Reason: "entity name must not be blank"}
	}
	if lang == "" {
		lang = s.opts.DefaultLanguage
	}
	if maxResults <= 0 {
		maxResults = s.opts.DefaultMaxResults
	}
	maxResults = ClampMaxResults(maxResults)

	queries, err := s.expander.Expand(name, lang)
	if err != nil {
		return nil, err
	}
	queries = query.WithFallback(queries, name)

	id := uuid.NewString()
	log := zap.L().With(zap.String("screening_id", id))
	log.Info("screen: started",
		zap.String("entity", name),
		zap.String("language", string(lang)),
		zap.Int("queries", len(queries)),
		zap.Int("max_results", maxResults),
	)
	start := time.Now()

	res, err := s.aggregator.Aggregate(ctx, queries, maxResults, s.opts.PerQueryCap)
	if err != nil {
		log.Error("screen: search failed", zap.Error(err))
		return nil, err
	}

	rep := s.builder.Build(name, res.Merged, lang)
	rep.ID = id
	rep.Queries = queries
	rep.ProviderCalls = res.ProviderCalls
	rep.EstimatedCostUSD = s.costs.Search(res.ProviderCalls)

	log.Info("screen: complete",
		zap.Int("total_analyzed", rep.TotalAnalyzed),
		zap.Int("adverse_count", rep.AdverseCount),
		zap.Int("provider_calls", res.ProviderCalls),
		zap.Int("cache_hits", res.CacheHits),
		zap.Float64("estimated_cost_usd", rep.EstimatedCostUSD),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rep, nil
}

// ClampMaxResults bounds a requested result count to what one screening
// may collect.
func ClampMaxResults(n int) int {
	return min(max(n, search.MinTarget), search.MaxTarget)
}
