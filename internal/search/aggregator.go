package search

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/ratelimit"
)

// Paging limits of the provider and the bounds callers are clamped to.
const (
	PageSize = 10
	MaxStart = 100

	MinPerQueryCap = 10
	MaxPerQueryCap = 50
	MinTarget      = 10
	MaxTarget      = 100
)

// Result is the outcome of one aggregation run.
type Result struct {
	// Merged is in first-seen order.
	Merged []*model.MergedResult
	// ProviderCalls counts live provider requests, cache hits excluded.
	ProviderCalls int
	// CacheHits counts pages served from the page cache.
	CacheHits int
}

// pageLookup is implemented by providers that can serve a page without a
// live call. Such pages bypass the throttle.
type pageLookup interface {
	Lookup(ctx context.Context, query string, start, num int) ([]model.RawResult, bool)
}

// Aggregator runs expanded queries against a Provider sequentially.
type Aggregator struct {
	provider Provider
	throttle ratelimit.Throttle
}

// NewAggregator returns an Aggregator that waits on throttle before every
// live provider call. A nil throttle never blocks.
func NewAggregator(provider Provider, throttle ratelimit.Throttle) *Aggregator {
	if throttle == nil {
		throttle = ratelimit.Nop{}
	}
	return &Aggregator{provider: provider, throttle: throttle}
}

// Aggregate pages through each query in order and merges results by link.
// targetCount is clamped to [MinTarget, MaxTarget] and perQueryCap to
// [MinPerQueryCap, MaxPerQueryCap]. The first provider failure aborts the
// run with a *model.ProviderError; no partial result is returned.
func (a *Aggregator) Aggregate(ctx context.Context, queries []model.ScreeningQuery, targetCount, perQueryCap int) (*Result, error) {
	target := clamp(targetCount, MinTarget, MaxTarget)
	capPerQuery := clamp(perQueryCap, MinPerQueryCap, MaxPerQueryCap)
	log := zap.L().With(zap.Int("target", target), zap.Int("per_query_cap", capPerQuery))

	res := &Result{}
	byLink := make(map[string]*model.MergedResult)

	for _, q := range queries {
		if len(res.Merged) >= target {
			break
		}

		fetched := 0
		for start := 1; start <= MaxStart && fetched < capPerQuery; start += PageSize {
			if len(res.Merged) >= target {
				break
			}

			items, err := a.page(ctx, q, start, res)
			if err != nil {
				return nil, err
			}
			log.Debug("search: page fetched",
				zap.String("query_id", q.ID),
				zap.Int("start", start),
				zap.Int("items", len(items)),
			)
			if len(items) == 0 {
				break
			}
			if remaining := capPerQuery - fetched; len(items) > remaining {
				items = items[:remaining]
			}
			fetched += len(items)

			for _, it := range items {
				merge(res, byLink, it, q.ID)
				if len(res.Merged) >= target {
					log.Debug("search: target reached", zap.String("query_id", q.ID))
					return res, nil
				}
			}
		}
	}

	return res, nil
}

func (a *Aggregator) page(ctx context.Context, q model.ScreeningQuery, start int, res *Result) ([]model.RawResult, error) {
	if lp, ok := a.provider.(pageLookup); ok {
		if items, hit := lp.Lookup(ctx, q.Text, start, PageSize); hit {
			res.CacheHits++
			return items, nil
		}
	}

	if err := a.throttle.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "search: throttle")
	}
	res.ProviderCalls++

	items, err := a.provider.FetchPage(ctx, q.Text, start, PageSize)
	if err != nil {
		return nil, eris.Wrap(model.NewProviderError(q.ID, statusOf(err), err), "search: fetch page")
	}
	return items, nil
}

// merge folds r into the result set. Blank links are dropped; a repeated
// link only gains the query id, the first-seen fields are kept.
func merge(res *Result, byLink map[string]*model.MergedResult, r model.RawResult, queryID string) {
	link := strings.TrimSpace(r.Link)
	if link == "" {
		return
	}
	if m, ok := byLink[link]; ok {
		m.AddHit(queryID)
		return
	}
	r.Link = link
	m := model.NewMergedResult(r, queryID)
	byLink[link] = m
	res.Merged = append(res.Merged, m)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
