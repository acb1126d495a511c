package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trustcheck/internal/adverse"
	"github.com/sells-group/trustcheck/internal/api"
	"github.com/sells-group/trustcheck/internal/config"
	"github.com/sells-group/trustcheck/internal/cost"
	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/patterns"
	"github.com/sells-group/trustcheck/internal/query"
	"github.com/sells-group/trustcheck/internal/ratelimit"
	"github.com/sells-group/trustcheck/internal/report"
	"github.com/sells-group/trustcheck/internal/resilience"
	"github.com/sells-group/trustcheck/internal/screen"
	"github.com/sells-group/trustcheck/internal/search"
	"github.com/sells-group/trustcheck/internal/store"
	"github.com/sells-group/trustcheck/pkg/google"
)

// screenEnv holds the wired screening service and the resources it owns.
type screenEnv struct {
	Service *screen.Service
	Cache   store.PageCache // nil when caching is disabled
	Health  api.Health
}

// Close releases resources held by the environment.
func (e *screenEnv) Close() {
	if e.Cache != nil {
		if err := e.Cache.Close(); err != nil {
			zap.L().Warn("close cache", zap.Error(err))
		}
	}
}

// patternSource returns the on-disk tables when configured, otherwise the
// embedded ones.
func patternSource(c *config.Config) *patterns.Source {
	if c.Patterns.Dir != "" {
		return patterns.NewDir(c.Patterns.Dir)
	}
	return patterns.Default()
}

func newExpander(c *config.Config) (*query.Expander, error) {
	return query.NewExpander(patternSource(c))
}

// newProvider builds the live search provider. Missing credentials do not
// stop startup; the first screening fails with a provider error instead.
func newProvider(c *config.Config) search.Provider {
	retry := resilience.DefaultPolicy().WithAttempts(c.Google.Retry.MaxAttempts)
	retry.OnRetry = resilience.LogRetry("google")

	opts := []google.Option{
		google.WithTimeout(time.Duration(c.Google.TimeoutSecs) * time.Second),
		google.WithRetry(retry),
	}
	if c.Google.BaseURL != "" {
		opts = append(opts, google.WithBaseURL(c.Google.BaseURL))
	}

	client, err := google.NewClient(c.Google.Key, c.Google.CX, opts...)
	if err != nil {
		zap.L().Warn("google search unavailable", zap.Error(err))
		return search.Unavailable{Err: err}
	}
	return search.NewGoogleProvider(client)
}

// initScreening wires the screening service from c. Callers should defer
// env.Close().
func initScreening(ctx context.Context, c *config.Config) (*screenEnv, error) {
	src := patternSource(c)

	expander, err := query.NewExpander(src)
	if err != nil {
		return nil, err
	}
	classifier, err := adverse.New(src)
	if err != nil {
		return nil, err
	}

	provider := newProvider(c)

	cache, err := store.Open(ctx, c.Cache.Driver, c.Cache.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "init cache")
	}
	if cache != nil {
		provider = search.NewCachedProvider(provider, cache, time.Duration(c.Cache.TTLSecs)*time.Second)
	}

	aggregator := search.NewAggregator(provider, ratelimit.New(c.RateLimit.RPM))
	builder := report.NewBuilder(classifier, model.ResultsPolicy(c.Screen.ResultsPolicy))

	lang, err := model.ParseLanguage(c.Screen.DefaultLanguage, model.LanguageEN)
	if err != nil {
		if cache != nil {
			_ = cache.Close()
		}
		return nil, err
	}

	svc := screen.New(expander, aggregator, builder, cost.NewCalculator(c.Pricing), screen.Options{
		DefaultLanguage:   lang,
		DefaultMaxResults: c.Screen.DefaultMaxResults,
		PerQueryCap:       c.Screen.PerQueryCap,
	})

	zap.L().Info("screening initialized",
		zap.String("patterns", src.Name()),
		zap.String("cache_driver", c.Cache.Driver),
		zap.String("results_policy", string(builder.Policy())),
		zap.Int("rate_limit_rpm", c.RateLimit.RPM),
	)

	return &screenEnv{
		Service: svc,
		Cache:   cache,
		Health: api.Health{
			Version:      version,
			GoogleKeySet: c.Google.Key != "",
			GoogleCxSet:  c.Google.CX != "",
			MaxResults:   svc.Defaults().DefaultMaxResults,
			CacheDriver:  c.Cache.Driver,
		},
	}, nil
}
