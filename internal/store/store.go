// Package store persists search-provider pages so repeated screenings of
// the same entity within the TTL do not spend provider quota.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Cache drivers accepted by Open.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Drivers lists the accepted cache drivers.
var Drivers = []string{DriverNone, DriverSQLite, DriverPostgres}

// PageCache stores provider pages keyed by an opaque cache key.
type PageCache interface {
	// GetPage returns the payload for key if present and unexpired.
	GetPage(ctx context.Context, key string) ([]byte, bool, error)
	// SetPage inserts or replaces the payload for key.
	SetPage(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// DeleteExpired removes expired entries and reports how many.
	DeleteExpired(ctx context.Context) (int64, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the cache for driver and runs its migration. It returns
// nil for DriverNone or an empty driver.
func Open(ctx context.Context, driver, dsn string) (PageCache, error) {
	var (
		c   PageCache
		err error
	)
	switch driver {
	case "", DriverNone:
		return nil, nil
	case DriverSQLite:
		c, err = NewSQLite(dsn)
	case DriverPostgres:
		c, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown cache driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := c.Migrate(ctx); err != nil {
		c.Close() //nolint:errcheck
		return nil, err
	}
	return c, nil
}
