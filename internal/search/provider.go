// Package search drives the external search provider and merges its pages
// into one deduplicated result set per screening.
package search

import (
	"context"
	"errors"

	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/pkg/google"
)

// Provider fetches one page of results. start is 1-based and num is at most
// google.MaxNum.
type Provider interface {
	FetchPage(ctx context.Context, query string, start, num int) ([]model.RawResult, error)
}

// GoogleProvider adapts a Custom Search client to Provider.
type GoogleProvider struct {
	client google.Client
}

// NewGoogleProvider wraps client.
func NewGoogleProvider(client google.Client) *GoogleProvider {
	return &GoogleProvider{client: client}
}

// FetchPage runs one Custom Search request and maps its items.
func (p *GoogleProvider) FetchPage(ctx context.Context, query string, start, num int) ([]model.RawResult, error) {
	resp, err := p.client.Search(ctx, google.SearchRequest{Query: query, Start: start, Num: num})
	if err != nil {
		return nil, err
	}
	out := make([]model.RawResult, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, model.RawResult{
			Title:       it.Title,
			Snippet:     it.Snippet,
			Link:        it.Link,
			DisplayLink: it.DisplayLink,
		})
	}
	return out, nil
}

// Unavailable is a Provider that always fails with Err. It stands in for
// the live provider when credentials are missing so the failure surfaces
// as a provider error on the first screening rather than at startup.
type Unavailable struct {
	Err error
}

// FetchPage returns Err.
func (u Unavailable) FetchPage(context.Context, string, int, int) ([]model.RawResult, error) {
	return nil, u.Err
}

// statusOf extracts the upstream HTTP status from err, or 0.
func statusOf(err error) int {
	var se *google.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
