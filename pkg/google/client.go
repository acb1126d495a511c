package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/trustcheck/internal/resilience"
)

const (
	defaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	defaultTimeout = 20 * time.Second

	// MaxNum is the largest page the Custom Search API returns.
	MaxNum = 10

	maxErrorBody = 512
)

// Client performs Google Custom Search queries.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest asks for one page of results. Start is 1-based; Num is
// clamped to 1..MaxNum.
type SearchRequest struct {
	Query string
	Start int
	Num   int
}

// SearchResponse is the subset of the Custom Search response we use.
type SearchResponse struct {
	Items             []Item            `json:"items"`
	SearchInformation SearchInformation `json:"searchInformation"`
}

// Item is a single web result.
type Item struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
}

// SearchInformation carries the API's result estimate.
type SearchInformation struct {
	TotalResults string `json:"totalResults"`
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("google: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetry replaces the retry policy used for transient failures.
func WithRetry(p resilience.Policy) Option {
	return func(c *httpClient) {
		c.retry = p
	}
}

type httpClient struct {
	apiKey  string
	cx      string
	baseURL string
	http    *http.Client
	retry   resilience.Policy
}

// NewClient creates a Custom Search client. Both the API key and the search
// engine id are required.
func NewClient(apiKey, cx string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("google: api key is required")
	}
	if cx == "" {
		return nil, eris.New("google: search engine id (cx) is required")
	}

	retry := resilience.DefaultPolicy()
	retry.OnRetry = resilience.LogRetry("google")

	c := &httpClient{
		apiKey:  apiKey,
		cx:      cx,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		retry:   retry,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	return resilience.Do(ctx, c.retry, func(ctx context.Context) (*SearchResponse, error) {
		return c.search(ctx, req)
	})
}

func (c *httpClient) search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	start := max(req.Start, 1)
	num := min(max(req.Num, 1), MaxNum)

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cx)
	params.Set("q", req.Query)
	params.Set("start", strconv.Itoa(start))
	params.Set("num", strconv.Itoa(num))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal response")
	}
	return &result, nil
}
