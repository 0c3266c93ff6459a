// Package fetch provides the single HTTP GET helper shared by all external
// tool adapters.
//
// Every downstream call in this gateway is a best-effort, single-attempt GET
// with a bounded timeout. Adapters must never let a transport failure escape
// as anything other than an error value, so this package reduces the policy
// to one place: build the request, attach headers, enforce the timeout, and
// treat any non-2xx status as a failure.
//
// Responses to static lookups (weather grid-point metadata, place details)
// can optionally be cached in Redis under component-versioned keys. The
// cache is never load-bearing: when Redis is not configured or a cache
// operation fails, the request simply goes to the network.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dileep-u-k/location-agent/internal/version"
)

const (
	// requestTimeout bounds every downstream GET. Matches the timeout the
	// original Foursquare and weather.gov integrations ran with.
	requestTimeout = 30 * time.Second

	cachePrefix = "fetchcache"
	cacheTTL    = 24 * time.Hour
)

// Client performs single-attempt GETs against external REST APIs.
// It holds its own configured HTTP client so hung downstream services cannot
// stall a turn indefinitely.
type Client struct {
	httpClient *http.Client
	rdb        *redis.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithCache enables the Redis response cache for requests fetched via
// GetCached. A nil client leaves caching disabled.
func WithCache(rdb *redis.Client) Option {
	return func(c *Client) { c.rdb = rdb }
}

// WithUserAgent sets a User-Agent attached to every request. Some services
// (weather.gov in particular) require an identifying value here.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout overrides the default per-request timeout. Used by tests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a fetch client with the default 30 second timeout.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs one GET against url with the given extra headers and returns
// the response body as text. Non-2xx statuses, transport errors, and
// timeouts are all reported as errors; there are no retries.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	return string(body), nil
}

// GetCached behaves like Get but consults the Redis response cache first and
// stores successful responses. Only use it for lookups whose responses are
// stable over the cache TTL; live data (observations, searches) must go
// through Get.
func (c *Client) GetCached(ctx context.Context, url string, headers map[string]string) (string, error) {
	if c.rdb == nil {
		return c.Get(ctx, url, headers)
	}

	key := version.CacheKey(cachePrefix, url)
	if val, err := c.rdb.Get(ctx, key).Result(); err == nil {
		return val, nil
	} else if err != redis.Nil {
		log.Printf("Redis GET error for fetch cache: %v", err)
	}

	body, err := c.Get(ctx, url, headers)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, body, cacheTTL).Err(); err != nil {
		log.Printf("Redis SET error for fetch cache: %v", err)
	}
	return body, nil
}
