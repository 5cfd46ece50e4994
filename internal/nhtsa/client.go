// Package nhtsa provides the cache-first client for the NHTSA public APIs:
// recalls and complaints by vehicle, per-record safety-issue detail, and VIN
// decoding. Every fetch consults the disk cache before touching the network
// and stores successful responses before returning them.
package nhtsa

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mkoval/defectwatch/internal/cache"
	"github.com/mkoval/defectwatch/internal/observability"
)

const (
	// DefaultBaseURL is the root of the recalls/complaints/safetyIssues API.
	DefaultBaseURL = "https://api.nhtsa.gov"
	// DefaultVINBaseURL is the root of the vPIC VIN decoder API.
	DefaultVINBaseURL = "https://vpic.nhtsa.dot.gov/api"
	// DefaultTimeout bounds a single network fetch.
	DefaultTimeout = 20 * time.Second
	// DefaultUserAgent identifies the client to the upstream service.
	DefaultUserAgent = "defectwatch/1.0"
)

// Cache TTLs per endpoint family, following how often each dataset changes.
const (
	TTLVehicleData = 12 * time.Hour
	TTLSafetyIssue = 7 * 24 * time.Hour
	TTLVINDecode   = 7 * 24 * time.Hour
)

// Source reports where a fetched payload came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// Config holds client configuration.
type Config struct {
	BaseURL    string
	VINBaseURL string
	UserAgent  string
	Timeout    time.Duration
	SkipCache  bool // force fresh fetches, overwriting cached entries
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		VINBaseURL: DefaultVINBaseURL,
		UserAgent:  DefaultUserAgent,
		Timeout:    DefaultTimeout,
	}
}

// Client fetches JSON payloads from the NHTSA APIs through the disk cache.
type Client struct {
	cache *cache.DiskCache
	http  *http.Client
	cfg   *Config
	log   *zap.Logger
}

// NewClient creates a client over the given cache. A nil config uses defaults;
// a nil logger is replaced with a no-op logger.
func NewClient(store *cache.DiskCache, cfg *Config, log *zap.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.VINBaseURL == "" {
		cfg.VINBaseURL = DefaultVINBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cache: store,
		http:  &http.Client{Timeout: cfg.Timeout},
		cfg:   cfg,
		log:   log,
	}
}

// emptyResults is the payload substituted for an HTTP 404, which the upstream
// API uses for "no data for this vehicle" rather than as a hard failure.
var emptyResults = json.RawMessage(`{"results":[]}`)

// GetJSON fetches a URL through the cache. On a hit the cached payload is
// returned without any network call; on a miss the response body is validated
// as JSON and stored before being returned. There are no automatic retries:
// callers decide whether a failure is worth retrying.
func (c *Client) GetJSON(ctx context.Context, url string, ttl time.Duration) (json.RawMessage, Source, error) {
	return c.getJSON(ctx, "raw", url, ttl)
}

func (c *Client) getJSON(ctx context.Context, endpoint, url string, ttl time.Duration) (json.RawMessage, Source, error) {
	key := cache.Key(url)
	if !c.cfg.SkipCache && c.cache != nil {
		if data, ok := c.cache.Get(key, ttl); ok {
			observability.CacheHits.WithLabelValues(endpoint).Inc()
			c.log.Debug("cache hit", zap.String("endpoint", endpoint), zap.String("url", url))
			return data, SourceCache, nil
		}
	}
	observability.CacheMisses.WithLabelValues(endpoint).Inc()

	payload, err := c.httpGetJSON(ctx, url)
	if err != nil {
		observability.FetchFailures.WithLabelValues(endpoint).Inc()
		return nil, SourceNetwork, err
	}

	if c.cache != nil {
		if err := c.cache.Put(key, payload); err != nil {
			// The fetch itself succeeded; a write failure only costs a re-fetch.
			c.log.Warn("cache write failed", zap.String("url", url), zap.Error(err))
		}
	}
	return payload, SourceNetwork, nil
}

func (c *Client) httpGetJSON(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	// 404 means an empty dataset for this query, not a hard failure.
	if resp.StatusCode == http.StatusNotFound {
		return emptyResults, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Message: "failed to read response body", Cause: err}
	}
	if !json.Valid(body) {
		return nil, &FetchError{URL: url, Message: "invalid JSON in response"}
	}
	return body, nil
}
