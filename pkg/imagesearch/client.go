// Package imagesearch looks up a representative image URL for a search term
// through the RapidAPI Google image search, with a bounded response cache in
// front so repeated lookups for the same query stay local.
package imagesearch

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/shashiranjanraj/rangershop/pkg/apperr"
	"github.com/shashiranjanraj/rangershop/pkg/cache"
	"github.com/shashiranjanraj/rangershop/pkg/http"
)

// Client calls the image search API. Zero-value fields are not usable; build
// one with New.
type Client struct {
	httpClient *nethttp.Client
	cache      *cache.Cache
	ttl        time.Duration

	endpoint string
	apiKey   string
	apiHost  string
}

// New builds a Client. c may be a no-op cache; ttl is how long responses stay
// cached (the shop uses 15 minutes).
func New(endpoint, apiKey, apiHost string, c *cache.Cache, ttl time.Duration) *Client {
	return &Client{
		cache:    c,
		ttl:      ttl,
		endpoint: endpoint,
		apiKey:   apiKey,
		apiHost:  apiHost,
	}
}

// WithHTTPClient pins outbound requests to hc instead of the shared client.
// Tests point hc at an httptest server.
func (c *Client) WithHTTPClient(hc *nethttp.Client) *Client {
	c.httpClient = hc
	return c
}

// searchResponse mirrors the slice of the RapidAPI payload we care about.
type searchResponse struct {
	Items []struct {
		OriginalImageURL string `json:"originalImageUrl"`
	} `json:"items"`
}

// Lookup returns the first image URL found for query. Failures of any kind
// come back wrapped in apperr.ErrUpstream so callers can fall back instead of
// failing their own operation.
func (c *Client) Lookup(ctx context.Context, query string) (string, error) {
	cacheKey := "imagesearch:" + query

	var cached string
	if c.cache.Get(ctx, cacheKey, &cached) && cached != "" {
		return cached, nil
	}

	resp, err := http.Get(c.endpoint).
		WithContext(ctx).
		Client(c.httpClient).
		Query("q", query).
		Query("gl", "us").
		Query("lr", "lang_en").
		Query("num", "1").
		Query("start", "0").
		Header("X-RapidAPI-Key", c.apiKey).
		Header("X-RapidAPI-Host", c.apiHost).
		Timeout(10 * time.Second).
		Retry(2, 250*time.Millisecond).
		Send()
	if err != nil {
		return "", fmt.Errorf("imagesearch: %v: %w", err, apperr.ErrUpstream)
	}
	if !resp.OK() {
		return "", fmt.Errorf("imagesearch: status %d: %w", resp.StatusCode, apperr.ErrUpstream)
	}

	var payload searchResponse
	if err := resp.JSON(&payload); err != nil {
		return "", fmt.Errorf("imagesearch: decode: %v: %w", err, apperr.ErrUpstream)
	}

	if len(payload.Items) == 0 || payload.Items[0].OriginalImageURL == "" {
		return "", fmt.Errorf("imagesearch: no results for %q: %w", query, apperr.ErrUpstream)
	}

	imageURL := payload.Items[0].OriginalImageURL

	// Best-effort: a failed cache write never fails the lookup.
	_ = c.cache.Set(ctx, cacheKey, imageURL, c.ttl)

	return imageURL, nil
}
