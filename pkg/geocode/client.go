package geocode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bigbestmart/catalog-backend/pkg/config"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "bigbestmart-catalog/1.0"
	defaultTimeout   = 10 * time.Second
	defaultCacheTTL  = 24 * time.Hour
	cacheScope       = "geocode"
	errorBodyLimit   = 512
)

// Place is one Nominatim search hit. Coordinates stay as the strings Nominatim returns.
type Place struct {
	PlaceID     int64    `json:"place_id"`
	DisplayName string   `json:"display_name"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	Class       string   `json:"class,omitempty"`
	Type        string   `json:"type,omitempty"`
	Importance  float64  `json:"importance,omitempty"`
	BoundingBox []string `json:"boundingbox,omitempty"`
}

// Cache is the optional response cache, satisfied by the redis client.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(scope, id string) string
}

// Client searches OpenStreetMap Nominatim.
type Client struct {
	http     *resty.Client
	cache    Cache
	cacheTTL time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithCache stores successful responses in cache for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if cache == nil {
			return
		}
		c.cache = cache
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// NewClient builds the resty-backed Nominatim client.
func NewClient(cfg config.GeocodeConfig, opts ...Option) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "application/json"),
		cacheTTL: defaultCacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Search returns the places matching the free-form query.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocode client not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Search query is required")
	}

	if places, ok := c.fromCache(ctx, query); ok {
		return places, nil
	}

	var places []Place
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"q": query, "format": "json"}).
		SetResult(&places).
		Get("/search")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to fetch from OpenStreetMap")
	}
	if resp.IsError() {
		body := strings.TrimSpace(resp.String())
		if len(body) > errorBodyLimit {
			body = body[:errorBodyLimit]
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode(), body), "Failed to fetch from OpenStreetMap")
	}
	if places == nil {
		places = []Place{}
	}

	c.toCache(ctx, query, places)
	return places, nil
}

func (c *Client) cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return c.cache.CacheKey(cacheScope, hex.EncodeToString(sum[:]))
}

// cache failures degrade to an upstream call
func (c *Client) fromCache(ctx context.Context, query string) ([]Place, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, c.cacheKey(query))
	if err != nil || raw == "" {
		return nil, false
	}
	var places []Place
	if err := json.Unmarshal([]byte(raw), &places); err != nil {
		return nil, false
	}
	return places, true
}

func (c *Client) toCache(ctx context.Context, query string, places []Place) {
	if c.cache == nil {
		return
	}
	payload, err := json.Marshal(places)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, c.cacheKey(query), string(payload), c.cacheTTL)
}
