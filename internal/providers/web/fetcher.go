package web

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/http/client"
)

const (
	CacheTTL   = 10 * time.Minute
	CachePurge = 30 * time.Minute
)

var ErrInvalidURL = errors.New("invalid url")

// Fetcher downloads pages and caches their metadata
type Fetcher struct {
	http   *client.Client
	cache  *cache.Cache
	logger *zap.Logger
}

// NewFetcher creates a fetcher over c
func NewFetcher(c *client.Client, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		http:   c,
		cache:  cache.New(CacheTTL, CachePurge),
		logger: logger,
	}
}

// Fetch returns metadata for pageURL, from cache when fresh
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (PageInfo, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return PageInfo{}, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}

	if cached, ok := f.cache.Get(pageURL); ok {
		return cached.(PageInfo), nil
	}

	resp, err := f.http.Do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Accept", "text/html,application/xhtml+xml").Get(pageURL)
	})
	if err != nil {
		return PageInfo{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	info, err := Parse(pageURL, resp.Body(), resp.Header().Get("Content-Type"))
	if err != nil {
		return PageInfo{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	f.cache.SetDefault(pageURL, info)
	f.logger.Debug("Fetched page metadata",
		zap.String("url", pageURL),
		zap.String("title", info.Title),
		zap.String("charset", info.Charset))
	return info, nil
}

// Title returns the page title, or the URL itself when the fetch fails
func (f *Fetcher) Title(ctx context.Context, pageURL string) string {
	info, err := f.Fetch(ctx, pageURL)
	if err != nil {
		f.logger.Debug("Page title unavailable", zap.String("url", pageURL), zap.Error(err))
		return pageURL
	}
	return info.Title
}

// CacheSize returns the number of cached pages
func (f *Fetcher) CacheSize() int {
	return f.cache.ItemCount()
}
