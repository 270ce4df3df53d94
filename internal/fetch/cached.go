package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a fetched posting is reused.
const DefaultCacheTTL = 7 * 24 * time.Hour

// PageCache stores extracted job text by URL. db.DB implements it.
type PageCache interface {
	// GetJobPage returns the cached text when an entry younger than maxAge exists.
	GetJobPage(ctx context.Context, url string, maxAge time.Duration) (string, bool, error)
	PutJobPage(ctx context.Context, url, text string) error
}

// TextFetcher resolves a job URL to description text.
type TextFetcher func(ctx context.Context, url string, opts *Options) (string, error)

// CachedFetcher wraps JobText with a page cache. A nil cache disables caching.
type CachedFetcher struct {
	cache   PageCache
	fetch   TextFetcher
	options *Options
	ttl     time.Duration
}

// NewCachedFetcher creates a cached fetcher. Zero ttl means DefaultCacheTTL.
func NewCachedFetcher(cache PageCache, opts *Options, ttl time.Duration) *CachedFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{cache: cache, fetch: JobText, options: opts, ttl: ttl}
}

// JobText returns the posting text, from cache when fresh. Cache failures are
// logged and never fail the fetch.
func (f *CachedFetcher) JobText(ctx context.Context, url string) (string, error) {
	log := f.options.logger().With(zap.String("url", url))

	if f.cache != nil {
		text, ok, err := f.cache.GetJobPage(ctx, url, f.ttl)
		switch {
		case err != nil:
			log.Warn("page cache lookup failed", zap.Error(err))
		case ok:
			log.Debug("page cache hit")
			return text, nil
		}
	}

	text, err := f.fetch(ctx, url, f.options)
	if err != nil {
		return "", err
	}

	if f.cache != nil {
		if err := f.cache.PutJobPage(ctx, url, text); err != nil {
			log.Warn("failed to cache page", zap.Error(err))
		}
	}
	return text, nil
}
