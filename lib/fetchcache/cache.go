package fetchcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("tcgmeta/lib/fetchcache")
var meter = otel.Meter("tcgmeta/lib/fetchcache")

var hitCounter, _ = meter.Int64Counter("fetchcache.hits", metric.WithDescription("fetches served from storage"))
var missCounter, _ = meter.Int64Counter("fetchcache.misses", metric.WithDescription("fetches that went to the network"))
var retryCounter, _ = meter.Int64Counter("fetchcache.retries", metric.WithDescription("http attempts that were retried"))

// Cache memoizes a Fetcher into a Storage. Once a URL is stored it is never
// fetched again.
type Cache struct {
	store   Storage
	fetcher Fetcher
}

func New(store Storage, fetcher Fetcher) *Cache {
	return &Cache{store: store, fetcher: fetcher}
}

func (c *Cache) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "cache:Fetch")
	defer span.End()

	key := Escape(url)
	span.SetAttributes(attribute.String("cache_key", key))

	contents, err := c.store.Get(ctx, key)
	if err == nil {
		span.SetAttributes(attribute.Bool("hit", true))
		hitCounter.Add(ctx, 1)
		return contents, nil
	}
	if !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cached page")
		return nil, fmt.Errorf("read cached %s: %w", url, err)
	}

	span.SetAttributes(attribute.Bool("hit", false))
	missCounter.Add(ctx, 1)

	contents, err = c.fetcher.Fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return nil, err
	}

	err = c.store.Put(ctx, key, contents)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist page")
		return nil, fmt.Errorf("persist %s: %w", url, err)
	}
	slog.DebugContext(ctx, "cached page", "url", url, "bytes", len(contents))

	return contents, nil
}
