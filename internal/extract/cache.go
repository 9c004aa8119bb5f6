package extract

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const metadataKeyPrefix = "fafo:meta:"

// CachedExtractor memoizes FetchMetadata in Redis. Stream URLs expire
// upstream, so ResolvePlayableURL and Search always go to the inner
// extractor. Cache failures are logged and never fail a call.
type CachedExtractor struct {
	inner catalog.Extractor
	rdb   *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
}

var _ catalog.Extractor = (*CachedExtractor)(nil)

func NewCachedExtractor(inner catalog.Extractor, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedExtractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedExtractor{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedExtractor) FetchMetadata(ctx context.Context, url string) (*catalog.Metadata, error) {
	if c.rdb == nil {
		return c.inner.FetchMetadata(ctx, url)
	}

	key := metadataKeyPrefix + url
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var meta catalog.Metadata
		if jerr := json.Unmarshal(raw, &meta); jerr == nil {
			return &meta, nil
		}
		c.log.WithField("key", key).Warn("dropping undecodable metadata cache entry")
		_ = c.rdb.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		c.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("metadata cache read failed")
	}

	meta, err := c.inner.FetchMetadata(ctx, url)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}
	if data, jerr := json.Marshal(meta); jerr == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("metadata cache write failed")
		}
	}
	return meta, nil
}

func (c *CachedExtractor) ResolvePlayableURL(ctx context.Context, url, quality string) string {
	return c.inner.ResolvePlayableURL(ctx, url, quality)
}

func (c *CachedExtractor) Search(ctx context.Context, query string, maxResults int) ([]catalog.Metadata, error) {
	return c.inner.Search(ctx, query, maxResults)
}
