package deduplication

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"insightbeam/types"
)

const bloomOpTimeout = 5 * time.Second

// SeenURLFilter is an optional Redis-backed Bloom filter over normalized
// article URLs. It is a crawl fast path only: a URL already seen can be
// skipped before page extraction, while the title-set Deduplicator remains
// the authority on what gets stored. Bloom false positives therefore cost a
// skipped fetch, never a lost item, which is why the filter is keyed on URL
// rather than the dedup title.
type SeenURLFilter struct {
	client *redis.Client
	key    string
}

// NewSeenURLFilter connects to Redis and verifies connectivity.
func NewSeenURLFilter(addr, key string) (*SeenURLFilter, error) {
	if key == "" {
		key = "insightbeam:seen:url"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), bloomOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &SeenURLFilter{client: client, key: key}, nil
}

// Seen reports whether the URL has been recorded. Uses BF.EXISTS.
func (f *SeenURLFilter) Seen(ctx context.Context, rawURL string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, bloomOpTimeout)
	defer cancel()

	res, err := f.client.Do(ctx, "BF.EXISTS", f.key, hashURL(rawURL)).Result()
	if err != nil {
		return false, err
	}

	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Record inserts the URL into the filter. Uses BF.ADD, which auto-creates
// the filter on first use.
func (f *SeenURLFilter) Record(ctx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(ctx, bloomOpTimeout)
	defer cancel()
	return f.client.Do(ctx, "BF.ADD", f.key, hashURL(rawURL)).Err()
}

// Close closes the underlying Redis client.
func (f *SeenURLFilter) Close() error {
	return f.client.Close()
}

func hashURL(raw string) string {
	return types.GenerateID(normalizeURL(raw))
}

// normalizeURL strips fragments and common tracking query params and
// lowercases the host, so trivially different links hash identically.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)

	q := u.Query()
	for param := range q {
		if strings.HasPrefix(param, "utm_") || param == "fbclid" || param == "gclid" {
			q.Del(param)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}
