package rssfeeds

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"insightbeam/types"

	readability "github.com/go-shiori/go-readability"
)

// Extractor retrieves a web page and extracts its readable plain-text body.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (types.Article, error)
}

// ReadabilityExtractor fetches pages with a configurable user agent and runs
// go-readability over the response.
type ReadabilityExtractor struct {
	client    *http.Client
	userAgent string
}

// NewReadabilityExtractor constructs an extractor. The timeout applies to
// each page fetch; a timed-out fetch is reported as an ordinary failure.
func NewReadabilityExtractor(timeout time.Duration, userAgent string) *ReadabilityExtractor {
	return &ReadabilityExtractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Extract downloads the page and returns its title, text content and
// canonical URL. An empty extracted body is treated as a failure.
func (e *ReadabilityExtractor) Extract(ctx context.Context, pageURL string) (types.Article, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return types.Article{}, fmt.Errorf("invalid article url %q: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return types.Article{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return types.Article{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Article{}, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, pageURL)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return types.Article{}, fmt.Errorf("readability extraction failed: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return types.Article{}, fmt.Errorf("no readable content at %s", pageURL)
	}

	return types.Article{
		Title:   article.Title,
		Content: text,
		URL:     pageURL,
	}, nil
}
