package rssfeeds

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// FeedParser resolves a feed URL to its ordered list of entry links.
type FeedParser interface {
	EntryLinks(ctx context.Context, feedURL string) ([]string, error)
}

// GofeedParser parses RSS/Atom feeds via gofeed.
type GofeedParser struct {
	parser *gofeed.Parser
}

// NewGofeedParser returns a feed parser backed by gofeed.
func NewGofeedParser() *GofeedParser {
	return &GofeedParser{parser: gofeed.NewParser()}
}

// EntryLinks retrieves the feed and returns its entry links in feed order.
// Entries without a link are skipped.
func (g *GofeedParser) EntryLinks(ctx context.Context, feedURL string) ([]string, error) {
	feed, err := g.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	return links, nil
}
