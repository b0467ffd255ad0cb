package rssfeeds

import (
	"context"
	"log"
	"sync"

	"insightbeam/types"
)

// WorkerCount bounds page-fetch concurrency within a crawl batch.
const WorkerCount = 5

// Reader crawls a feed: it parses the entry links and fetches each page
// through a bounded worker pool, collecting partial failures.
type Reader struct {
	parser    FeedParser
	extractor Extractor
}

// NewReader wires a Reader from its collaborators.
func NewReader(parser FeedParser, extractor Extractor) *Reader {
	return &Reader{parser: parser, extractor: extractor}
}

// LoadSourceItems parses the feed at feedURL and fetches every entry
// concurrently. limit > 0 truncates the entry list, preserving feed order.
// It returns the successfully extracted articles and the URLs that failed;
// the order of both slices is driven by completion order. A failure on one
// entry never blocks or cancels its siblings, and the call returns only
// after every fetch has reached a terminal state. A feed with zero entries
// yields two empty slices and no error.
func (r *Reader) LoadSourceItems(ctx context.Context, feedURL string, limit int) ([]types.Article, []string, error) {
	links, err := r.parser.EntryLinks(ctx, feedURL)
	if err != nil {
		return nil, nil, err
	}
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}

	articles := make([]types.Article, 0, len(links))
	failed := make([]string, 0)
	if len(links) == 0 {
		return articles, failed, nil
	}

	type result struct {
		article types.Article
		url     string
		err     error
	}

	linkChan := make(chan string, len(links))
	results := make(chan result, len(links))

	workers := WorkerCount
	if len(links) < workers {
		workers = len(links)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for link := range linkChan {
				article, err := r.extractor.Extract(ctx, link)
				results <- result{article: article, url: link, err: err}
			}
		}()
	}

	for _, link := range links {
		linkChan <- link
	}
	close(linkChan)

	wg.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			log.Printf("Failed to retrieve article %s: %v", res.url, res.err)
			failed = append(failed, res.url)
			continue
		}
		articles = append(articles, res.article)
	}

	return articles, failed, nil
}
