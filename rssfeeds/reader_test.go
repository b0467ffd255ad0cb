package rssfeeds

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"insightbeam/types"
)

type fakeParser struct {
	links []string
	err   error
}

func (f *fakeParser) EntryLinks(ctx context.Context, feedURL string) ([]string, error) {
	return f.links, f.err
}

type fakeExtractor struct {
	mu      sync.Mutex
	calls   int
	failing map[string]bool
}

func (f *fakeExtractor) Extract(ctx context.Context, pageURL string) (types.Article, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failing[pageURL] {
		return types.Article{}, errors.New("fetch failed")
	}
	return types.Article{
		Title:   "title for " + pageURL,
		Content: "content for " + pageURL,
		URL:     pageURL,
	}, nil
}

func TestLoadSourceItemsPartialFailure(t *testing.T) {
	links := make([]string, 5)
	for i := range links {
		links[i] = fmt.Sprintf("http://example.com/%d", i)
	}

	reader := NewReader(
		&fakeParser{links: links},
		&fakeExtractor{failing: map[string]bool{links[1]: true, links[3]: true}},
	)

	articles, failed, err := reader.LoadSourceItems(context.Background(), "http://example.com/feed", 0)
	if err != nil {
		t.Fatalf("LoadSourceItems failed: %v", err)
	}

	if len(articles) != 3 {
		t.Errorf("expected 3 articles, got %d", len(articles))
	}
	if len(failed) != 2 {
		t.Fatalf("expected 2 failed URLs, got %d", len(failed))
	}

	sort.Strings(failed)
	if failed[0] != links[1] || failed[1] != links[3] {
		t.Errorf("unexpected failed URLs: %v", failed)
	}
}

func TestLoadSourceItemsRespectsLimit(t *testing.T) {
	links := []string{"http://e.com/1", "http://e.com/2", "http://e.com/3"}
	extractor := &fakeExtractor{}
	reader := NewReader(&fakeParser{links: links}, extractor)

	articles, failed, err := reader.LoadSourceItems(context.Background(), "http://e.com/feed", 2)
	if err != nil {
		t.Fatalf("LoadSourceItems failed: %v", err)
	}

	if len(articles) != 2 {
		t.Errorf("expected 2 articles, got %d", len(articles))
	}
	if len(failed) != 0 {
		t.Errorf("expected no failures, got %v", failed)
	}
	if extractor.calls != 2 {
		t.Errorf("expected 2 extract calls, got %d", extractor.calls)
	}
}

func TestLoadSourceItemsEmptyFeed(t *testing.T) {
	reader := NewReader(&fakeParser{links: nil}, &fakeExtractor{})

	articles, failed, err := reader.LoadSourceItems(context.Background(), "http://e.com/feed", 0)
	if err != nil {
		t.Fatalf("LoadSourceItems failed: %v", err)
	}
	if len(articles) != 0 || len(failed) != 0 {
		t.Errorf("expected empty results, got %d articles and %d failures", len(articles), len(failed))
	}
}

func TestLoadSourceItemsFeedError(t *testing.T) {
	reader := NewReader(&fakeParser{err: errors.New("feed unreachable")}, &fakeExtractor{})

	_, _, err := reader.LoadSourceItems(context.Background(), "http://e.com/feed", 0)
	if err == nil {
		t.Fatal("expected error for unreachable feed")
	}
}
