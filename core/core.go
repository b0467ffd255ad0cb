// Package core orchestrates the ingestion pipeline: crawl, deduplicate,
// persist, index, and the cache-or-compute analysis stages.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"insightbeam/deduplication"
	"insightbeam/interpreter"
	"insightbeam/search"
	"insightbeam/types"

	"golang.org/x/sync/singleflight"
)

// ErrNoAnalysis is returned when a counter-analysis is requested for an item
// whose analysis has not been computed yet. Counter-analysis never triggers
// analysis implicitly; the two stages are separate failure domains.
var ErrNoAnalysis = errors.New("associated analysis not found")

// ItemStore is the persisted item/analysis collaborator.
type ItemStore interface {
	AddSource(url string) (types.Source, error)
	GetSources() ([]types.Source, error)
	GetSource(id int64) (types.Source, error)
	GetItemsBySource(sourceID int64) ([]types.SourceItem, error)
	SaveItems(sourceID int64, articles []types.Article) ([]types.SourceItem, error)
	GetItem(id int64) (types.SourceItem, error)
	GetAnalysis(itemID int64) (string, bool, error)
	SaveAnalysis(itemID int64, blob string) error
	GetCounterAnalysis(itemID int64) (string, bool, error)
	SaveCounterAnalysis(itemID int64, blob string) error
}

// Crawler retrieves a feed's articles, reporting per-entry failures.
type Crawler interface {
	LoadSourceItems(ctx context.Context, feedURL string, limit int) ([]types.Article, []string, error)
}

// Searcher is the similarity index.
type Searcher interface {
	AddDocuments(docs []search.Document) error
	Search(queryText string) ([]types.SearchResult, error)
}

// Analyzer drives the generative model for both analysis stages.
type Analyzer interface {
	Analyze(ctx context.Context, items []types.SourceItem) []types.ArticleAnalysis
	CounterAnalysis(ctx context.Context, analysis types.Analysis, related []interpreter.RelatedArticle) (types.CounterAnalysis, error)
}

// EventPublisher notifies downstream consumers of newly stored items.
type EventPublisher interface {
	PublishItems(items []types.SourceItem) error
}

// ItemArchiver stores raw snapshots of newly stored items.
type ItemArchiver interface {
	StoreItems(ctx context.Context, items []types.SourceItem) error
}

// URLFilter is an approximate seen-URL membership check.
type URLFilter interface {
	Seen(ctx context.Context, url string) (bool, error)
	Record(ctx context.Context, url string) error
}

// Core wires the pipeline. Publisher, archiver and urlFilter are optional;
// a nil collaborator disables that step.
type Core struct {
	store     ItemStore
	crawler   Crawler
	searcher  Searcher
	analyzer  Analyzer
	publisher EventPublisher
	archiver  ItemArchiver
	urlFilter URLFilter

	// flight collapses concurrent first-time computations for the same item
	// so the model is invoked at most once per cached artifact.
	flight singleflight.Group
}

// Option configures optional collaborators on a Core.
type Option func(*Core)

// WithPublisher enables ingest-event publishing.
func WithPublisher(p EventPublisher) Option {
	return func(c *Core) { c.publisher = p }
}

// WithArchiver enables raw-article archiving.
func WithArchiver(a ItemArchiver) Option {
	return func(c *Core) { c.archiver = a }
}

// WithURLFilter enables the seen-URL pre-filter during pulls.
func WithURLFilter(f URLFilter) Option {
	return func(c *Core) { c.urlFilter = f }
}

// New constructs a Core from its required collaborators.
func New(store ItemStore, crawler Crawler, searcher Searcher, analyzer Analyzer, opts ...Option) *Core {
	c := &Core{
		store:    store,
		crawler:  crawler,
		searcher: searcher,
		analyzer: analyzer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddSource registers a feed endpoint.
func (c *Core) AddSource(url string) (types.Source, error) {
	return c.store.AddSource(url)
}

// GetSources lists registered feed endpoints.
func (c *Core) GetSources() ([]types.Source, error) {
	return c.store.GetSources()
}

// GetSourceItems lists the items stored under a source.
func (c *Core) GetSourceItems(sourceID int64) ([]types.SourceItem, error) {
	if _, err := c.store.GetSource(sourceID); err != nil {
		return nil, err
	}
	return c.store.GetItemsBySource(sourceID)
}

// GetItem returns one stored item.
func (c *Core) GetItem(itemID int64) (types.SourceItem, error) {
	return c.store.GetItem(itemID)
}

// PullFromSource crawls the source's feed, drops articles whose title is
// already stored for that source, persists the remainder and indexes them.
// It returns the newly stored items and the entry URLs that failed to
// retrieve. An index-commit failure is a fault: the items are persisted but
// the error propagates to the caller.
func (c *Core) PullFromSource(ctx context.Context, sourceID int64, limit int) ([]types.SourceItem, []string, error) {
	source, err := c.store.GetSource(sourceID)
	if err != nil {
		return nil, nil, err
	}

	current, err := c.store.GetItemsBySource(sourceID)
	if err != nil {
		return nil, nil, err
	}

	retrieved, failed, err := c.crawler.LoadSourceItems(ctx, source.URL, limit)
	if err != nil {
		return nil, nil, err
	}

	retrieved = c.filterSeenURLs(ctx, retrieved)

	existingTitles := make([]string, 0, len(current))
	for _, item := range current {
		existingTitles = append(existingTitles, item.Title)
	}
	fresh := deduplication.FilterNew(retrieved, existingTitles)

	saved, err := c.store.SaveItems(sourceID, fresh)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Pulled %d new item(s) for source %d", len(saved), sourceID)

	if len(saved) > 0 {
		docs := make([]search.Document, 0, len(saved))
		for _, item := range saved {
			docs = append(docs, search.Document{
				UUID:    strconv.FormatInt(item.ID, 10),
				URL:     item.URL,
				Title:   item.Title,
				Content: item.Content,
			})
		}
		if err := c.searcher.AddDocuments(docs); err != nil {
			return nil, nil, fmt.Errorf("failed to index pulled items: %w", err)
		}
	}

	c.recordSeenURLs(ctx, saved)
	c.notify(ctx, saved)

	return saved, failed, nil
}

// filterSeenURLs drops candidates whose URL the approximate filter has
// already recorded. Filter errors fail open: on any error the candidate is
// kept and the title deduplicator decides.
func (c *Core) filterSeenURLs(ctx context.Context, candidates []types.Article) []types.Article {
	if c.urlFilter == nil {
		return candidates
	}

	kept := make([]types.Article, 0, len(candidates))
	for _, candidate := range candidates {
		seen, err := c.urlFilter.Seen(ctx, candidate.URL)
		if err != nil {
			log.Printf("Warning: seen-URL check failed for %s: %v", candidate.URL, err)
			kept = append(kept, candidate)
			continue
		}
		if !seen {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func (c *Core) recordSeenURLs(ctx context.Context, items []types.SourceItem) {
	if c.urlFilter == nil {
		return
	}
	for _, item := range items {
		if err := c.urlFilter.Record(ctx, item.URL); err != nil {
			log.Printf("Warning: failed to record seen URL %s: %v", item.URL, err)
		}
	}
}

// notify runs the optional post-persist steps. Both are best-effort: the
// items are already durable, so failures are logged, not propagated.
func (c *Core) notify(ctx context.Context, items []types.SourceItem) {
	if len(items) == 0 {
		return
	}
	if c.publisher != nil {
		if err := c.publisher.PublishItems(items); err != nil {
			log.Printf("Warning: failed to publish ingest events: %v", err)
		}
	}
	if c.archiver != nil {
		if err := c.archiver.StoreItems(ctx, items); err != nil {
			log.Printf("Warning: failed to archive items: %v", err)
		}
	}
}

// GetAnalysis returns the item's analysis, computing and persisting it on
// first request. A failed generation is a fault and is never cached; the
// next request recomputes from scratch.
func (c *Core) GetAnalysis(ctx context.Context, itemID int64) (types.ArticleAnalysis, error) {
	v, err, _ := c.flight.Do(fmt.Sprintf("analysis:%d", itemID), func() (interface{}, error) {
		return c.computeAnalysis(ctx, itemID)
	})
	if err != nil {
		return types.ArticleAnalysis{}, err
	}
	return v.(types.ArticleAnalysis), nil
}

func (c *Core) computeAnalysis(ctx context.Context, itemID int64) (types.ArticleAnalysis, error) {
	blob, ok, err := c.store.GetAnalysis(itemID)
	if err != nil {
		return types.ArticleAnalysis{}, err
	}
	if ok {
		return decodeEnvelope(blob)
	}

	item, err := c.store.GetItem(itemID)
	if err != nil {
		return types.ArticleAnalysis{}, err
	}

	envelopes := c.analyzer.Analyze(ctx, []types.SourceItem{item})
	if len(envelopes) != 1 {
		return types.ArticleAnalysis{}, fmt.Errorf("expected one analysis envelope, got %d", len(envelopes))
	}

	envelope := envelopes[0]
	if envelope.Error != "" || envelope.Analysis == nil {
		reason := envelope.Error
		if reason == "" {
			reason = "analysis missing from result"
		}
		return types.ArticleAnalysis{}, fmt.Errorf("error generating analysis for item %d: %s", itemID, reason)
	}

	if err := c.persistEnvelope(envelope, c.store.SaveAnalysis); err != nil {
		return types.ArticleAnalysis{}, err
	}
	return envelope, nil
}

// GetCounterAnalysis returns the item's counter-analysis, computing and
// persisting it on first request. The item's analysis must already be
// persisted; this operation never runs both stages as one transaction.
func (c *Core) GetCounterAnalysis(ctx context.Context, itemID int64) (types.ArticleAnalysis, error) {
	v, err, _ := c.flight.Do(fmt.Sprintf("counter:%d", itemID), func() (interface{}, error) {
		return c.computeCounterAnalysis(ctx, itemID)
	})
	if err != nil {
		return types.ArticleAnalysis{}, err
	}
	return v.(types.ArticleAnalysis), nil
}

func (c *Core) computeCounterAnalysis(ctx context.Context, itemID int64) (types.ArticleAnalysis, error) {
	blob, ok, err := c.store.GetCounterAnalysis(itemID)
	if err != nil {
		return types.ArticleAnalysis{}, err
	}
	if ok {
		return decodeEnvelope(blob)
	}

	analysisBlob, ok, err := c.store.GetAnalysis(itemID)
	if err != nil {
		return types.ArticleAnalysis{}, err
	}
	if !ok {
		return types.ArticleAnalysis{}, fmt.Errorf("item %d: %w", itemID, ErrNoAnalysis)
	}

	analysisEnvelope, err := decodeEnvelope(analysisBlob)
	if err != nil {
		return types.ArticleAnalysis{}, err
	}
	if analysisEnvelope.Analysis == nil {
		return types.ArticleAnalysis{}, fmt.Errorf("item %d: stored analysis envelope is empty", itemID)
	}

	related, err := c.relatedArticles(itemID, analysisEnvelope.Analysis.Subject)
	if err != nil {
		return types.ArticleAnalysis{}, err
	}

	counter, err := c.analyzer.CounterAnalysis(ctx, *analysisEnvelope.Analysis, related)
	if err != nil {
		return types.ArticleAnalysis{}, fmt.Errorf("error generating counter-analysis for item %d: %w", itemID, err)
	}

	envelope := types.ArticleAnalysis{ArticleID: itemID, Counter: &counter}
	if err := c.persistEnvelope(envelope, c.store.SaveCounterAnalysis); err != nil {
		return types.ArticleAnalysis{}, err
	}
	return envelope, nil
}

// relatedArticles queries the similarity index with the subject and resolves
// each hit's full content from the store. The article under analysis is
// excluded from its own related set.
func (c *Core) relatedArticles(itemID int64, subject string) ([]interpreter.RelatedArticle, error) {
	hits, err := c.searcher.Search(subject)
	if err != nil {
		return nil, err
	}

	related := make([]interpreter.RelatedArticle, 0, len(hits))
	for _, hit := range hits {
		if hit.ArticleID == itemID {
			continue
		}
		item, err := c.store.GetItem(hit.ArticleID)
		if err != nil {
			return nil, fmt.Errorf("related article %d: %w", hit.ArticleID, err)
		}
		related = append(related, interpreter.RelatedArticle{
			URL:     item.URL,
			Content: item.Content,
		})
	}
	return related, nil
}

func (c *Core) persistEnvelope(envelope types.ArticleAnalysis, save func(int64, string) error) error {
	blob, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode analysis envelope: %w", err)
	}
	return save(envelope.ArticleID, string(blob))
}

func decodeEnvelope(blob string) (types.ArticleAnalysis, error) {
	var envelope types.ArticleAnalysis
	if err := json.Unmarshal([]byte(blob), &envelope); err != nil {
		return types.ArticleAnalysis{}, fmt.Errorf("failed to decode stored analysis: %w", err)
	}
	return envelope, nil
}
