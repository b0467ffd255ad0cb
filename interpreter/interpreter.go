// Package interpreter drives the generative text model to extract structured
// viewpoint analyses from article text and to discover counter-viewpoints
// across related articles.
package interpreter

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"insightbeam/types"
)

// analysisWorkers bounds concurrent model calls within an analyze batch.
const analysisWorkers = 5

// RelatedArticle is one similarity-index hit's content, handed to the
// counter-analysis prompt.
type RelatedArticle struct {
	URL     string
	Content string
}

// Interpreter owns the structured-text protocol with the chat model.
type Interpreter struct {
	model ChatModel
}

// New constructs an Interpreter around the given chat model.
func New(model ChatModel) *Interpreter {
	return &Interpreter{model: model}
}

// Analyze generates a subject/viewpoint analysis for each item, dispatching
// model calls through a bounded worker pool. Every input item yields exactly
// one envelope: a model-call failure or schema-violating response is folded
// into that item's Error field and never fails the batch. Envelope order is
// driven by completion order.
func (in *Interpreter) Analyze(ctx context.Context, items []types.SourceItem) []types.ArticleAnalysis {
	if len(items) == 0 {
		return []types.ArticleAnalysis{}
	}

	itemChan := make(chan types.SourceItem, len(items))
	results := make(chan types.ArticleAnalysis, len(items))

	workers := analysisWorkers
	if len(items) < workers {
		workers = len(items)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemChan {
				results <- in.analyzeOne(ctx, item)
			}
		}()
	}

	for _, item := range items {
		itemChan <- item
	}
	close(itemChan)

	wg.Wait()
	close(results)

	analyses := make([]types.ArticleAnalysis, 0, len(items))
	for envelope := range results {
		analyses = append(analyses, envelope)
	}
	return analyses
}

func (in *Interpreter) analyzeOne(ctx context.Context, item types.SourceItem) types.ArticleAnalysis {
	log.Printf("Generating analysis for %q", item.Title)

	response, err := in.model.Complete(ctx, analysisSystemMsg, fmt.Sprintf(analysisTemplate, item.Content))
	if err != nil {
		return types.ArticleAnalysis{ArticleID: item.ID, Error: err.Error()}
	}

	analysis, err := ParseAnalysis(response)
	if err != nil {
		log.Printf("Failed to parse analysis for %q: %v", item.Title, err)
		return types.ArticleAnalysis{ArticleID: item.ID, Error: err.Error()}
	}

	return types.ArticleAnalysis{ArticleID: item.ID, Analysis: &analysis}
}

// CounterAnalysis issues one batched model call cross-referencing the
// article's analysis against the related articles' content. A response equal
// to the reserved sentinel yields an empty counters list, a valid result;
// any other response must satisfy the counters schema.
func (in *Interpreter) CounterAnalysis(ctx context.Context, analysis types.Analysis, related []RelatedArticle) (types.CounterAnalysis, error) {
	if len(related) == 0 {
		return types.CounterAnalysis{Counters: []types.Counter{}}, nil
	}

	points := make([]string, 0, len(analysis.ViewPoints))
	for _, vp := range analysis.ViewPoints {
		points = append(points, fmt.Sprintf(pointTemplate, vp.Point))
	}

	blocks := make([]string, 0, len(related))
	for _, rel := range related {
		blocks = append(blocks, fmt.Sprintf(relatedArticleTemplate, rel.URL, rel.Content))
	}

	message := fmt.Sprintf(counterTemplate,
		analysis.Subject,
		strings.Join(points, "\n"),
		strings.Join(blocks, "\n\n"))

	response, err := in.model.Complete(ctx, counterSystemMsg, message)
	if err != nil {
		return types.CounterAnalysis{}, err
	}

	if isFailToken(response) {
		return types.CounterAnalysis{Counters: []types.Counter{}}, nil
	}

	return ParseCounterAnalysis(response)
}

// isFailToken matches the sentinel verbatim, tolerating only surrounding
// whitespace and the backticks the prompt quotes it with.
func isFailToken(response string) bool {
	trimmed := strings.TrimSpace(response)
	trimmed = strings.Trim(trimmed, "`")
	return trimmed == FailToken
}
