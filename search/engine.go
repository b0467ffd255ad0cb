// Package search maintains the full-text similarity index used to find
// articles related to a subject string.
package search

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"

	"insightbeam/types"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Document is one indexable article. Content is searched but not
// retrievable; title, uuid and url are stored verbatim.
type Document struct {
	UUID    string
	URL     string
	Title   string
	Content string
}

// Engine wraps a bleve index. Writes are applied as one atomic batch;
// reads never observe a partially applied batch.
type Engine struct {
	index bleve.Index
}

// Open initializes the index at dir. When rebuild is true any existing
// index is discarded and a fresh one created; otherwise an existing index
// is reopened and only created when absent.
func Open(dir string, rebuild bool) (*Engine, error) {
	if rebuild {
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("failed to clear search index at %s: %w", dir, err)
		}
	}

	index, err := bleve.Open(dir)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(dir, indexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search index at %s: %w", dir, err)
	}

	return &Engine{index: index}, nil
}

func indexMapping() mapping.IndexMapping {
	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.IncludeInAll = false

	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true
	titleField.IncludeInAll = false

	storedKeyword := bleve.NewTextFieldMapping()
	storedKeyword.Analyzer = keyword.Name
	storedKeyword.Store = true
	storedKeyword.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", contentField)
	doc.AddFieldMappingsAt("title", titleField)
	doc.AddFieldMappingsAt("uuid", storedKeyword)
	doc.AddFieldMappingsAt("url", storedKeyword)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

// AddDocuments indexes a batch of documents as one atomic commit. If any
// document is rejected the whole batch is abandoned and no index mutation
// becomes observable.
func (e *Engine) AddDocuments(docs []Document) error {
	batch := e.index.NewBatch()
	for _, doc := range docs {
		if doc.UUID == "" {
			return fmt.Errorf("document %q has no uuid; batch discarded", doc.Title)
		}
		fields := map[string]interface{}{
			"content": doc.Content,
			"title":   doc.Title,
			"uuid":    doc.UUID,
			"url":     doc.URL,
		}
		if err := batch.Index(doc.UUID, fields); err != nil {
			return fmt.Errorf("failed to stage document %s: %w", doc.UUID, err)
		}
	}

	if err := e.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to commit index batch: %w", err)
	}

	log.Printf("Indexed %d document(s)", len(docs))
	return nil
}

// Search runs queryText as a free-text OR query over article content and
// returns ranked results with the query terms that matched each hit. For a
// fixed index state and query, result order and matched-term sets are
// stable. The result set may be empty.
func (e *Engine) Search(queryText string) ([]types.SearchResult, error) {
	query := bleve.NewMatchQuery(queryText)
	query.SetField("content")

	request := bleve.NewSearchRequest(query)
	request.Fields = []string{"title", "uuid", "url"}
	request.IncludeLocations = true

	response, err := e.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]types.SearchResult, 0, len(response.Hits))
	for _, hit := range response.Hits {
		uuid, _ := hit.Fields["uuid"].(string)
		title, _ := hit.Fields["title"].(string)
		url, _ := hit.Fields["url"].(string)

		articleID, err := strconv.ParseInt(uuid, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("index document %q has non-numeric uuid: %w", hit.ID, err)
		}

		terms := make([]string, 0, len(hit.Locations["content"]))
		for term := range hit.Locations["content"] {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		results = append(results, types.SearchResult{
			ArticleID:    articleID,
			Title:        title,
			URL:          url,
			MatchedTerms: terms,
		})
	}

	return results, nil
}

// Close releases the underlying index.
func (e *Engine) Close() error {
	return e.index.Close()
}
