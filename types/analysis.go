package types

// ViewPoint is one position taken by an article, with its supporting arguments.
type ViewPoint struct {
	Point     string   `json:"point"`
	Arguments []string `json:"arguments"`
}

// Analysis is the structured extraction for a single article: the main
// subject plus the viewpoints made about it. Zero viewpoints is valid.
type Analysis struct {
	Subject    string      `json:"subject"`
	ViewPoints []ViewPoint `json:"view_points"`
}

// Counter pairs an original viewpoint with an opposing viewpoint found in a
// related article, referenced by that article's URL.
type Counter struct {
	ArticleURL        string `json:"article_url"`
	OriginalViewPoint string `json:"original_view_point"`
	CounterViewPoint  string `json:"counter_view_point"`
}

// CounterAnalysis holds the opposing viewpoints discovered for one article.
// An empty Counters list means "no opposing views found", which is a valid
// result distinct from a failed computation.
type CounterAnalysis struct {
	Counters []Counter `json:"counters"`
}

// ArticleAnalysis is the per-article result envelope. Exactly one of
// Analysis/Counter is populated depending on the stage that produced it;
// Error carries a per-item failure instead of a result so partial batches
// stay inspectable.
type ArticleAnalysis struct {
	ArticleID int64            `json:"article_id"`
	Analysis  *Analysis        `json:"analysis,omitempty"`
	Counter   *CounterAnalysis `json:"counter,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// SearchResult is one similarity-index hit: which article matched and which
// query terms matched it. Not persisted, recomputed per query.
type SearchResult struct {
	ArticleID    int64    `json:"article_id"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	MatchedTerms []string `json:"matched_terms"`
}
