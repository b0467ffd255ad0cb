package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// Article is a crawl candidate: content retrieved from a feed entry that has
// not yet been stored or assigned an id.
type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Source represents a registered feed endpoint.
type Source struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// SourceItem is an Article that has been persisted under a Source.
// Items are immutable once stored; content is never re-fetched.
type SourceItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	URL      string `json:"url"`
	SourceID int64  `json:"source_id"`
}

// GenerateID creates a short, stable ID by hashing the provided string input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
