// Package store provides SQLite persistence for sources, items and the
// write-once analysis blobs the pipeline caches.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"insightbeam/types"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a source or item lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store handles SQLite persistence. All methods are safe for concurrent use
// via an internal mutex. Analysis and counter-analysis records are opaque
// serialized blobs keyed by item id; the pipeline owns their schema.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates a Store at the given database path, creating tables as
// needed. Pass ":memory:" for an in-memory database.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS source_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		url TEXT NOT NULL,
		source_id INTEGER NOT NULL,
		FOREIGN KEY (source_id) REFERENCES sources(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_source_items_source ON source_items(source_id);

	CREATE TABLE IF NOT EXISTS item_analyses (
		item_id INTEGER PRIMARY KEY,
		analysis TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (item_id) REFERENCES source_items(id)
	);

	CREATE TABLE IF NOT EXISTS item_counter_analyses (
		item_id INTEGER PRIMARY KEY,
		analysis TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (item_id) REFERENCES source_items(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// AddSource registers a new feed endpoint.
func (s *Store) AddSource(url string) (types.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT INTO sources (url) VALUES (?)`, url)
	if err != nil {
		return types.Source{}, fmt.Errorf("insert source: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Source{}, err
	}
	return types.Source{ID: id, URL: url}, nil
}

// GetSources returns every registered source.
func (s *Store) GetSources() ([]types.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, url FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := make([]types.Source, 0)
	for rows.Next() {
		var src types.Source
		if err := rows.Scan(&src.ID, &src.URL); err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// GetSource looks up a source by id. Returns ErrNotFound when absent.
func (s *Store) GetSource(id int64) (types.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var src types.Source
	err := s.db.QueryRow(`SELECT id, url FROM sources WHERE id = ?`, id).Scan(&src.ID, &src.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Source{}, fmt.Errorf("source %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Source{}, fmt.Errorf("query source: %w", err)
	}
	return src, nil
}

// GetItemsBySource returns every item stored under the source.
func (s *Store) GetItemsBySource(sourceID int64) ([]types.SourceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, title, content, url, source_id FROM source_items WHERE source_id = ? ORDER BY id`,
		sourceID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make([]types.SourceItem, 0)
	for rows.Next() {
		var item types.SourceItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Content, &item.URL, &item.SourceID); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveItems persists crawl candidates under the source inside one
// transaction and returns them with their assigned ids.
func (s *Store) SaveItems(sourceID int64, articles []types.Article) ([]types.SourceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]types.SourceItem, 0, len(articles))
	if len(articles) == 0 {
		return items, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO source_items (title, content, url, source_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, a := range articles {
		res, err := stmt.Exec(a.Title, a.Content, a.URL, sourceID)
		if err != nil {
			return nil, fmt.Errorf("insert item %q: %w", a.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		items = append(items, types.SourceItem{
			ID:       id,
			Title:    a.Title,
			Content:  a.Content,
			URL:      a.URL,
			SourceID: sourceID,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem looks up a single item by id. Returns ErrNotFound when absent.
func (s *Store) GetItem(id int64) (types.SourceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var item types.SourceItem
	err := s.db.QueryRow(
		`SELECT id, title, content, url, source_id FROM source_items WHERE id = ?`, id).
		Scan(&item.ID, &item.Title, &item.Content, &item.URL, &item.SourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return types.SourceItem{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.SourceItem{}, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// GetAnalysis returns the stored analysis blob for the item, or ok=false
// when none has been persisted yet.
func (s *Store) GetAnalysis(itemID int64) (string, bool, error) {
	return s.getBlob(`SELECT analysis FROM item_analyses WHERE item_id = ?`, itemID)
}

// SaveAnalysis persists the analysis blob for the item. The cache is
// write-once: a concurrent duplicate write leaves the first record intact.
func (s *Store) SaveAnalysis(itemID int64, blob string) error {
	return s.saveBlob(
		`INSERT INTO item_analyses (item_id, analysis) VALUES (?, ?)
		 ON CONFLICT(item_id) DO NOTHING`, itemID, blob)
}

// GetCounterAnalysis returns the stored counter-analysis blob for the item,
// or ok=false when none has been persisted yet.
func (s *Store) GetCounterAnalysis(itemID int64) (string, bool, error) {
	return s.getBlob(`SELECT analysis FROM item_counter_analyses WHERE item_id = ?`, itemID)
}

// SaveCounterAnalysis persists the counter-analysis blob for the item,
// write-once like SaveAnalysis.
func (s *Store) SaveCounterAnalysis(itemID int64, blob string) error {
	return s.saveBlob(
		`INSERT INTO item_counter_analyses (item_id, analysis) VALUES (?, ?)
		 ON CONFLICT(item_id) DO NOTHING`, itemID, blob)
}

func (s *Store) getBlob(query string, itemID int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob string
	err := s.db.QueryRow(query, itemID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query analysis blob: %w", err)
	}
	return blob, true, nil
}

func (s *Store) saveBlob(query string, itemID int64, blob string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(query, itemID, blob); err != nil {
		return fmt.Errorf("save analysis blob: %w", err)
	}
	return nil
}
