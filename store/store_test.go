package store

import (
	"errors"
	"path/filepath"
	"testing"

	"insightbeam/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSourceRoundTrip(t *testing.T) {
	s := openTestStore(t)

	created, err := s.AddSource("http://example.com/feed")
	if err != nil {
		t.Fatalf("AddSource failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected non-zero source id")
	}

	fetched, err := s.GetSource(created.ID)
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if fetched != created {
		t.Errorf("round trip mismatch: %+v != %+v", fetched, created)
	}

	sources, err := s.GetSources()
	if err != nil {
		t.Fatalf("GetSources failed: %v", err)
	}
	if len(sources) != 1 {
		t.Errorf("expected 1 source, got %d", len(sources))
	}
}

func TestGetSourceNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetSource(42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveAndGetItems(t *testing.T) {
	s := openTestStore(t)

	source, err := s.AddSource("http://example.com/feed")
	if err != nil {
		t.Fatalf("AddSource failed: %v", err)
	}

	articles := []types.Article{
		{Title: "A", Content: "content a", URL: "http://e.com/a"},
		{Title: "B", Content: "content b", URL: "http://e.com/b"},
	}
	saved, err := s.SaveItems(source.ID, articles)
	if err != nil {
		t.Fatalf("SaveItems failed: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 saved items, got %d", len(saved))
	}
	for i, item := range saved {
		if item.ID == 0 {
			t.Errorf("item %d: expected assigned id", i)
		}
		if item.SourceID != source.ID {
			t.Errorf("item %d: wrong source id %d", i, item.SourceID)
		}
	}

	items, err := s.GetItemsBySource(source.ID)
	if err != nil {
		t.Fatalf("GetItemsBySource failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	item, err := s.GetItem(saved[0].ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.Content != "content a" {
		t.Errorf("unexpected content %q", item.Content)
	}
}

func TestGetItemNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetItem(99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveItemsEmpty(t *testing.T) {
	s := openTestStore(t)

	saved, err := s.SaveItems(1, nil)
	if err != nil {
		t.Fatalf("SaveItems failed: %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("expected no items, got %d", len(saved))
	}
}

func TestAnalysisBlobLifecycle(t *testing.T) {
	s := openTestStore(t)

	source, _ := s.AddSource("http://example.com/feed")
	saved, err := s.SaveItems(source.ID, []types.Article{{Title: "A", Content: "c", URL: "u"}})
	if err != nil {
		t.Fatalf("SaveItems failed: %v", err)
	}
	itemID := saved[0].ID

	if _, ok, err := s.GetAnalysis(itemID); err != nil || ok {
		t.Fatalf("expected absent analysis, got ok=%v err=%v", ok, err)
	}

	if err := s.SaveAnalysis(itemID, `{"subject":"x"}`); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	blob, ok, err := s.GetAnalysis(itemID)
	if err != nil || !ok {
		t.Fatalf("expected stored analysis, got ok=%v err=%v", ok, err)
	}
	if blob != `{"subject":"x"}` {
		t.Errorf("unexpected blob %q", blob)
	}

	// Write-once: a duplicate save leaves the first record intact.
	if err := s.SaveAnalysis(itemID, `{"subject":"overwritten"}`); err != nil {
		t.Fatalf("duplicate SaveAnalysis failed: %v", err)
	}
	blob, _, _ = s.GetAnalysis(itemID)
	if blob != `{"subject":"x"}` {
		t.Errorf("write-once violated, got %q", blob)
	}
}

func TestCounterAnalysisBlobIndependent(t *testing.T) {
	s := openTestStore(t)

	source, _ := s.AddSource("http://example.com/feed")
	saved, _ := s.SaveItems(source.ID, []types.Article{{Title: "A", Content: "c", URL: "u"}})
	itemID := saved[0].ID

	if err := s.SaveAnalysis(itemID, "analysis-blob"); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	// The counter-analysis slot is separate and still empty.
	if _, ok, err := s.GetCounterAnalysis(itemID); err != nil || ok {
		t.Fatalf("expected absent counter-analysis, got ok=%v err=%v", ok, err)
	}

	if err := s.SaveCounterAnalysis(itemID, "counter-blob"); err != nil {
		t.Fatalf("SaveCounterAnalysis failed: %v", err)
	}
	blob, ok, err := s.GetCounterAnalysis(itemID)
	if err != nil || !ok {
		t.Fatalf("expected stored counter-analysis, got ok=%v err=%v", ok, err)
	}
	if blob != "counter-blob" {
		t.Errorf("unexpected blob %q", blob)
	}
}
