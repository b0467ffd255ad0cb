package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"insightbeam/types"
)

// fakeChatModel returns canned responses keyed by a substring of the user
// message, tracking call counts.
type fakeChatModel struct {
	mu        sync.Mutex
	calls     int
	responses map[string]string
	err       error
	lastUser  string
	lastSys   string
}

func (f *fakeChatModel) Complete(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSys = system
	f.lastUser = user

	if f.err != nil {
		return "", f.err
	}
	for key, response := range f.responses {
		if strings.Contains(user, key) {
			return response, nil
		}
	}
	return "", errors.New("no canned response for message")
}

func analysisResponse(subject string) string {
	return fmt.Sprintf(`<analysis><subject>%s</subject><view-points>
		<view-point><point>point about %s</point><arguments><argument>because</argument></arguments></view-point>
	</view-points></analysis>`, subject, subject)
}

func TestAnalyzeBatch(t *testing.T) {
	model := &fakeChatModel{responses: map[string]string{
		"article one": analysisResponse("one"),
		"article two": analysisResponse("two"),
	}}
	interp := New(model)

	items := []types.SourceItem{
		{ID: 1, Title: "One", Content: "article one"},
		{ID: 2, Title: "Two", Content: "article two"},
	}

	envelopes := interp.Analyze(context.Background(), items)
	if len(envelopes) != 2 {
		t.Fatalf("expected 2 envelopes, got %d", len(envelopes))
	}

	byID := make(map[int64]types.ArticleAnalysis)
	for _, envelope := range envelopes {
		byID[envelope.ArticleID] = envelope
	}
	for id, subject := range map[int64]string{1: "one", 2: "two"} {
		envelope, ok := byID[id]
		if !ok {
			t.Fatalf("missing envelope for item %d", id)
		}
		if envelope.Error != "" {
			t.Errorf("item %d: unexpected error %q", id, envelope.Error)
		}
		if envelope.Analysis == nil || envelope.Analysis.Subject != subject {
			t.Errorf("item %d: unexpected analysis %+v", id, envelope.Analysis)
		}
	}
}

func TestAnalyzeMalformedResponseIsolated(t *testing.T) {
	model := &fakeChatModel{responses: map[string]string{
		"article one":   analysisResponse("one"),
		"article two":   `<analysis><view-points></view-points></analysis>`, // no subject
		"article three": analysisResponse("three"),
	}}
	interp := New(model)

	items := []types.SourceItem{
		{ID: 1, Content: "article one"},
		{ID: 2, Content: "article two"},
		{ID: 3, Content: "article three"},
	}

	envelopes := interp.Analyze(context.Background(), items)
	if len(envelopes) != 3 {
		t.Fatalf("expected 3 envelopes, got %d", len(envelopes))
	}

	var failures int
	for _, envelope := range envelopes {
		if envelope.ArticleID == 2 {
			if envelope.Analysis != nil {
				t.Error("malformed item should carry no analysis")
			}
			if envelope.Error == "" {
				t.Error("malformed item should carry an error")
			}
			failures++
			continue
		}
		if envelope.Error != "" {
			t.Errorf("item %d: unexpected error %q", envelope.ArticleID, envelope.Error)
		}
	}
	if failures != 1 {
		t.Errorf("expected exactly 1 failed envelope, got %d", failures)
	}
}

func TestAnalyzeModelFailureIsolated(t *testing.T) {
	model := &fakeChatModel{err: errors.New("model unreachable")}
	interp := New(model)

	envelopes := interp.Analyze(context.Background(), []types.SourceItem{{ID: 7, Content: "text"}})
	if len(envelopes) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(envelopes))
	}
	if envelopes[0].Error == "" || envelopes[0].Analysis != nil {
		t.Errorf("expected error envelope, got %+v", envelopes[0])
	}
}

func TestAnalyzeEmptyBatch(t *testing.T) {
	model := &fakeChatModel{}
	interp := New(model)

	envelopes := interp.Analyze(context.Background(), nil)
	if len(envelopes) != 0 {
		t.Errorf("expected no envelopes, got %d", len(envelopes))
	}
	if model.calls != 0 {
		t.Errorf("expected no model calls, got %d", model.calls)
	}
}

func counterInput() (types.Analysis, []RelatedArticle) {
	analysis := types.Analysis{
		Subject: "Carbon taxation",
		ViewPoints: []types.ViewPoint{
			{Point: "The tax lowers emissions", Arguments: []string{"measurements"}},
		},
	}
	related := []RelatedArticle{
		{URL: "http://e.com/2", Content: "Industry groups disagree about the tax"},
	}
	return analysis, related
}

func TestCounterAnalysisSentinel(t *testing.T) {
	analysis, related := counterInput()

	for _, response := range []string{FailToken, "  " + FailToken + "\n", "`" + FailToken + "`"} {
		model := &fakeChatModel{responses: map[string]string{"Carbon taxation": response}}
		interp := New(model)

		counter, err := interp.CounterAnalysis(context.Background(), analysis, related)
		if err != nil {
			t.Fatalf("response %q: unexpected error %v", response, err)
		}
		if counter.Counters == nil || len(counter.Counters) != 0 {
			t.Errorf("response %q: expected empty counters, got %+v", response, counter)
		}
	}
}

func TestCounterAnalysisParsesCounters(t *testing.T) {
	analysis, related := counterInput()
	model := &fakeChatModel{responses: map[string]string{"Carbon taxation": `<analysis><counters>
		<counter><original>The tax lowers emissions</original><other>The data is disputed</other><article-url>http://e.com/2</article-url></counter>
	</counters></analysis>`}}
	interp := New(model)

	counter, err := interp.CounterAnalysis(context.Background(), analysis, related)
	if err != nil {
		t.Fatalf("CounterAnalysis failed: %v", err)
	}
	if len(counter.Counters) != 1 {
		t.Fatalf("expected 1 counter, got %d", len(counter.Counters))
	}
	if counter.Counters[0].ArticleURL != "http://e.com/2" {
		t.Errorf("unexpected article url %q", counter.Counters[0].ArticleURL)
	}

	// Prompt must carry the bulleted points and related blocks.
	if !strings.Contains(model.lastUser, "* The tax lowers emissions") {
		t.Errorf("prompt missing bulleted point:\n%s", model.lastUser)
	}
	if !strings.Contains(model.lastUser, "article-url: http://e.com/2") {
		t.Errorf("prompt missing related block:\n%s", model.lastUser)
	}
}

func TestCounterAnalysisMalformedResponse(t *testing.T) {
	analysis, related := counterInput()
	model := &fakeChatModel{responses: map[string]string{"Carbon taxation": "not a schema response"}}
	interp := New(model)

	if _, err := interp.CounterAnalysis(context.Background(), analysis, related); err == nil {
		t.Fatal("expected error for schema-violating response")
	}
}

func TestCounterAnalysisNoRelatedArticles(t *testing.T) {
	analysis, _ := counterInput()
	model := &fakeChatModel{}
	interp := New(model)

	counter, err := interp.CounterAnalysis(context.Background(), analysis, nil)
	if err != nil {
		t.Fatalf("CounterAnalysis failed: %v", err)
	}
	if len(counter.Counters) != 0 {
		t.Errorf("expected empty counters, got %+v", counter)
	}
	if model.calls != 0 {
		t.Errorf("expected no model call with zero related articles, got %d", model.calls)
	}
}
