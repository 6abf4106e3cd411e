package pipeline

import (
	"context"
	"errors"
	"testing"

	"docqa/internal/domain"
)

type fakeSearcher struct {
	results map[string][]domain.ScoredResult
	queries []string
}

func (f *fakeSearcher) Search(query string) []domain.ScoredResult {
	f.queries = append(f.queries, query)
	return f.results[query]
}

type fakeRefiner struct {
	keywords string
}

func (f *fakeRefiner) Refine(_ context.Context, question string) string {
	if f.keywords == "" {
		return question
	}
	return f.keywords
}

type fakeSynthesizer struct {
	text    string
	outcome domain.Outcome
	err     error
	called  bool
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _ string, _ []domain.ScoredResult) (string, domain.Outcome, error) {
	f.called = true
	return f.text, f.outcome, f.err
}

func hit(name string) []domain.ScoredResult {
	return []domain.ScoredResult{{Name: name, Type: domain.TypeDocumentation, Score: 1, FullContent: "content"}}
}

func TestAnswerQuestionHappyPath(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.ScoredResult{"save keywords": hit("faq.md")}}
	synth := &fakeSynthesizer{text: "Sleep in a bed.", outcome: domain.OutcomeGenerated}
	p := New(searcher, &fakeRefiner{keywords: "save keywords"}, synth)

	answer := p.AnswerQuestion(context.Background(), "how do I save?")
	if answer.Outcome != domain.OutcomeGenerated || answer.Text != "Sleep in a bed." {
		t.Fatalf("answer = %+v", answer)
	}
	if len(answer.Matches) != 1 || answer.Matches[0].Name != "faq.md" {
		t.Fatalf("matches = %+v", answer.Matches)
	}
}

func TestAnswerQuestionRetriesWithOriginalQuestion(t *testing.T) {
	// The refined keywords match nothing; the raw question does.
	searcher := &fakeSearcher{results: map[string][]domain.ScoredResult{"how do I save?": hit("faq.md")}}
	synth := &fakeSynthesizer{text: "answer", outcome: domain.OutcomeGenerated}
	p := New(searcher, &fakeRefiner{keywords: "useless keywords"}, synth)

	answer := p.AnswerQuestion(context.Background(), "how do I save?")
	if answer.Outcome != domain.OutcomeGenerated {
		t.Fatalf("outcome = %v", answer.Outcome)
	}
	if len(searcher.queries) != 2 {
		t.Fatalf("expected 2 searches, got %v", searcher.queries)
	}
	if searcher.queries[1] != "how do I save?" {
		t.Fatalf("fallback search used %q", searcher.queries[1])
	}
}

func TestAnswerQuestionNoRetryWhenRefinementPassedThrough(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.ScoredResult{}}
	synth := &fakeSynthesizer{}
	p := New(searcher, &fakeRefiner{}, synth)

	p.AnswerQuestion(context.Background(), "weather system")
	if len(searcher.queries) != 1 {
		t.Fatalf("expected 1 search for pass-through refinement, got %v", searcher.queries)
	}
}

func TestAnswerQuestionNoResults(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.ScoredResult{}}
	synth := &fakeSynthesizer{}
	p := New(searcher, &fakeRefiner{}, synth)

	answer := p.AnswerQuestion(context.Background(), "weather system")
	if answer.Outcome != domain.OutcomeNoResults {
		t.Fatalf("outcome = %v", answer.Outcome)
	}
	if answer.Text != noResultsMessage {
		t.Fatalf("text = %q", answer.Text)
	}
	if synth.called {
		t.Fatal("synthesizer must not run without context")
	}
}

func TestAnswerQuestionGenerationFailure(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.ScoredResult{"q": hit("doc.md")}}
	synth := &fakeSynthesizer{outcome: domain.OutcomeGenerationFailed, err: errors.New("remote error")}
	p := New(searcher, &fakeRefiner{}, synth)

	answer := p.AnswerQuestion(context.Background(), "q")
	if answer.Outcome != domain.OutcomeGenerationFailed {
		t.Fatalf("outcome = %v", answer.Outcome)
	}
	if answer.Text != generationFailedMessage {
		t.Fatalf("text = %q, want fixed error message", answer.Text)
	}
	if len(answer.Matches) != 1 {
		t.Fatalf("matches should survive a generation failure: %+v", answer.Matches)
	}
}

func TestAnswerQuestionNoCredentialsOutcomeSurfaces(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.ScoredResult{"q": hit("doc.md")}}
	synth := &fakeSynthesizer{text: "document list", outcome: domain.OutcomeNoCredentials}
	p := New(searcher, &fakeRefiner{}, synth)

	answer := p.AnswerQuestion(context.Background(), "q")
	if answer.Outcome != domain.OutcomeNoCredentials || answer.Text != "document list" {
		t.Fatalf("answer = %+v", answer)
	}
}
