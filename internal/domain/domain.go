package domain

import "context"

// TypeDocumentation is the document type label attached to every corpus file.
const TypeDocumentation = "Documentation"

// Document represents a single indexed corpus file.
type Document struct {
	Name            string
	Content         string
	TermFrequencies map[string]int
	TotalTokens     int
	FilenameTokens  []string
}

// ScoredResult is one ranked retrieval hit. Preview is bounded for display;
// FullContent is only ever handed to the generation step.
type ScoredResult struct {
	Name        string
	Type        string
	Score       float64
	Preview     string
	FullContent string
}

// Match identifies a document that contributed context to an answer.
type Match struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Outcome classifies how an answer was produced, so callers can tell a
// degraded-but-usable answer from a hard generation failure without
// parsing log output.
type Outcome string

const (
	OutcomeGenerated        Outcome = "generated"
	OutcomeNoCredentials    Outcome = "no_credentials"
	OutcomeNoResults        Outcome = "no_results"
	OutcomeGenerationFailed Outcome = "generation_failed"
)

// Answer is the pipeline's final result for one question.
type Answer struct {
	Text    string  `json:"answer"`
	Matches []Match `json:"matches"`
	Outcome Outcome `json:"outcome"`
}

// Searcher returns ranked documents for a query string.
type Searcher interface {
	Search(query string) []ScoredResult
}

// Refiner compresses a free-form question into search keywords. It never
// fails: any problem degrades to returning the question unchanged.
type Refiner interface {
	Refine(ctx context.Context, question string) string
}

// Synthesizer produces the final natural-language answer from retrieved
// context.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, items []ScoredResult) (string, Outcome, error)
}

// QuestionAnswerer is the single entry point external callers use.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, question string) Answer
}
