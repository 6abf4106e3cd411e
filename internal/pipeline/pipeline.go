// Package pipeline orchestrates the retrieval-augmented answer flow:
// refine the question into keywords, search, retry with the raw question
// if the refined query finds nothing, then synthesize an answer from the
// retrieved context.
package pipeline

import (
	"context"
	"log/slog"

	"docqa/internal/domain"
	"docqa/internal/logger"
)

const (
	noResultsMessage        = "I couldn't find any documentation relevant to your question. Please try rephrasing or be more specific."
	generationFailedMessage = "I encountered an error while trying to generate the answer. Please try again later."
)

// Pipeline wires the searcher, refiner, and synthesizer together behind
// the one entry point external callers use.
type Pipeline struct {
	searcher    domain.Searcher
	refiner     domain.Refiner
	synthesizer domain.Synthesizer
	logger      *slog.Logger
}

// New assembles a pipeline from its three stages.
func New(searcher domain.Searcher, refiner domain.Refiner, synthesizer domain.Synthesizer) *Pipeline {
	return &Pipeline{
		searcher:    searcher,
		refiner:     refiner,
		synthesizer: synthesizer,
		logger:      logger.WithComponent("answer-pipeline"),
	}
}

// AnswerQuestion runs the full flow for one question. Every failure mode
// degrades to a usable Answer; the Outcome field tells callers how the
// text was produced.
func (p *Pipeline) AnswerQuestion(ctx context.Context, question string) domain.Answer {
	keywords := p.refiner.Refine(ctx, question)

	results := p.searcher.Search(keywords)
	if len(results) == 0 && keywords != question {
		p.logger.Debug("refined query matched nothing, retrying with raw question")
		results = p.searcher.Search(question)
	}
	if len(results) == 0 {
		p.logger.Info("no documents matched", "refined", keywords != question)
		return domain.Answer{Text: noResultsMessage, Outcome: domain.OutcomeNoResults}
	}

	matches := make([]domain.Match, len(results))
	for i, r := range results {
		matches[i] = domain.Match{Name: r.Name, Type: r.Type}
	}

	text, outcome, err := p.synthesizer.Synthesize(ctx, question, results)
	if err != nil {
		return domain.Answer{Text: generationFailedMessage, Matches: matches, Outcome: domain.OutcomeGenerationFailed}
	}

	p.logger.Info("question answered", "matched", len(matches), "outcome", string(outcome))
	return domain.Answer{Text: text, Matches: matches, Outcome: outcome}
}
