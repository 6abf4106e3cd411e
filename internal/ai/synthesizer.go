package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docqa/internal/domain"
	"docqa/internal/logger"
)

const answerSystemPrompt = `You are a helpful support assistant.
- Answer the user's question using ONLY the provided Context.
- Do NOT mention internal filenames or say "According to the documentation". Just give the answer naturally.
- If the context answers the question, explain it clearly.
- If the context is missing information, politely say you don't know based on the current guides.`

const contextSeparator = "\n---\n"

// Synthesizer produces the final answer from the retrieved context with
// one bounded completion call.
type Synthesizer struct {
	client    *Client
	timeout   time.Duration
	maxTokens int
	logger    *slog.Logger
}

// NewSynthesizer creates a synthesizer. With a nil client it still works:
// it falls back to listing the matched documents.
func NewSynthesizer(client *Client, timeout time.Duration, maxTokens int) *Synthesizer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &Synthesizer{
		client:    client,
		timeout:   timeout,
		maxTokens: maxTokens,
		logger:    logger.WithComponent("answer-synthesizer"),
	}
}

// Synthesize generates an answer grounded in the retrieved items. Without
// credentials it returns a deterministic listing of the matched documents
// and makes no network call. A remote failure is returned to the caller
// along with the generation_failed outcome.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, items []domain.ScoredResult) (string, domain.Outcome, error) {
	if s.client == nil {
		return credentialFallback(items), domain.OutcomeNoCredentials, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", buildContext(items), question)
	answer, err := s.client.Complete(ctx, answerSystemPrompt, user, s.maxTokens)
	if err != nil {
		s.logger.Error("answer generation failed", "error", err)
		return "", domain.OutcomeGenerationFailed, err
	}
	return answer, domain.OutcomeGenerated, nil
}

func buildContext(items []domain.ScoredResult) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("Name: %s\nType: %s\nContent: %s\n", item.Name, item.Type, item.FullContent))
	}
	return strings.Join(parts, contextSeparator)
}

func credentialFallback(items []domain.ScoredResult) string {
	var b strings.Builder
	b.WriteString("No AI credentials are configured, so I can't generate a full answer. These documentation items look relevant:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "\n- %s (%s)", item.Name, item.Type)
	}
	return b.String()
}
