package ai

import (
	"context"
	"log/slog"
	"time"

	"docqa/internal/logger"
)

const refineSystemPrompt = "You are a technical assistant. The user is asking a question about the project or its documentation. Output a string of 2-5 search keywords that would best find the relevant content in the documentation. Do not output anything else."

// Refiner compresses a free-form question into search keywords with one
// bounded completion call.
type Refiner struct {
	client    *Client
	timeout   time.Duration
	maxTokens int
	logger    *slog.Logger
}

// NewRefiner creates a refiner. A nil client disables refinement entirely.
func NewRefiner(client *Client, timeout time.Duration, maxTokens int) *Refiner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxTokens <= 0 {
		maxTokens = 20
	}
	return &Refiner{
		client:    client,
		timeout:   timeout,
		maxTokens: maxTokens,
		logger:    logger.WithComponent("query-refiner"),
	}
}

// Refine returns search keywords for the question. Refinement is an
// optimization: without a client, or on any remote failure, the original
// question comes back unchanged.
func (r *Refiner) Refine(ctx context.Context, question string) string {
	if r.client == nil {
		return question
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	keywords, err := r.client.Complete(ctx, refineSystemPrompt, question, r.maxTokens)
	if err != nil {
		r.logger.Warn("question refinement failed, using raw question", "error", err)
		return question
	}
	return keywords
}
