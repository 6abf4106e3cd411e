package knowledge

import (
	"math"
	"sort"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/tokenizer"
)

// TopK bounds the context handed to the generation step. It is a design
// constant, not caller-configurable.
const TopK = 3

const previewLimit = 500

// Bonuses are the tunable ranking boosts layered on top of TF-IDF.
type Bonuses struct {
	Filename float64
	Phrase   float64
}

// DefaultBonuses returns the stock boost weights.
func DefaultBonuses() Bonuses {
	return Bonuses{Filename: 50, Phrase: 100}
}

// Search ranks documents against the query and returns at most TopK
// results with positive scores. Per-document scores sum three signals:
// raw TF-IDF over the query tokens, a fixed boost per query token found
// in the filename, and a fixed boost when the trimmed query appears
// verbatim in the content. An index that is not Ready returns no results.
func (ix *Index) Search(query string) []domain.ScoredResult {
	ix.mu.RLock()
	state, docs, docFreq := ix.state, ix.docs, ix.docFreq
	ix.mu.RUnlock()

	if state != Ready {
		ix.logger.Warn("search against index that is not ready", "state", state.String())
		return nil
	}

	queryTokens := tokenizer.Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	phrase := strings.ToLower(strings.TrimSpace(query))
	totalDocs := float64(len(docs))

	results := make([]domain.ScoredResult, 0, TopK)
	for _, doc := range docs {
		var score float64
		for _, token := range queryTokens {
			tf := doc.TermFrequencies[token]
			if tf == 0 {
				continue
			}
			// docFreq[token] >= 1 whenever tf > 0, by construction.
			idf := math.Log(totalDocs / float64(docFreq[token]))
			score += float64(tf) * (idf + 1)
		}
		for _, token := range queryTokens {
			if containsToken(doc.FilenameTokens, token) {
				score += ix.bonuses.Filename
			}
		}
		if phrase != "" && strings.Contains(strings.ToLower(doc.Content), phrase) {
			score += ix.bonuses.Phrase
		}
		if score <= 0 {
			continue
		}
		results = append(results, domain.ScoredResult{
			Name:        doc.Name,
			Type:        domain.TypeDocumentation,
			Score:       score,
			Preview:     preview(doc.Content),
			FullContent: doc.Content,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
	if len(results) > TopK {
		results = results[:TopK]
	}

	ix.logger.Debug("search completed", "query_tokens", len(queryTokens), "results", len(results))
	return results
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit]) + "..."
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}
