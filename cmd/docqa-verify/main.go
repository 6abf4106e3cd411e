// docqa-verify is a standalone debug entry point: it loads the knowledge
// index, runs a search for a question, and optionally runs the full answer
// pipeline, printing diagnostics along the way.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"docqa/internal/ai"
	"docqa/internal/config"
	"docqa/internal/knowledge"
	"docqa/internal/logger"
	"docqa/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath  string
		question string
		fullRun  bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file")
	flag.StringVar(&question, "question", "How do I save my game?", "Question to search for")
	flag.BoolVar(&fullRun, "ask", false, "Run the full refine/search/synthesize pipeline")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	index := knowledge.NewIndex(cfg.Knowledge.Dir, cfg.Knowledge.Extensions, knowledge.Bonuses{
		Filename: *cfg.Knowledge.FilenameBonus,
		Phrase:   *cfg.Knowledge.PhraseBonus,
	})
	if err := index.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "load error: %v\n", err)
	}
	fmt.Printf("index state: %s, documents: %d\n", index.State(), index.DocumentCount())

	results := index.Search(question)
	fmt.Printf("search %q: %d result(s)\n", question, len(results))
	for _, r := range results {
		preview := r.Preview
		if runes := []rune(preview); len(runes) > 80 {
			preview = string(runes[:80]) + "..."
		}
		fmt.Printf("  - %s score=%.2f  %s\n", r.Name, r.Score, preview)
	}

	if !fullRun {
		return
	}

	client, err := ai.NewClient(ai.ClientConfig{
		BaseURL:   cfg.AI.BaseURL,
		APIKeyEnv: cfg.AI.APIKeyEnv,
		Model:     cfg.AI.Model,
	})
	if err != nil {
		fmt.Printf("AI disabled (%v), expecting degraded answer\n", err)
		client = nil
	}
	refiner := ai.NewRefiner(client, time.Duration(cfg.AI.RefineTimeoutSecs)*time.Second, cfg.AI.RefineMaxTokens)
	synthesizer := ai.NewSynthesizer(client, time.Duration(cfg.AI.AnswerTimeoutSecs)*time.Second, cfg.AI.AnswerMaxTokens)
	svc := pipeline.New(index, refiner, synthesizer)

	answer := svc.AnswerQuestion(context.Background(), question)
	fmt.Printf("\noutcome: %s\n", answer.Outcome)
	fmt.Printf("matches: %d\n", len(answer.Matches))
	fmt.Printf("\n--- answer ---\n%s\n--------------\n", answer.Text)
}
