package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docqa/internal/ai"
	"docqa/internal/config"
	"docqa/internal/knowledge"
	"docqa/internal/logger"
	"docqa/internal/pipeline"
	"docqa/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docqa/config.yaml if not provided)")
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
		// A failed index still answers, with zero matches.
		slog.Warn("knowledge base unavailable", "error", err)
	}

	var client *ai.Client
	client, err = ai.NewClient(ai.ClientConfig{
		BaseURL:   cfg.AI.BaseURL,
		APIKeyEnv: cfg.AI.APIKeyEnv,
		Model:     cfg.AI.Model,
	})
	if err != nil {
		slog.Warn("AI disabled, answers degrade to document listings", "error", err)
		client = nil
	}
	refiner := ai.NewRefiner(client, time.Duration(cfg.AI.RefineTimeoutSecs)*time.Second, cfg.AI.RefineMaxTokens)
	synthesizer := ai.NewSynthesizer(client, time.Duration(cfg.AI.AnswerTimeoutSecs)*time.Second, cfg.AI.AnswerMaxTokens)

	svc := pipeline.New(index, refiner, synthesizer)
	summary := fmt.Sprintf("%d documents indexed from %s", index.DocumentCount(), cfg.Knowledge.Dir)

	m := tui.New(svc, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
