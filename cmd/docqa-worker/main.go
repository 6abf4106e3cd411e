package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docqa/internal/ai"
	"docqa/internal/config"
	"docqa/internal/knowledge"
	"docqa/internal/logger"
	"docqa/internal/pipeline"
	"docqa/internal/worker"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file")
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
	slog.Info("starting worker", "addr", cfg.Worker.Addr, "knowledge_dir", cfg.Knowledge.Dir)

	index := knowledge.NewIndex(cfg.Knowledge.Dir, cfg.Knowledge.Extensions, knowledge.Bonuses{
		Filename: *cfg.Knowledge.FilenameBonus,
		Phrase:   *cfg.Knowledge.PhraseBonus,
	})
	if err := index.Load(); err != nil {
		slog.Warn("knowledge base unavailable, serving with empty index", "error", err)
	}

	client, err := ai.NewClient(ai.ClientConfig{
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

	var cache *worker.AnswerCache
	if cfg.Worker.Cache != nil && cfg.Worker.Cache.Addr != "" {
		cache, err = worker.NewAnswerCache(*cfg.Worker.Cache)
		if err != nil {
			slog.Warn("redis unavailable, answer caching disabled", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			slog.Info("answer cache enabled", "addr", cfg.Worker.Cache.Addr, "ttl_secs", cfg.Worker.Cache.TTLSecs)
		}
	}

	metrics := worker.NewMetrics()
	metrics.DocumentsIndexed.Set(float64(index.DocumentCount()))

	mux := http.NewServeMux()
	worker.NewHandler(svc, index, cache, metrics).Routes(mux)

	server := &http.Server{
		Addr:         cfg.Worker.Addr,
		Handler:      worker.RequestID(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("worker listening", "addr", cfg.Worker.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
