package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Knowledge.Dir != "knowledge" {
		t.Errorf("Knowledge.Dir = %q", cfg.Knowledge.Dir)
	}
	if *cfg.Knowledge.FilenameBonus != 50 || *cfg.Knowledge.PhraseBonus != 100 {
		t.Errorf("bonus defaults = %f/%f", *cfg.Knowledge.FilenameBonus, *cfg.Knowledge.PhraseBonus)
	}
	if cfg.AI.APIKeyEnv != "GROQ_API_KEY" {
		t.Errorf("AI.APIKeyEnv = %q", cfg.AI.APIKeyEnv)
	}
	if cfg.Worker.Addr != ":8080" {
		t.Errorf("Worker.Addr = %q", cfg.Worker.Addr)
	}
}

func TestLoadAppliesPartialDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("knowledge:\n  dir: docs\nai:\n  model: llama-3.1-8b-instant\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Knowledge.Dir != "docs" {
		t.Errorf("Knowledge.Dir = %q, want docs", cfg.Knowledge.Dir)
	}
	if cfg.AI.Model != "llama-3.1-8b-instant" {
		t.Errorf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.AnswerTimeoutSecs != 30 {
		t.Errorf("AnswerTimeoutSecs default missing: %d", cfg.AI.AnswerTimeoutSecs)
	}
	if len(cfg.Knowledge.Extensions) != 3 {
		t.Errorf("extension defaults missing: %v", cfg.Knowledge.Extensions)
	}
}

func TestLoadPreservesExplicitZeroBonuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("knowledge:\n  filename_bonus: 0\n  phrase_bonus: 0\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg.Knowledge.FilenameBonus != 0 || *cfg.Knowledge.PhraseBonus != 0 {
		t.Fatalf("explicit zero bonuses overwritten: %f/%f",
			*cfg.Knowledge.FilenameBonus, *cfg.Knowledge.PhraseBonus)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := defaultConfig()
	cfg.Worker.Cache = &CacheConfig{Addr: "localhost:6379"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Worker.Cache == nil || loaded.Worker.Cache.Addr != "localhost:6379" {
		t.Fatalf("cache config lost in round trip: %+v", loaded.Worker.Cache)
	}
	if loaded.Worker.Cache.TTLSecs != 300 {
		t.Errorf("cache TTL default missing: %d", loaded.Worker.Cache.TTLSecs)
	}
}
