package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// KnowledgeConfig locates the corpus directory and tunes retrieval. The
// bonus fields are pointers so an explicit zero (boost disabled) stays
// distinct from an absent key (default applies).
type KnowledgeConfig struct {
	Dir           string   `yaml:"dir"`
	Extensions    []string `yaml:"extensions"`
	FilenameBonus *float64 `yaml:"filename_bonus"`
	PhraseBonus   *float64 `yaml:"phrase_bonus"`
}

// AIConfig holds the OpenAI-compatible completion endpoint settings. The
// API key is read from the environment variable named in APIKeyEnv; when
// the variable is empty, AI features degrade instead of failing.
type AIConfig struct {
	BaseURL           string `yaml:"base_url"`
	APIKeyEnv         string `yaml:"api_key_env"`
	Model             string `yaml:"model"`
	RefineTimeoutSecs int    `yaml:"refine_timeout_secs"`
	AnswerTimeoutSecs int    `yaml:"answer_timeout_secs"`
	RefineMaxTokens   int    `yaml:"refine_max_tokens"`
	AnswerMaxTokens   int    `yaml:"answer_max_tokens"`
}

// CacheConfig contains connection details for the optional Redis answer
// cache used by the worker.
type CacheConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLSecs  int    `yaml:"ttl_secs"`
}

// WorkerConfig configures the HTTP worker entry point.
type WorkerConfig struct {
	Addr  string       `yaml:"addr"`
	Cache *CacheConfig `yaml:"cache,omitempty"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	AI        AIConfig        `yaml:"ai"`
	Worker    WorkerConfig    `yaml:"worker"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Knowledge.Dir == "" {
		cfg.Knowledge.Dir = "knowledge"
	}
	if len(cfg.Knowledge.Extensions) == 0 {
		cfg.Knowledge.Extensions = []string{".txt", ".md", ".json"}
	}
	if cfg.Knowledge.FilenameBonus == nil {
		bonus := 50.0
		cfg.Knowledge.FilenameBonus = &bonus
	}
	if cfg.Knowledge.PhraseBonus == nil {
		bonus := 100.0
		cfg.Knowledge.PhraseBonus = &bonus
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "llama-3.3-70b-versatile"
	}
	if cfg.AI.RefineTimeoutSecs == 0 {
		cfg.AI.RefineTimeoutSecs = 10
	}
	if cfg.AI.AnswerTimeoutSecs == 0 {
		cfg.AI.AnswerTimeoutSecs = 30
	}
	if cfg.AI.RefineMaxTokens == 0 {
		cfg.AI.RefineMaxTokens = 20
	}
	if cfg.AI.AnswerMaxTokens == 0 {
		cfg.AI.AnswerMaxTokens = 500
	}
	if cfg.Worker.Addr == "" {
		cfg.Worker.Addr = ":8080"
	}
	if cfg.Worker.Cache != nil && cfg.Worker.Cache.TTLSecs == 0 {
		cfg.Worker.Cache.TTLSecs = 300
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
