package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig is the file-based configuration for veridoc-core.
// Every field has a default so a missing or partial file still
// yields a runnable configuration.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Retry     RetryConfig     `yaml:"retry"`
	Limits    LimitsConfig    `yaml:"limits"`
	Worker    WorkerConfig    `yaml:"worker"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// ChunkerConfig controls document splitting.
type ChunkerConfig struct {
	TargetSize int `yaml:"target_size"`
	Overlap    int `yaml:"overlap"`
}

// RetrievalConfig controls context retrieval per question.
type RetrievalConfig struct {
	TopK          int `yaml:"top_k"`
	HistoryWindow int `yaml:"history_window"`
}

// RetryConfig controls backoff for rate-limited generation calls.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// LimitsConfig caps the text fed into prompts.
type LimitsConfig struct {
	EvalContext int `yaml:"eval_context"`
	Summary     int `yaml:"summary"`
	Suggest     int `yaml:"suggest"`
}

// WorkerConfig controls the background task worker.
type WorkerConfig struct {
	Concurrency    int `yaml:"concurrency"`
	DequeueTimeout int `yaml:"dequeue_timeout"`
}

// Load reads configuration from the given path. A missing file is
// not an error: defaults are returned so deployments can run on
// environment variables alone.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			MaxUploadBytes: 32 << 20,
		},
		Chunker: ChunkerConfig{
			TargetSize: 1000,
			Overlap:    200,
		},
		Retrieval: RetrievalConfig{
			TopK:          3,
			HistoryWindow: 10,
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
			BaseDelayMS: 1000,
		},
		Limits: LimitsConfig{
			EvalContext: 1200,
			Summary:     12000,
			Suggest:     8000,
		},
		Worker: WorkerConfig{
			Concurrency:    2,
			DequeueTimeout: 5,
		},
	}
}

// applyDefaults fills zero values left by a partial file.
func applyDefaults(cfg *AppConfig) {
	def := defaultConfig()

	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = def.Server.MaxUploadBytes
	}
	if cfg.Chunker.TargetSize <= 0 {
		cfg.Chunker.TargetSize = def.Chunker.TargetSize
	}
	if cfg.Chunker.Overlap < 0 || cfg.Chunker.Overlap >= cfg.Chunker.TargetSize {
		cfg.Chunker.Overlap = def.Chunker.Overlap
		if cfg.Chunker.Overlap >= cfg.Chunker.TargetSize {
			// A small custom target can undercut the default overlap
			cfg.Chunker.Overlap = cfg.Chunker.TargetSize / 4
		}
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.HistoryWindow <= 0 {
		cfg.Retrieval.HistoryWindow = def.Retrieval.HistoryWindow
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	if cfg.Retry.BaseDelayMS <= 0 {
		cfg.Retry.BaseDelayMS = def.Retry.BaseDelayMS
	}
	if cfg.Limits.EvalContext <= 0 {
		cfg.Limits.EvalContext = def.Limits.EvalContext
	}
	if cfg.Limits.Summary <= 0 {
		cfg.Limits.Summary = def.Limits.Summary
	}
	if cfg.Limits.Suggest <= 0 {
		cfg.Limits.Suggest = def.Limits.Suggest
	}
	if cfg.Worker.Concurrency <= 0 {
		cfg.Worker.Concurrency = def.Worker.Concurrency
	}
	if cfg.Worker.DequeueTimeout <= 0 {
		cfg.Worker.DequeueTimeout = def.Worker.DequeueTimeout
	}
}
