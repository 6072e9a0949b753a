// Package config provides the engine configuration.
//
// Configuration is one immutable structure passed into the scorer and
// orchestrator at construction. It can be loaded from a YAML file (with
// environment-variable expansion) or built from defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Matching   MatchingConfig   `yaml:"matching"`
	Processing ProcessingConfig `yaml:"processing"`
	Files      FileConfig       `yaml:"files"`
	Retriever  RetrieverConfig  `yaml:"retriever"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// MatchingConfig holds thresholds and tolerances for the fuzzy scorer
type MatchingConfig struct {
	// SimilarityThreshold is the scorer's inclusion floor: candidates scoring
	// below it are never returned
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`

	// AutoMatchThreshold is the minimum confidence for an automatic match.
	// Always higher than SimilarityThreshold.
	AutoMatchThreshold float64 `yaml:"auto_match_threshold" json:"auto_match_threshold"`

	// ManualReviewThreshold is recognized but consumed only by the external
	// manual-review workflow, not by this engine
	ManualReviewThreshold float64 `yaml:"manual_review_threshold" json:"manual_review_threshold"`

	AmountTolerancePercent  float64 `yaml:"amount_tolerance_percent" json:"amount_tolerance_percent"`
	AmountToleranceAbsolute float64 `yaml:"amount_tolerance_absolute" json:"amount_tolerance_absolute"`
	DateToleranceBefore     int     `yaml:"date_tolerance_before" json:"date_tolerance_before"`
	DateToleranceAfter      int     `yaml:"date_tolerance_after" json:"date_tolerance_after"`
}

// ProcessingConfig holds batch and concurrency settings
type ProcessingConfig struct {
	MaxTransactionsPerBatch int  `yaml:"max_transactions_per_batch" json:"max_transactions_per_batch"`
	ParallelProcessing      bool `yaml:"parallel_processing" json:"parallel_processing"`
	MaxWorkers              int  `yaml:"max_workers" json:"max_workers"`
}

// FileConfig holds statement-file limits
type FileConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb" json:"max_file_size_mb"`
}

// RetrieverConfig holds settings for the candidate-retrieval collaborator
type RetrieverConfig struct {
	CoreAPIURL            string `yaml:"core_api_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the standard configuration
func Default() Config {
	return Config{
		Matching: MatchingConfig{
			SimilarityThreshold:     0.8,
			AutoMatchThreshold:      0.95,
			ManualReviewThreshold:   0.7,
			AmountTolerancePercent:  2.0,
			AmountToleranceAbsolute: 10.0,
			DateToleranceBefore:     5,
			DateToleranceAfter:      10,
		},
		Processing: ProcessingConfig{
			MaxTransactionsPerBatch: 1000,
			ParallelProcessing:      true,
			MaxWorkers:              4,
		},
		Files: FileConfig{
			MaxFileSizeMB: 50,
		},
		Retriever: RetrieverConfig{
			CoreAPIURL:            "http://core-api:8000",
			RequestTimeoutSeconds: 30,
		},
		Server: ServerConfig{
			Port:           8002,
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file over the defaults. Environment variables in
// the file (e.g. ${CORE_API_URL}) are expanded before parsing.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks threshold ordering and value ranges
func (c Config) Validate() error {
	m := c.Matching

	for name, v := range map[string]float64{
		"similarity_threshold":    m.SimilarityThreshold,
		"auto_match_threshold":    m.AutoMatchThreshold,
		"manual_review_threshold": m.ManualReviewThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", name, v)
		}
	}

	if m.AutoMatchThreshold < m.SimilarityThreshold {
		return fmt.Errorf("auto_match_threshold (%v) must not be below similarity_threshold (%v)",
			m.AutoMatchThreshold, m.SimilarityThreshold)
	}

	if m.AmountTolerancePercent < 0 || m.AmountToleranceAbsolute < 0 {
		return fmt.Errorf("amount tolerances must not be negative")
	}

	if m.DateToleranceBefore < 0 || m.DateToleranceAfter < 0 {
		return fmt.Errorf("date tolerances must not be negative")
	}

	if c.Processing.MaxTransactionsPerBatch <= 0 {
		return fmt.Errorf("max_transactions_per_batch must be positive")
	}

	if c.Processing.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive")
	}

	if c.Files.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max_file_size_mb must be positive")
	}

	return nil
}
