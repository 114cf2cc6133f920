// Package config loads the environment-variable-driven settings that
// parameterize index builds and CLI invocations beyond what a single
// command's flags cover: default file locations and the build parameters
// that only make sense to override for experimentation. Scoring weights
// are not configurable here.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every QSIM_*-prefixed environment override this module
// recognizes. All fields have defaults; LoadFromEnv never fails on a missing
// environment — only on a present-but-malformed one.
type Config struct {
	// EmbeddingsPath is the default source embedding file for build-index.
	EmbeddingsPath string
	// IndexPath is the default built binary word file.
	IndexPath string
	// KeywordsPath is the default curated keyword CSV.
	KeywordsPath string
	// StorePath is the default posting-list append-only log.
	StorePath string

	// MaxWords caps the vocabulary loaded at build time. 0 means no cap.
	MaxWords int
	// Synonyms is the number of neighbors kept per word (k).
	Synonyms int
	// Workers bounds the build's parallel cosine-scan worker count. 0
	// means runtime.GOMAXPROCS(0).
	Workers int
}

// Defaults returns the configuration used when no environment variable
// is set.
func Defaults() Config {
	return Config{
		EmbeddingsPath: "embeddings.txt",
		IndexPath:      "index.bin",
		KeywordsPath:   "keywords.csv",
		StorePath:      "questions.log",
		MaxWords:       0,
		Synonyms:       10,
		Workers:        0,
	}
}

// LoadFromEnv starts from Defaults and overrides any field whose
// QSIM_* environment variable is set.
func LoadFromEnv() (Config, error) {
	cfg := Defaults()

	if v, ok := os.LookupEnv("QSIM_EMBEDDINGS_PATH"); ok {
		cfg.EmbeddingsPath = v
	}
	if v, ok := os.LookupEnv("QSIM_INDEX_PATH"); ok {
		cfg.IndexPath = v
	}
	if v, ok := os.LookupEnv("QSIM_KEYWORDS_PATH"); ok {
		cfg.KeywordsPath = v
	}
	if v, ok := os.LookupEnv("QSIM_STORE_PATH"); ok {
		cfg.StorePath = v
	}

	var err error
	if cfg.MaxWords, err = intEnv("QSIM_MAX_WORDS", cfg.MaxWords); err != nil {
		return Config{}, err
	}
	if cfg.Synonyms, err = intEnv("QSIM_SYNONYMS", cfg.Synonyms); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = intEnv("QSIM_WORKERS", cfg.Workers); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", name, v, err)
	}
	return n, nil
}

// Validate rejects settings that can never produce a usable build.
func (c Config) Validate() error {
	if c.Synonyms < 1 {
		return fmt.Errorf("config: QSIM_SYNONYMS must be at least 1, got %d", c.Synonyms)
	}
	if c.MaxWords < 0 {
		return fmt.Errorf("config: QSIM_MAX_WORDS must not be negative, got %d", c.MaxWords)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: QSIM_WORKERS must not be negative, got %d", c.Workers)
	}
	return nil
}
