// Package config loads subcrack settings from defaults, an optional YAML or
// JSON file and SUBCRACK_* environment variables, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shabbyrobe/subcrack"
)

type Config struct {
	// Corpus is the reference text used when no stored model is named.
	Corpus string `json:"corpus" yaml:"corpus"`

	// Model names a trained model in the store.
	Model string `json:"model" yaml:"model"`

	Store    StoreConfig    `json:"store" yaml:"store"`
	Training TrainingConfig `json:"training" yaml:"training"`
	Search   SearchConfig   `json:"search" yaml:"search"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

type StoreConfig struct {
	Path     string `json:"path" yaml:"path"`
	InMemory bool   `json:"in_memory" yaml:"in_memory"`
}

type TrainingConfig struct {
	Pseudocount float64 `json:"pseudocount" yaml:"pseudocount"`
	Smoothing   string  `json:"smoothing" yaml:"smoothing"`
}

type SearchConfig struct {
	Iterations    int    `json:"iterations" yaml:"iterations"`
	ReportEvery   int    `json:"report_every" yaml:"report_every"`
	Chains        int    `json:"chains" yaml:"chains"`
	Seed          uint64 `json:"seed" yaml:"seed"`
	DistinctSwaps bool   `json:"distinct_swaps" yaml:"distinct_swaps"`
	FastExp       bool   `json:"fast_exp" yaml:"fast_exp"`
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

type MetricsConfig struct {
	// Textfile, when set, receives the run's metrics in the Prometheus text
	// format after each decrypt.
	Textfile string `json:"textfile" yaml:"textfile"`
}

func Default() Config {
	return Config{
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Training: TrainingConfig{
			Pseudocount: subcrack.DefaultPseudocount,
			Smoothing:   subcrack.SmoothingOverwrite.String(),
		},
		Search: SearchConfig{
			Iterations:  subcrack.DefaultIterations,
			ReportEvery: subcrack.DefaultReportEvery,
			Chains:      1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultStorePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "subcrack")
	}
	return ".subcrack"
}

// Load starts from Default, applies the file at path if it exists, then the
// environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("SUBCRACK_CORPUS"); v != "" {
		cfg.Corpus = v
	}
	if v := os.Getenv("SUBCRACK_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SUBCRACK_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SUBCRACK_STORE_IN_MEMORY"); v != "" {
		cfg.Store.InMemory = envBool(v)
	}

	if v := os.Getenv("SUBCRACK_PSEUDOCOUNT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Training.Pseudocount = f
		}
	}
	if v := os.Getenv("SUBCRACK_SMOOTHING"); v != "" {
		cfg.Training.Smoothing = v
	}

	if v := os.Getenv("SUBCRACK_ITERATIONS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.Iterations = i
		}
	}
	if v := os.Getenv("SUBCRACK_REPORT_EVERY"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.ReportEvery = i
		}
	}
	if v := os.Getenv("SUBCRACK_CHAINS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.Chains = i
		}
	}
	if v := os.Getenv("SUBCRACK_SEED"); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Search.Seed = u
		}
	}
	if v := os.Getenv("SUBCRACK_DISTINCT_SWAPS"); v != "" {
		cfg.Search.DistinctSwaps = envBool(v)
	}
	if v := os.Getenv("SUBCRACK_FAST_EXP"); v != "" {
		cfg.Search.FastExp = envBool(v)
	}

	if v := os.Getenv("SUBCRACK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SUBCRACK_LOG_DEVELOPMENT"); v != "" {
		cfg.Log.Development = envBool(v)
	}
	if v := os.Getenv("SUBCRACK_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
}

func envBool(v string) bool {
	v = strings.ToLower(v)
	return v == "true" || v == "1"
}

func (c Config) Validate() error {
	if !(c.Training.Pseudocount > 0) {
		return fmt.Errorf("pseudocount must be > 0")
	}
	if _, err := subcrack.ParseSmoothing(c.Training.Smoothing); err != nil {
		return err
	}
	if c.Search.Iterations < 0 {
		return fmt.Errorf("iterations must be >= 0")
	}
	if c.Search.ReportEvery < 0 {
		return fmt.Errorf("report_every must be >= 0 (0 disables reporting)")
	}
	if c.Search.Chains < 1 {
		return fmt.Errorf("chains must be >= 1")
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store path is required unless in_memory is set")
	}
	return nil
}

// TrainerOptions converts the training section for subcrack.NewTrainer.
// Validate must have passed.
func (c Config) TrainerOptions() []subcrack.TrainerOption {
	smoothing, _ := subcrack.ParseSmoothing(c.Training.Smoothing)
	return []subcrack.TrainerOption{
		subcrack.TrainerPseudocount(c.Training.Pseudocount),
		subcrack.TrainerSmoothing(smoothing),
	}
}

// SearchOptions converts the search section. Reporting stays disabled until
// the caller installs a Reporter.
func (c Config) SearchOptions() subcrack.SearchOptions {
	return subcrack.SearchOptions{
		Iterations:    c.Search.Iterations,
		ReportEvery:   c.Search.ReportEvery,
		Chains:        c.Search.Chains,
		Seed:          c.Search.Seed,
		DistinctSwaps: c.Search.DistinctSwaps,
		FastExp:       c.Search.FastExp,
	}
}
