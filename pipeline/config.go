package pipeline

import (
	"fmt"
	"strconv"

	"github.com/remiges-tech/amlsynth/config"
	"github.com/remiges-tech/amlsynth/objstore"
	"github.com/remiges-tech/amlsynth/synth"
)

// Environment variables that override the config file.
const (
	EnvDatabaseURL = "AMLSYNTH_DATABASE_URL"
	EnvSeed        = "AMLSYNTH_SEED"
	EnvOutputDir   = "AMLSYNTH_OUTPUT_DIR"
	EnvLogLevel    = "AMLSYNTH_LOG_LEVEL"
)

// AppConfig is the complete configuration of the amlsynth command.
type AppConfig struct {
	Generator   synth.Config    `json:"generator"`
	OutputDir   string          `json:"output_dir"`
	DatabaseURL string          `json:"database_url"`
	SQLDir      string          `json:"sql_dir"`
	SQLPatterns []string        `json:"sql_patterns"`
	ObjStore    objstore.Config `json:"objstore"`
	MetricsFile string          `json:"metrics_file"`
	LogLevel    string          `json:"log_level"`
}

// DefaultAppConfig returns the settings used when no config file is given.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Generator:   synth.DefaultConfig(),
		OutputDir:   "data/raw",
		SQLDir:      "sql",
		SQLPatterns: []string{"*.sql"},
		ObjStore:    objstore.Config{Prefix: "amlsynth"},
	}
}

// LoadAppConfig starts from the defaults, overlays the JSON file at path
// (if path is not empty) and then the environment.
func LoadAppConfig(path string) (AppConfig, error) {
	cfg := DefaultAppConfig()
	if path != "" {
		if err := config.LoadConfigFromFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	err := config.ApplyEnv(map[string]func(string) error{
		EnvDatabaseURL: func(v string) error {
			cfg.DatabaseURL = v
			return nil
		},
		EnvSeed: func(v string) error {
			seed, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return err
			}
			cfg.Generator.Seed = seed
			return nil
		},
		EnvOutputDir: func(v string) error {
			cfg.OutputDir = v
			return nil
		},
		EnvLogLevel: func(v string) error {
			cfg.LogLevel = v
			return nil
		},
	})
	if err != nil {
		return cfg, err
	}
	if cfg.OutputDir == "" {
		return cfg, fmt.Errorf("output_dir cannot be empty")
	}
	return cfg, nil
}
