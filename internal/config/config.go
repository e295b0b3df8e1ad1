package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the project config file written by `bankist init`.
const FileName = "bankist.yaml"

// Config represents the top-level bankist.yaml configuration.
type Config struct {
	Session  SessionConfig  `yaml:"session"`
	Loan     LoanConfig     `yaml:"loan"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
	Git      GitConfig      `yaml:"git"`
}

// SessionConfig controls the inactivity logout countdown.
type SessionConfig struct {
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	TickInterval   time.Duration `yaml:"tick_interval"` // 0 disables automatic ticking
}

// LoanConfig controls loan approval and processing.
type LoanConfig struct {
	Delay            time.Duration `yaml:"delay"`
	MinMovementRatio float64       `yaml:"min_movement_ratio"`
}

// SecurityConfig controls PIN hashing.
type SecurityConfig struct {
	PINCost int `yaml:"pin_cost"` // bcrypt cost
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StorageConfig locates seed data and logs relative to the project dir.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
	LogDir  string `yaml:"log_dir"`
}

// GitConfig controls snapshotting the data directory into git history.
type GitConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a bankist.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path, falling back to Default when the file is missing.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			TimeoutSeconds: 300,
			TickInterval:   time.Second,
		},
		Loan: LoanConfig{
			Delay:            2500 * time.Millisecond,
			MinMovementRatio: 0.1,
		},
		Security: SecurityConfig{
			PINCost: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			DataDir: "data",
			LogDir:  "logs",
		},
		Git: GitConfig{
			AuthorName:  "Bankist",
			AuthorEmail: "bankist@localhost",
		},
	}
}

// Environment variables that override file settings.
const (
	EnvTimeout   = "BANKIST_SESSION_TIMEOUT"
	EnvLoanDelay = "BANKIST_LOAN_DELAY"
	EnvLogLevel  = "BANKIST_LOG_LEVEL"
	EnvDataDir   = "BANKIST_DATA_DIR"
)

// ApplyEnv overlays settings from an optional .env file and then from the
// process environment, which wins. A missing envFile is not an error.
func ApplyEnv(cfg *Config, envFile string) error {
	vars := map[string]string{}
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", envFile, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, k := range []string{EnvTimeout, EnvLoanDelay, EnvLogLevel, EnvDataDir} {
		if v, ok := os.LookupEnv(k); ok {
			vars[k] = v
		}
	}

	if v, ok := vars[EnvTimeout]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", EnvTimeout, v, err)
		}
		cfg.Session.TimeoutSeconds = n
	}
	if v, ok := vars[EnvLoanDelay]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", EnvLoanDelay, v, err)
		}
		cfg.Loan.Delay = d
	}
	if v, ok := vars[EnvLogLevel]; ok {
		cfg.Logging.Level = v
	}
	if v, ok := vars[EnvDataDir]; ok {
		cfg.Storage.DataDir = v
	}
	return nil
}
