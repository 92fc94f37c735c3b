// Package config loads and validates sanmark CLI configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ymitsu/sanmark/internal/fileutil"
	"github.com/ymitsu/sanmark/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Limits guarding against abusive config files.
const (
	MaxKeywords      = 500 // custom keyword sets larger than this are a mistake
	MaxKeywordLength = 50
	MaxWorkers       = 64
	MaxChunkSize     = 100_000
)

// Config holds all configuration for the sanmark CLI.
type Config struct {
	Check CheckConfig `yaml:"check"`
	Rules RulesConfig `yaml:"rules"`
}

// CheckConfig defines defaults for the check command.
type CheckConfig struct {
	Workers   int    `yaml:"workers"`   // 0 = auto (available parallelism)
	ChunkSize int    `yaml:"chunkSize"` // 0 = adaptive
	Format    string `yaml:"format"`    // "text" (default) or "yaml"
	Timeout   string `yaml:"timeout"`   // per-chunk timeout, e.g. "30s" ("" = none)
	Strict    bool   `yaml:"strict"`    // warnings fail the run
}

// RulesConfig defines a custom markup language. An empty config keeps
// the built-in language; any keywords listed here replace it entirely.
type RulesConfig struct {
	Keywords      []string       `yaml:"keywords"`
	Headings      map[string]int `yaml:"headings"` // keyword -> level 1..6
	ColorEligible []string       `yaml:"colorEligible"`
	AltEligible   []string       `yaml:"altEligible"`
	MaxLevelJump  int            `yaml:"maxLevelJump"` // 0 = default
}

// Empty reports whether the rules section was left unset.
func (r *RulesConfig) Empty() bool {
	return len(r.Keywords) == 0
}

// DefaultConfig returns a neutral configuration: built-in language,
// automatic sizing, text output.
func DefaultConfig() *Config {
	return &Config{
		Check: CheckConfig{Format: "text"},
	}
}

// Validate checks value ranges. Called automatically by LoadConfig, but
// available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if c.Check.Workers < 0 || c.Check.Workers > MaxWorkers {
		return fmt.Errorf("%w: check.workers must be between 0 and %d, got %d",
			ErrInvalidValue, MaxWorkers, c.Check.Workers)
	}
	if c.Check.ChunkSize < 0 || c.Check.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: check.chunkSize must be between 0 and %d, got %d",
			ErrInvalidValue, MaxChunkSize, c.Check.ChunkSize)
	}
	// Format and timeout are validated by the check command, which
	// knows the available formats and duration syntax and can hint at
	// them.

	if len(c.Rules.Keywords) > MaxKeywords {
		return fmt.Errorf("%w: rules.keywords holds %d entries (max %d)",
			ErrInvalidValue, len(c.Rules.Keywords), MaxKeywords)
	}
	for _, kw := range c.Rules.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("%w: rules.keywords contains a blank keyword", ErrInvalidValue)
		}
		if len(kw) > MaxKeywordLength {
			return fmt.Errorf("%w: keyword %q exceeds %d bytes", ErrInvalidValue, kw, MaxKeywordLength)
		}
	}
	if c.Rules.MaxLevelJump < 0 || c.Rules.MaxLevelJump > 5 {
		return fmt.Errorf("%w: rules.maxLevelJump must be between 0 and 5, got %d",
			ErrInvalidValue, c.Rules.MaxLevelJump)
	}

	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard
// locations. Returns an error if the file is not found (no silent
// fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchedPaths returns the locations resolveConfigPath would try for a
// config name, for use in error hints.
func SearchedPaths(name string) []string {
	paths := make([]string, 0, 4)
	for _, ext := range []string{".yaml", ".yml"} {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range []string{".yaml", ".yml"} {
			paths = append(paths, filepath.Join(userConfigDir, "sanmark", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard
// locations: current directory first, then ~/.config/sanmark/, trying
// the .yaml and .yml extensions in order.
func resolveConfigPath(name string) (string, error) {
	tried := SearchedPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
