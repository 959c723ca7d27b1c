// Package config loads the YAML configuration file of the docx2pdf CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docx2pdf/internal/fileutil"
	"github.com/alnah/go-docx2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidTimeout  = errors.New("invalid timeout")
)

// Field length limits.
const (
	MaxBinaryLength  = 4096 // PATH_MAX on Linux
	MaxTimeoutLength = 20   // "1m30s", "250ms"
	MaxDirLength     = 4096
)

// MaxTimeout is the longest conversion timeout accepted.
const MaxTimeout = 10 * time.Minute

// appDir is the directory name under the user config dir.
const appDir = "go-docx2pdf"

// Config holds all configuration for a conversion run.
type Config struct {
	Converter ConverterConfig `yaml:"converter"`
	Temp      TempConfig      `yaml:"temp"`
}

// ConverterConfig defines how the office suite is invoked.
type ConverterConfig struct {
	Binary          string `yaml:"binary"`          // Executable name or path (empty = libreoffice, then soffice)
	Timeout         string `yaml:"timeout"`         // Go duration, e.g. "45s" (empty = 30s)
	IsolatedProfile bool   `yaml:"isolatedProfile"` // Throwaway user profile per run
}

// TempConfig defines where the substituted document is written.
type TempConfig struct {
	Dir              string `yaml:"dir"`              // Empty = system temp directory
	CleanupOnFailure bool   `yaml:"cleanupOnFailure"` // Remove the temp document when conversion fails
}

// Validate checks field lengths and the timeout value.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("converter.binary", c.Converter.Binary, MaxBinaryLength); err != nil {
		return err
	}
	if err := validateFieldLength("converter.timeout", c.Converter.Timeout, MaxTimeoutLength); err != nil {
		return err
	}
	if err := validateFieldLength("temp.dir", c.Temp.Dir, MaxDirLength); err != nil {
		return err
	}
	if _, err := c.Converter.ParsedTimeout(); err != nil {
		return fmt.Errorf("converter.timeout: %w", err)
	}
	return nil
}

// ParsedTimeout returns the configured timeout, or zero when unset.
func (c ConverterConfig) ParsedTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	return ParseTimeout(c.Timeout)
}

// ParseTimeout parses a Go duration and checks it lies in (0, MaxTimeout].
func ParseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, d)
	}
	if d > MaxTimeout {
		return 0, fmt.Errorf("%w: must be at most %s, got %s", ErrInvalidTimeout, MaxTimeout, d)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Converter: ConverterConfig{Binary: "", Timeout: "", IsolatedProfile: false},
		Temp:      TempConfig{Dir: "", CleanupOnFailure: false},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
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

// SearchPaths lists the files tried for a config name, in lookup order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, appDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries locations in order: current directory, ~/.config/go-docx2pdf/
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
