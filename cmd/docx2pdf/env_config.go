package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-docx2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // DOCX2PDF_CONFIG: config file name or path
	Converter  string // DOCX2PDF_CONVERTER: office executable
	Timeout    string // DOCX2PDF_TIMEOUT: conversion timeout
	TempDir    string // DOCX2PDF_TEMP_DIR: directory for the substituted document
}

// knownEnvVars lists valid DOCX2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCX2PDF_CONFIG":    true,
	"DOCX2PDF_CONVERTER": true,
	"DOCX2PDF_TIMEOUT":   true,
	"DOCX2PDF_TEMP_DIR":  true,
}

// loadEnvConfig reads configuration from environment variables.
// An invalid DOCX2PDF_TIMEOUT is ignored with a warning on w.
func loadEnvConfig(w io.Writer) *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("DOCX2PDF_CONFIG"),
		Converter:  os.Getenv("DOCX2PDF_CONVERTER"),
		TempDir:    os.Getenv("DOCX2PDF_TEMP_DIR"),
	}

	if timeout := os.Getenv("DOCX2PDF_TIMEOUT"); timeout != "" {
		if _, err := config.ParseTimeout(timeout); err == nil {
			cfg.Timeout = timeout
		} else {
			fmt.Fprintf(w, "warning: ignoring DOCX2PDF_TIMEOUT: %v\n", err)
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOCX2PDF_* variables.
// Helps catch typos like DOCX2PDF_TIMOUT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DOCX2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are applied later.
// Precedence: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Converter != "" {
		cfg.Converter.Binary = env.Converter
	}
	if env.Timeout != "" {
		cfg.Converter.Timeout = env.Timeout
	}
	if env.TempDir != "" {
		cfg.Temp.Dir = env.TempDir
	}
}
