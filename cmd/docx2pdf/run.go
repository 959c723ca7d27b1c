package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/config"
	"github.com/alnah/go-docx2pdf/internal/fileutil"
	"github.com/alnah/go-docx2pdf/internal/hints"
)

// Exit codes for the docx2pdf CLI.
const (
	ExitSuccess = 0 // PDF created, or informational command succeeded
	ExitFailure = 1 // Any usage, validation or conversion failure
)

// settings is the merged result of defaults, config file, env and flags.
type settings struct {
	binary           string
	timeout          time.Duration // zero = library default
	isolatedProfile  bool
	tempDir          string
	cleanupOnFailure bool
}

// runMain runs the CLI with args (without the program name) and returns
// the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		printUsage(env.Stderr)
		return ExitFailure
	}

	switch {
	case flags.help:
		printUsage(env.Stdout)
		return ExitSuccess
	case flags.version:
		fmt.Fprintf(env.Stdout, "docx2pdf %s\n", Version)
		return ExitSuccess
	}

	if !flags.doctor && len(positional) != 3 {
		printUsage(env.Stderr)
		return ExitFailure
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig(env.Stderr)

	cfg, err := loadConfig(flags, envCfg)
	if err != nil {
		hint := ""
		if name := configName(flags, envCfg); errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			hint = hints.ForConfigNotFound(config.SearchPaths(name))
		}
		fmt.Fprintf(env.Stderr, "Error: %v%s\n", err, hint)
		return ExitFailure
	}
	applyEnvConfig(envCfg, cfg)

	s, err := resolveSettings(flags, cfg)
	if err != nil {
		printError(env.Stderr, err)
		return ExitFailure
	}

	if flags.doctor {
		return runDoctorCmd(ctx, flags.json, s, env)
	}

	input := docx2pdf.Input{Template: positional[0], Params: positional[1], Output: positional[2]}
	start := env.now()

	result, err := newProcessor(flags, s, env).Process(ctx, input)
	if err != nil {
		printError(env.Stderr, err)
		return ExitFailure
	}

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Replaced fields in %d of %d regions (%s)\n",
			result.Stats.Changed, result.Stats.Regions, env.now().Sub(start).Round(time.Millisecond))
	}
	return ExitSuccess
}

// loadConfig loads the config named by --config or DOCX2PDF_CONFIG, or
// returns defaults when neither is set.
func loadConfig(flags *cliFlags, envCfg *envConfig) (*config.Config, error) {
	name := configName(flags, envCfg)
	if name == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(name)
}

// configName returns the config selected by flag, then environment.
func configName(flags *cliFlags, envCfg *envConfig) string {
	if flags.common.config != "" {
		return flags.common.config
	}
	return envCfg.ConfigPath
}

// resolveSettings merges flags over the config (already merged with env).
func resolveSettings(flags *cliFlags, cfg *config.Config) (*settings, error) {
	timeout, err := cfg.Converter.ParsedTimeout()
	if err != nil {
		return nil, err
	}

	s := &settings{
		binary:           cfg.Converter.Binary,
		timeout:          timeout,
		isolatedProfile:  cfg.Converter.IsolatedProfile,
		tempDir:          cfg.Temp.Dir,
		cleanupOnFailure: cfg.Temp.CleanupOnFailure,
	}

	f := flags.converter
	if f.binary != "" {
		s.binary = f.binary
	}
	if f.timeout != "" {
		d, err := config.ParseTimeout(f.timeout)
		if err != nil {
			return nil, fmt.Errorf("--timeout: %w", err)
		}
		s.timeout = d
	}
	if f.tempDir != "" {
		s.tempDir = f.tempDir
	}
	if f.isolatedProfileSet {
		s.isolatedProfile = f.isolatedProfile
	}

	return s, nil
}

// newProcessor builds the library processor for one run.
func newProcessor(flags *cliFlags, s *settings, env *Environment) *docx2pdf.Processor {
	opts := []docx2pdf.Option{
		docx2pdf.WithConverterBinary(s.binary),
		docx2pdf.WithIsolatedProfile(s.isolatedProfile),
		docx2pdf.WithTempDir(s.tempDir),
		docx2pdf.WithCleanupOnFailure(s.cleanupOnFailure),
	}
	if s.timeout > 0 {
		opts = append(opts, docx2pdf.WithTimeout(s.timeout))
	}
	if env.Converter != nil {
		opts = append(opts, docx2pdf.WithPDFConverter(env.Converter))
	}
	if flags.common.verbose {
		handler := slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, docx2pdf.WithLogger(slog.New(handler)))
	}
	if !flags.common.quiet {
		opts = append(opts, docx2pdf.WithReporter(progressReporter(env.Stdout)))
	}
	return docx2pdf.NewProcessor(opts...)
}

// progressReporter prints one line per pipeline stage.
func progressReporter(w io.Writer) docx2pdf.Reporter {
	return docx2pdf.ReporterFunc(func(e docx2pdf.Event) {
		switch e.Stage {
		case docx2pdf.StageTemplate:
			fmt.Fprintf(w, "Processing template: %s\n", e.Path)
		case docx2pdf.StageParams:
			fmt.Fprintf(w, "Loaded parameters: [%s]\n", strings.Join(e.Markers, ", "))
		case docx2pdf.StageSaved:
			fmt.Fprintf(w, "Saved processed document: %s\n", e.Path)
		case docx2pdf.StageConverting:
			fmt.Fprintln(w, "Converting to PDF...")
		case docx2pdf.StageDone:
			fmt.Fprintf(w, "Done! PDF created: %s\n", e.Path)
		}
	})
}

// printError writes one "Error:" line followed by any matching hints.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v%s\n", err, hintFor(err))
}

// hintFor returns the hints matching err, or "".
func hintFor(err error) string {
	var hint string

	switch docx2pdf.Classify(err) {
	case docx2pdf.ReasonConverterMissing:
		hint = hints.ForConverterMissing()
	case docx2pdf.ReasonConverterTimeout:
		hint = hints.ForTimeout()
	case docx2pdf.ReasonConverterFailed, docx2pdf.ReasonOutputNotCreated:
		hint = hints.ForConverterFailed()
	case docx2pdf.ReasonInvalidTemplate:
		hint = hints.ForInvalidTemplate()
	case docx2pdf.ReasonMalformedParams:
		hint = hints.ForMalformedParams()
	case docx2pdf.ReasonOutputDirectory:
		hint = hints.ForOutputDirectory()
	}

	var convErr *docx2pdf.ConversionError
	if errors.As(err, &convErr) {
		hint += hints.ForTempKept(convErr.TempPath)
	}

	return hint
}
