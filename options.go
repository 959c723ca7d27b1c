package docx2pdf

import (
	"log/slog"
	"time"
)

// Option configures a Processor.
type Option func(*Processor)

// processorConfig holds internal configuration for Processor.
type processorConfig struct {
	timeout          time.Duration
	binary           string
	isolatedProfile  bool
	tempDir          string
	cleanupOnFailure bool
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docx2pdf: WithTimeout duration must be positive")
	}
	return func(p *Processor) {
		p.cfg.timeout = d
	}
}

// WithConverterBinary sets the office executable (name or path).
// Empty tries libreoffice, then soffice.
func WithConverterBinary(name string) Option {
	return func(p *Processor) {
		p.cfg.binary = name
	}
}

// WithIsolatedProfile runs each conversion with a throwaway office profile.
func WithIsolatedProfile(enabled bool) Option {
	return func(p *Processor) {
		p.cfg.isolatedProfile = enabled
	}
}

// WithTempDir sets the directory for the substituted document.
// Empty uses the system temp directory.
func WithTempDir(dir string) Option {
	return func(p *Processor) {
		p.cfg.tempDir = dir
	}
}

// WithCleanupOnFailure removes the substituted document when conversion fails.
func WithCleanupOnFailure(enabled bool) Option {
	return func(p *Processor) {
		p.cfg.cleanupOnFailure = enabled
	}
}

// WithPDFConverter replaces the office converter. The timeout, binary and
// profile options do not apply to an injected converter.
func WithPDFConverter(c PDFConverter) Option {
	return func(p *Processor) {
		p.converter = c
	}
}

// WithLogger sets the diagnostic logger. Nil discards logs.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// WithReporter sets the progress receiver.
func WithReporter(r Reporter) Option {
	return func(p *Processor) {
		p.reporter = r
	}
}
