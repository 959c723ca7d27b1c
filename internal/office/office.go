// Package office renders documents to PDF with a headless office suite
// (LibreOffice) run as a subprocess.
package office

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docx2pdf/internal/fileutil"
	"github.com/alnah/go-docx2pdf/internal/process"
)

// Sentinel errors for PDF conversion failures.
var (
	ErrNotInstalled  = errors.New("office converter not found")
	ErrFailed        = errors.New("office conversion failed")
	ErrTimeout       = errors.New("office conversion timed out")
	ErrPDFNotCreated = errors.New("PDF file not created")
	ErrOutputDir     = errors.New("output directory not found")
)

// DefaultTimeout bounds a single conversion.
const DefaultTimeout = 30 * time.Second

// DefaultBinaries are tried in order when no binary is configured.
var DefaultBinaries = []string{"libreoffice", "soffice"}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// LookPath resolves file against PATH.
func (ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes name and collects its output. The child gets its own process
// group so cancellation also stops the processes it forks.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- binary comes from config or PATH lookup
	process.Isolate(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Converter converts documents to PDF by invoking the office suite CLI.
type Converter struct {
	Runner CommandRunner
	// Binary is the converter executable name or path. Empty tries DefaultBinaries.
	Binary string
	// Timeout bounds one conversion. Zero means DefaultTimeout.
	Timeout time.Duration
	// IsolatedProfile runs the suite with a throwaway user profile so an
	// already running desktop instance does not take over the request.
	IsolatedProfile bool
	Logger          *slog.Logger
}

// NewConverter creates a Converter with a real command runner and defaults.
func NewConverter() *Converter {
	return &Converter{Runner: ExecRunner{}, Timeout: DefaultTimeout}
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Converter) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// ResolveBinary returns the path of the converter executable.
func (c *Converter) ResolveBinary() (string, error) {
	candidates := DefaultBinaries
	if c.Binary != "" {
		candidates = []string{c.Binary}
	}
	for _, name := range candidates {
		if path, err := c.Runner.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrNotInstalled, strings.Join(candidates, ", "))
}

// Version returns the converter's self-reported version line.
func (c *Converter) Version(ctx context.Context) (string, error) {
	bin, err := c.ResolveBinary()
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	stdout, stderr, err := c.Runner.Run(ctx, bin, "--version")
	if err != nil {
		return "", runError(err, stderr)
	}
	return strings.TrimSpace(stdout), nil
}

// ToPDF renders docPath to pdfPath. The suite writes <doc stem>.pdf into
// the directory of pdfPath; the file is then renamed to pdfPath when the
// names differ.
func (c *Converter) ToPDF(ctx context.Context, docPath, pdfPath string) error {
	bin, err := c.ResolveBinary()
	if err != nil {
		return err
	}

	absPDF, err := filepath.Abs(pdfPath)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}
	outDir := filepath.Dir(absPDF)
	if info, err := os.Stat(outDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrOutputDir, outDir)
	}

	args := []string{"--headless"}
	if c.IsolatedProfile {
		profileDir, err := os.MkdirTemp("", "docx2pdf-profile-*")
		if err != nil {
			return fmt.Errorf("creating converter profile: %w", err)
		}
		defer func() { _ = os.RemoveAll(profileDir) }()
		args = append(args, "-env:UserInstallation="+fileURL(profileDir))
	}
	args = append(args, "--convert-to", "pdf", "--outdir", outDir, docPath)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	log := c.logger()
	log.Debug("running converter", "binary", bin, "args", args, "timeout", c.timeout())
	start := time.Now()

	_, stderr, err := c.Runner.Run(runCtx, bin, args...)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return fmt.Errorf("conversion interrupted: %w", ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return fmt.Errorf("%w after %s", ErrTimeout, c.timeout())
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("%w: %s", ErrNotInstalled, bin)
		}
		return runError(err, stderr)
	}
	log.Debug("converter finished", "elapsed", time.Since(start))

	produced := filepath.Join(outDir, fileutil.Stem(docPath)+".pdf")
	if produced != absPDF && fileutil.FileExists(produced) {
		log.Debug("renaming converter output", "from", produced, "to", absPDF)
		if err := os.Rename(produced, absPDF); err != nil {
			return fmt.Errorf("%w: renaming %s: %v", ErrFailed, produced, err)
		}
	}

	if !fileutil.FileExists(absPDF) {
		return fmt.Errorf("%w: %s", ErrPDFNotCreated, pdfPath)
	}
	return nil
}

// runError wraps a failed run in ErrFailed, preferring the suite's own
// diagnostic when it wrote one.
func runError(err error, stderr string) error {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%w: %s: %v", ErrFailed, msg, err)
	}
	return fmt.Errorf("%w: %v", ErrFailed, err)
}

// fileURL turns a local directory into the file:// URL form the suite
// expects for -env:UserInstallation.
func fileURL(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}
