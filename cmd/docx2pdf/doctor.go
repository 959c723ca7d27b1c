package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/alnah/go-docx2pdf/internal/fileutil"
	"github.com/alnah/go-docx2pdf/internal/office"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Converter converterInfo `json:"converter"`
	Env       envInfo       `json:"environment"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// converterInfo holds office suite detection results.
type converterInfo struct {
	Found           bool   `json:"found"`
	Path            string `json:"path,omitempty"`
	Version         string `json:"version,omitempty"`
	IsolatedProfile bool   `json:"isolated_profile"`
	Timeout         string `json:"timeout"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	ConverterVar  string `json:"docx2pdf_converter"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempDir      string `json:"temp_dir"`
	TempWritable bool   `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, jsonOutput bool, s *settings, env *Environment) int {
	result := runDoctor(ctx, s, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitFailure
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, s *settings, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:           runtime.GOOS,
			Arch:         runtime.GOARCH,
			ConverterVar: os.Getenv("DOCX2PDF_CONVERTER"),
		},
	}

	checkConverter(ctx, result, s, env)
	checkEnvironment(result, s)
	checkSystem(result, s)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConverter locates the office suite and asks for its version.
func checkConverter(ctx context.Context, result *doctorResult, s *settings, env *Environment) {
	conv := &office.Converter{
		Runner:  env.runner(),
		Binary:  s.binary,
		Timeout: s.timeout,
	}
	result.Converter.IsolatedProfile = s.isolatedProfile
	result.Converter.Timeout = office.DefaultTimeout.String()
	if s.timeout > 0 {
		result.Converter.Timeout = s.timeout.String()
	}

	path, err := conv.ResolveBinary()
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%v. Install LibreOffice or set --converter", err))
		return
	}
	result.Converter.Found = true
	result.Converter.Path = path

	version, err := conv.Version(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get converter version: %v", err))
		return
	}
	result.Converter.Version = version
}

// checkEnvironment detects container environments.
func checkEnvironment(result *doctorResult, s *settings) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	// The suite writes its profile under HOME on first start.
	if !s.isolatedProfile {
		home, err := os.UserHomeDir()
		if err != nil || fileutil.DirWritable(home) != nil {
			result.Warnings = append(result.Warnings,
				"Home directory missing or read-only; use --isolated-profile")
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("DOCX2PDF_CONTAINER") == "1" {
		return true, "DOCX2PDF_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory is writable.
func checkSystem(result *doctorResult, s *settings) {
	dir := s.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	result.System.TempDir = dir

	if err := fileutil.DirWritable(dir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", dir))
		return
	}
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docx2pdf doctor")
	fmt.Fprintln(w)

	// Converter section
	fmt.Fprintln(w, "Converter")
	if r.Converter.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Converter.Path)
		if r.Converter.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Converter.Version)
		}
		fmt.Fprintf(w, "  [OK] Timeout: %s\n", r.Converter.Timeout)
		if r.Converter.IsolatedProfile {
			fmt.Fprintln(w, "  [OK] Profile: isolated")
		} else {
			fmt.Fprintln(w, "  [OK] Profile: shared")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintf(w, "  [OK] Temp directory: %s (writable)\n", r.System.TempDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Temp directory: %s (not writable)\n", r.System.TempDir)
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
