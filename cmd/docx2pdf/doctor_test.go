package main

// Notes:
// - Tests go through runDoctorCmd() with a fake command runner; the office
//   suite is never started.
// - Home directory checks depend on the machine, so tests accept both
//   "ready" and "warnings" when the converter is found.
// - Container detection reads environment variables; those tests cannot use
//   t.Parallel().

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

// doctorRunner finds the binaries in installed and answers --version.
type doctorRunner struct {
	installed  map[string]string
	version    string
	versionErr error
}

func (r *doctorRunner) LookPath(file string) (string, error) {
	if p, ok := r.installed[file]; ok {
		return p, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (r *doctorRunner) Run(context.Context, string, ...string) (string, string, error) {
	if r.versionErr != nil {
		return "", "", r.versionErr
	}
	return r.version + "\n", "", nil
}

func doctorEnv(runner *doctorRunner) (*Environment, *bytes.Buffer) {
	var stdout bytes.Buffer
	return &Environment{Stdout: &stdout, Stderr: &bytes.Buffer{}, Runner: runner}, &stdout
}

func decodeDoctor(t *testing.T, data []byte) doctorResult {
	t.Helper()
	var result doctorResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput was: %s", err, data)
	}
	return result
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_JSONOutput - Verifies JSON output format and structure
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSONOutput(t *testing.T) {
	t.Parallel()

	runner := &doctorRunner{
		installed: map[string]string{"soffice": "/usr/bin/soffice"},
		version:   "LibreOffice 24.2.7.2 420(Build:2)",
	}
	env, stdout := doctorEnv(runner)
	s := &settings{tempDir: t.TempDir(), timeout: 45 * time.Second, isolatedProfile: true}

	exitCode := runDoctorCmd(context.Background(), true, s, env)

	result := decodeDoctor(t, stdout.Bytes())
	if exitCode != ExitSuccess {
		t.Errorf("exit code = %d, want %d; errors: %v", exitCode, ExitSuccess, result.Errors)
	}
	if result.Status != "ready" && result.Status != "warnings" {
		t.Errorf("status = %q, want ready or warnings", result.Status)
	}
	if !result.Converter.Found || result.Converter.Path != "/usr/bin/soffice" {
		t.Errorf("converter = %+v, want found at /usr/bin/soffice", result.Converter)
	}
	if result.Converter.Version != "LibreOffice 24.2.7.2 420(Build:2)" {
		t.Errorf("version = %q", result.Converter.Version)
	}
	if result.Converter.Timeout != "45s" {
		t.Errorf("timeout = %q, want 45s", result.Converter.Timeout)
	}
	if !result.Converter.IsolatedProfile {
		t.Error("isolated profile should be reported")
	}
	if result.Env.OS != runtime.GOOS || result.Env.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s, want %s/%s", result.Env.OS, result.Env.Arch, runtime.GOOS, runtime.GOARCH)
	}
	if !result.System.TempWritable {
		t.Error("temp dir should be writable")
	}
}

func TestRunDoctorCmd_ConverterMissing(t *testing.T) {
	t.Parallel()

	env, stdout := doctorEnv(&doctorRunner{})
	s := &settings{tempDir: t.TempDir(), isolatedProfile: true}

	exitCode := runDoctorCmd(context.Background(), true, s, env)

	if exitCode != ExitFailure {
		t.Errorf("exit code = %d, want %d", exitCode, ExitFailure)
	}
	result := decodeDoctor(t, stdout.Bytes())
	if result.Status != "errors" {
		t.Errorf("status = %q, want errors", result.Status)
	}
	if result.Converter.Found {
		t.Error("converter should not be found")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "tried libreoffice, soffice") {
		t.Errorf("errors = %v, want the tried binaries", result.Errors)
	}
	if result.Converter.Timeout != "30s" {
		t.Errorf("timeout = %q, want default 30s", result.Converter.Timeout)
	}
}

func TestRunDoctorCmd_ConfiguredBinary(t *testing.T) {
	t.Parallel()

	runner := &doctorRunner{
		installed: map[string]string{"libreoffice": "/usr/bin/libreoffice"},
		version:   "LibreOffice 7.6",
	}
	env, stdout := doctorEnv(runner)
	s := &settings{binary: "/opt/lo/soffice", tempDir: t.TempDir(), isolatedProfile: true}

	exitCode := runDoctorCmd(context.Background(), true, s, env)

	if exitCode != ExitFailure {
		t.Errorf("exit code = %d, want %d", exitCode, ExitFailure)
	}
	result := decodeDoctor(t, stdout.Bytes())
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "/opt/lo/soffice") {
		t.Errorf("errors = %v, want the configured binary", result.Errors)
	}
}

func TestRunDoctorCmd_VersionFailureIsWarning(t *testing.T) {
	t.Parallel()

	runner := &doctorRunner{
		installed:  map[string]string{"libreoffice": "/usr/bin/libreoffice"},
		versionErr: errors.New("exit status 1"),
	}
	env, stdout := doctorEnv(runner)
	s := &settings{tempDir: t.TempDir(), isolatedProfile: true}

	exitCode := runDoctorCmd(context.Background(), true, s, env)

	if exitCode != ExitSuccess {
		t.Errorf("exit code = %d, want %d", exitCode, ExitSuccess)
	}
	result := decodeDoctor(t, stdout.Bytes())
	if result.Status != "warnings" {
		t.Errorf("status = %q, want warnings", result.Status)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Could not get converter version") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want version warning", result.Warnings)
	}
}

func TestRunDoctorCmd_TempNotWritable(t *testing.T) {
	t.Parallel()

	runner := &doctorRunner{installed: map[string]string{"libreoffice": "/usr/bin/libreoffice"}, version: "LibreOffice 7.6"}
	env, stdout := doctorEnv(runner)
	s := &settings{tempDir: filepath.Join(t.TempDir(), "missing"), isolatedProfile: true}

	exitCode := runDoctorCmd(context.Background(), true, s, env)

	if exitCode != ExitFailure {
		t.Errorf("exit code = %d, want %d", exitCode, ExitFailure)
	}
	result := decodeDoctor(t, stdout.Bytes())
	if result.System.TempWritable {
		t.Error("missing temp dir should not be writable")
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_HumanOutput - Verifies human-readable output format
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_HumanOutput(t *testing.T) {
	t.Parallel()

	runner := &doctorRunner{
		installed: map[string]string{"libreoffice": "/usr/bin/libreoffice"},
		version:   "LibreOffice 7.6",
	}
	env, stdout := doctorEnv(runner)
	s := &settings{tempDir: t.TempDir(), isolatedProfile: true}

	runDoctorCmd(context.Background(), false, s, env)

	output := stdout.String()
	for _, want := range []string{
		"docx2pdf doctor",
		"Converter",
		"[OK] Found at /usr/bin/libreoffice",
		"[OK] Version: LibreOffice 7.6",
		"[OK] Profile: isolated",
		"Environment",
		"System",
		"(writable)",
		"Status: Ready",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRunDoctorCmd_HumanOutputNotReady(t *testing.T) {
	t.Parallel()

	env, stdout := doctorEnv(&doctorRunner{})
	s := &settings{tempDir: t.TempDir(), isolatedProfile: true}

	runDoctorCmd(context.Background(), false, s, env)

	output := stdout.String()
	for _, want := range []string{"[ERROR] Not found", "Errors:", "Status: Not ready"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Doctor - --doctor through the full CLI
// ---------------------------------------------------------------------------

func TestRunMain_Doctor(t *testing.T) {
	t.Parallel()

	runner := &doctorRunner{installed: map[string]string{"libreoffice": "/usr/bin/libreoffice"}, version: "LibreOffice 7.6"}
	env, stdout := doctorEnv(runner)

	code := runMain(context.Background(), []string{"--doctor", "--json", "--isolated-profile", "--temp-dir", t.TempDir()}, env)

	if code != ExitSuccess {
		t.Errorf("exit code = %d, want %d\n%s", code, ExitSuccess, stdout)
	}
	result := decodeDoctor(t, stdout.Bytes())
	if !result.Converter.IsolatedProfile {
		t.Error("--isolated-profile should reach the doctor")
	}
}

// ---------------------------------------------------------------------------
// TestIsContainer - Container detection signals
// ---------------------------------------------------------------------------

func TestIsContainer_Override(t *testing.T) {
	t.Setenv("DOCX2PDF_CONTAINER", "1")

	got, hint := isContainer()
	if !got || hint != "DOCX2PDF_CONTAINER=1" {
		t.Errorf("isContainer() = %v, %q; want true, DOCX2PDF_CONTAINER=1", got, hint)
	}
}

func TestIsContainer_Kubernetes(t *testing.T) {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		t.Skip("running inside Docker")
	}
	t.Setenv("DOCX2PDF_CONTAINER", "")
	t.Setenv("container", "")
	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")

	got, hint := isContainer()
	if !got || hint != "KUBERNETES_SERVICE_HOST" {
		t.Errorf("isContainer() = %v, %q; want true, KUBERNETES_SERVICE_HOST", got, hint)
	}
}
