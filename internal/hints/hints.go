// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-docx2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// goos is replaced in tests.
var goos = runtime.GOOS

// ForConverterMissing returns hints for a missing office suite binary.
// Suggests the platform's install command and the converter override.
func ForConverterMissing() string {
	var hints []string

	switch {
	case IsInContainer():
		hints = append(hints, "add libreoffice-writer to the image")
	case goos == "darwin":
		hints = append(hints, "install: brew install --cask libreoffice")
	case goos == "windows":
		hints = append(hints, "install LibreOffice and add its program directory to PATH")
	default:
		hints = append(hints, "install: sudo apt install libreoffice")
	}

	if os.Getenv("DOCX2PDF_CONVERTER") == "" {
		hints = append(hints, "or set --converter / DOCX2PDF_CONVERTER to the soffice path")
	}

	return formatHints(hints)
}

// ForConverterFailed returns a hint for conversions rejected by the suite.
// A desktop instance holding the default profile is the usual culprit.
func ForConverterFailed() string {
	return format("close running LibreOffice windows or use --isolated-profile")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents or a cold start, use --timeout flag")
}

// ForInvalidTemplate returns a hint for templates that are not docx packages.
func ForInvalidTemplate() string {
	return format("the template must be a Word 2007+ .docx file; save legacy .doc files as .docx")
}

// ForMalformedParams returns a hint for parameter files that do not parse.
func ForMalformedParams() string {
	return format(`expected a flat object of strings, e.g. {"{{name}}": "Acme"}`)
}

// ForTempKept returns a hint pointing at the substituted document left
// behind after a failed conversion.
func ForTempKept(path string) string {
	if path == "" {
		return ""
	}
	return format("substituted document kept at " + path)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-docx2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/go-docx2pdf) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-docx2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns a hint for a missing output directory.
func ForOutputDirectory() string {
	return format("create the output directory first; the converter does not create it")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
