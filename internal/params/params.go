// Package params loads the replacement mapping from a parameter file.
//
// The file's top level is a flat object mapping field markers to
// replacement values. JSON is the default format; files ending in .yaml or
// .yml are read as YAML. Key order in the file is the order in which
// replacements are applied.
package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/go-docx2pdf/internal/fields"
	"github.com/alnah/go-docx2pdf/internal/yamlutil"
)

// Sentinel errors for parameter loading.
var (
	ErrNotFound = errors.New("parameters file not found")
	ErrParse    = errors.New("failed to parse parameters")
	ErrRead     = errors.New("failed to read parameters file")
)

// MaxFileSize bounds the parameter file read into memory.
const MaxFileSize = 1 << 20

// Format identifies the syntax of a parameter file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the lower-case format name.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFor picks the format from the file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses the parameter file at path.
func Load(path string) (*fields.Mapping, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- parameter path is user-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return Parse(data, FormatFor(path))
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*fields.Mapping, error) {
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrParse, MaxFileSize)
	}
	if format == FormatYAML {
		return parseYAML(data)
	}
	return parseJSON(data)
}

func parseYAML(data []byte) (*fields.Mapping, error) {
	pairs, err := yamlutil.UnmarshalOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	m := &fields.Mapping{}
	for _, p := range pairs {
		value, err := scalarText(p.Key, p.Value)
		if err != nil {
			return nil, err
		}
		m.Set(p.Key, value)
	}
	return m, nil
}

// parseJSON walks the token stream instead of decoding into a map so that
// key order is kept.
func parseJSON(data []byte) (*fields.Mapping, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrParse)
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top level must be an object", ErrParse)
	}

	m := &fields.Mapping{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrParse, tok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		value, err := scalarText(key, raw)
		if err != nil {
			return nil, err
		}
		m.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after top-level object", ErrParse)
	}
	return m, nil
}

// scalarText renders a decoded value as replacement text.
func scalarText(key string, v any) (string, error) {
	switch tv := v.(type) {
	case string:
		return tv, nil
	case json.Number:
		return tv.String(), nil
	case bool:
		return strconv.FormatBool(tv), nil
	case int, int64, uint64, float64:
		return fmt.Sprint(tv), nil
	case nil:
		return "", fmt.Errorf("%w: value for %q is null", ErrParse, key)
	default:
		return "", fmt.Errorf("%w: value for %q must be a string, number or boolean", ErrParse, key)
	}
}
