package docx2pdf

import (
	"github.com/alnah/go-docx2pdf/internal/params"
)

// LoadParams reads the parameter file at path. Files ending in .yaml or
// .yml are YAML, anything else is JSON.
func LoadParams(path string) (*Mapping, error) {
	return params.Load(path)
}

// ParseParams decodes a JSON parameter object held in memory.
func ParseParams(data []byte) (*Mapping, error) {
	return params.Parse(data, params.FormatJSON)
}
