// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Config files decode into structs; parameter files decode into ordered
// key/value pairs so field order survives the round trip.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNotMapping     = errors.New("yamlutil: top level is not a mapping")
)

// Pair is one key/value of a top-level mapping, in document order.
// Value holds whatever the decoder produced: string, integer, float, bool,
// nil, []any, or []Pair for a nested mapping.
type Pair struct {
	Key   string
	Value any
}

func checkSize(data []byte) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	return nil
}

// UnmarshalStrict decodes into v and rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := checkSize(data); err != nil {
		return err
	}
	if v == nil {
		return ErrNilDestination
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalOrdered decodes a top-level mapping and returns its pairs in the
// order they appear in the input.
func UnmarshalOrdered(data []byte) ([]Pair, error) {
	if err := checkSize(data); err != nil {
		return nil, err
	}

	var v any
	if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}

	ms, ok := v.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, v)
	}
	return toPairs(ms), nil
}

func toPairs(ms yaml.MapSlice) []Pair {
	pairs := make([]Pair, 0, len(ms))
	for _, item := range ms {
		pairs = append(pairs, Pair{
			Key:   fmt.Sprint(item.Key),
			Value: normalize(item.Value),
		})
	}
	return pairs
}

func normalize(v any) any {
	switch tv := v.(type) {
	case yaml.MapSlice:
		return toPairs(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
