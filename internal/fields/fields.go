// Package fields holds the replacement mapping and the literal substitution
// applied to every text-bearing region of a document.
//
// Substitution is plain substring replacement. Entries are applied in
// insertion order, and a later entry sees the text produced by earlier
// ones: if the value of "{{a}}" contains "{{b}}" and "{{b}}" comes after
// "{{a}}", the introduced "{{b}}" is replaced too.
package fields

import "strings"

// Entry is one marker/value pair.
type Entry struct {
	Marker string
	Value  string
}

// Mapping is an ordered set of replacement entries keyed by marker.
// The zero value is an empty mapping ready for use.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// NewMapping returns a mapping holding the given entries in order.
// A repeated marker keeps its first position and takes the last value.
func NewMapping(entries ...Entry) *Mapping {
	m := &Mapping{}
	for _, e := range entries {
		m.Set(e.Marker, e.Value)
	}
	return m
}

// Set adds marker with value, or updates the value in place when the marker
// is already present.
func (m *Mapping) Set(marker, value string) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[marker]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[marker] = len(m.entries)
	m.entries = append(m.entries, Entry{Marker: marker, Value: value})
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Markers returns the markers in application order.
func (m *Mapping) Markers() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Marker
	}
	return out
}

// Entries returns a copy of the entries in application order.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Apply replaces every literal occurrence of each marker in text with its
// value, entry by entry. Empty markers are skipped.
func (m *Mapping) Apply(text string) string {
	if m == nil {
		return text
	}
	for _, e := range m.entries {
		if e.Marker == "" {
			continue
		}
		if strings.Contains(text, e.Marker) {
			text = strings.ReplaceAll(text, e.Marker, e.Value)
		}
	}
	return text
}

// Matches reports whether text contains at least one marker.
func (m *Mapping) Matches(text string) bool {
	if m == nil {
		return false
	}
	for _, e := range m.entries {
		if e.Marker != "" && strings.Contains(text, e.Marker) {
			return true
		}
	}
	return false
}
