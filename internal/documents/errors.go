package documents

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound covers both nonexistent documents and documents owned by
// someone else: cross-owner access must be indistinguishable from absence.
var ErrNotFound = errors.New("document not found")

// ErrMissingQuery is returned when a search is attempted without a term.
var ErrMissingQuery = errors.New("search term is required")

// ValidationError reports field-level schema violations.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid document: " + strings.Join(parts, "; ")
}
