// Package slug builds the URL slugs of campaigns and entities.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// maxSuffix caps the "-2", "-3", ... search in Unique before it falls back
// to a random suffix.
const maxSuffix = 101

var (
	separators = regexp.MustCompile(`[^a-z0-9]+`)
	wellFormed = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Make lowercases name and joins its alphanumeric runs with hyphens.
// Names with nothing usable in them yield fallback.
func Make(name, fallback string) string {
	s := separators.ReplaceAllString(strings.ToLower(name), "-")
	if s = strings.Trim(s, "-"); s == "" {
		return fallback
	}
	return s
}

// Valid reports whether s is already a well-formed slug.
func Valid(s string) bool { return wellFormed.MatchString(s) }

// TakenFunc reports whether a slug is in use by another record.
type TakenFunc func(ctx context.Context, slug string) (bool, error)

// Unique returns base, or base with the lowest free numeric suffix.
func Unique(ctx context.Context, base string, taken TakenFunc) (string, error) {
	candidate := base
	for n := 2; n <= maxSuffix; n++ {
		inUse, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return base + "-" + uuid.NewString()[:8], nil
}
