package common

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptySlug = errors.New("slug cannot be empty")
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify derives a URL-safe slug from a display name: lowercase, runs of
// non-alphanumeric characters collapsed to single hyphens, no leading or
// trailing hyphen. Returns ErrEmptySlug when nothing slug-worthy survives.
func Slugify(input string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(input))
	slug := strings.Trim(nonSlugChars.ReplaceAllString(lower, "-"), "-")
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}
