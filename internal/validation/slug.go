package validation

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var neighborhoodSlugRegex = regexp.MustCompile(`^[a-z0-9-]{2,60}$`)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// ValidateNeighborhoodSlug checks the slug format used in feed URLs.
func ValidateNeighborhoodSlug(slug string) error {
	if !neighborhoodSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 2-60 characters and contain only lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}
	return nil
}

// Slugify turns a display name such as "Mănăștur" into "manastur".
func Slugify(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(name)))
	var b strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	return strings.Trim(nonSlugChars.ReplaceAllString(b.String(), "-"), "-")
}
