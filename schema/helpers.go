package schema

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// CollectionPrefix starts every per-city collection name.
	CollectionPrefix = "assessments_"

	maxCollectionSuffix = 50
)

var (
	disallowedCollectionChars = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRun             = regexp.MustCompile(`\s+`)
)

// SanitizeCollectionName turns a city into a storage-safe suffix:
// lower-cased, restricted to [a-z0-9_] and at most 50 characters.
func SanitizeCollectionName(city string) string {
	s := strings.ToLower(city)
	s = disallowedCollectionChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, "_")
	if len(s) > maxCollectionSuffix {
		s = s[:maxCollectionSuffix]
	}
	return s
}

// CollectionFor returns the collection an assessment for city belongs to.
func CollectionFor(city string) string {
	return CollectionPrefix + SanitizeCollectionName(city)
}

// FormatScore renders a score with the given number of decimals.
func FormatScore(score float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, score)
}
