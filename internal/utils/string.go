package utils

import (
	"regexp"
	"strings"
)

func TruncateString(str string, borderSizeToKeep int) string {
	if len(str) <= 2*borderSizeToKeep {
		return str
	}
	return str[:borderSizeToKeep] + "..." + str[len(str)-borderSizeToKeep:]
}

var rxNonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts an arbitrary name into a URL-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = rxNonSlugChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
