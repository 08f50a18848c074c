// Package textutil sanitizes free-form archival metadata for use in
// filenames and note titles.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	unsafeRegex     = regexp.MustCompile(`[^\p{L}\p{N}\s._-]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// SanitizeFileName flattens a free-form title into a safe filename stem:
// combining marks stripped via NFKD, unsafe characters removed, whitespace
// collapsed to single dashes.
func SanitizeFileName(title string) string {
	title = norm.NFKD.String(title)

	var builder strings.Builder
	for _, r := range title {
		if !unicode.IsMark(r) {
			builder.WriteRune(r)
		}
	}
	title = builder.String()

	title = unsafeRegex.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	title = whitespaceRegex.ReplaceAllString(title, "-")

	return title
}

// CollapseWhitespace trims and collapses runs of whitespace to single spaces.
func CollapseWhitespace(text string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(text), " ")
}
