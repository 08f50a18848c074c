package archive

import (
	"net/url"
	"regexp"
)

var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/details/([^/?#]+)`),
	regexp.MustCompile(`^/embed/([^/?#]+)`),
	regexp.MustCompile(`^/download/([^/?#]+)`),
}

// ExtractIdentifier canonicalizes a pasted URL or raw token into an item
// identifier. Non-URL input is returned unchanged; a URL whose path matches
// none of the known conventions is also passed through, since the remote API
// may still accept it. Invalid identifiers surface later as fetch failures.
func ExtractIdentifier(input string) string {
	u, err := url.Parse(input)
	if err != nil || !u.IsAbs() {
		return input
	}

	for _, pattern := range identifierPatterns {
		if match := pattern.FindStringSubmatch(u.Path); len(match) == 2 {
			return match[1]
		}
	}

	return input
}
