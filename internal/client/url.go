package client

import "strings"

// NormalizeURL prepends "https://" unless the input already carries an
// explicit http:// or https:// scheme. No further validation: malformed
// URLs are stored as given.
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}
