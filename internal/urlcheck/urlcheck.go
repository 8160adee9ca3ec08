// Package urlcheck validates and canonicalizes URLs submitted through the
// admin panel before they are stored in the catalog.
package urlcheck

import (
	"net/url"
	"strings"
)

// Normalize parses raw as an absolute http(s) URL and returns its canonical
// string form. It rejects anything that does not parse, has no host, or uses
// a scheme other than http/https — which excludes script-executing and
// data-embedding schemes like javascript: and data:.
func Normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), true
}
