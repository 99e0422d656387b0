// Package urlnorm canonicalizes URLs into stable keys for place deduplication.
//
// Two URLs that differ only in scheme/host case, default port, fragment, or a
// missing root path normalize to the same key. The functions are pure and
// idempotent: Normalize(Normalize(u)) == Normalize(u).
package urlnorm

import (
	"fmt"
	"net/url"
	"strings"
)

// AboutBlank is the sentinel URL for blank pages. It normalizes to itself and
// is never persisted as a place.
const AboutBlank = "about:blank"

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

// Normalize returns the canonical key for a URL.
func Normalize(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}
	if raw == AboutBlank {
		return AboutBlank, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("url %q has no scheme", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	u.RawFragment = ""

	if u.Host != "" {
		host := strings.ToLower(u.Hostname())
		port := u.Port()
		if port != "" && port != defaultPorts[u.Scheme] {
			host = host + ":" + port
		}
		u.Host = host

		if u.Path == "" {
			u.Path = "/"
		}
	}

	return u.String(), nil
}

// Parts returns the lowercase hostname and the path of a URL, for persistence
// alongside the normalized key. The path of a hostless URL is its opaque part.
func Parts(rawURL string) (hostname, path string) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ""
	}
	if u.Host == "" {
		return "", u.Opaque
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return strings.ToLower(u.Hostname()), path
}
