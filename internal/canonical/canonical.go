// Package canonical contains pure URL-normalization helpers used to
// recognize the same posting reachable through multiple URL variants.
package canonical

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Key identifies a posting across URL variants. Two URLs that differ only
// by query string, fragment, tracking parameters, or the trailing listing
// id share the same Key.
type Key struct {
	Host string
	Path string
}

var listingIDPattern = regexp.MustCompile(`(?i),oferta,(\d+)$`)

// KeyAndID derives the canonical key for rawURL and extracts the trailing
// numeric listing id if the path carries one. ok reports whether an id was
// found.
func KeyAndID(rawURL string) (key Key, id int64, ok bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		// An unparsable URL canonicalizes to itself so it still groups
		// with exact duplicates.
		return Key{Path: rawURL}, 0, false
	}

	host := strings.ToLower(parsed.Host)
	path := strings.TrimRight(parsed.Path, "/")

	if m := listingIDPattern.FindStringSubmatch(path); m != nil {
		if parsed, perr := strconv.ParseInt(m[1], 10, 64); perr == nil {
			id = parsed
			ok = true
		}
	}

	core := strings.ToLower(listingIDPattern.ReplaceAllString(path, ""))
	return Key{Host: host, Path: core}, id, ok
}
