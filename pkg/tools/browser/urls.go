package browser

import "strings"

// normalizeURL adds https:// to addresses given without a scheme.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}
	return raw
}

// sameURL compares two URLs ignoring trailing slashes.
func sameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// findTab returns the index of the first tab whose URL contains target, or -1.
func findTab(tabURLs []string, target string) int {
	for i, u := range tabURLs {
		if strings.Contains(u, target) {
			return i
		}
	}
	return -1
}
