package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Policy is a host block list. Patterns are globs over the host name with '.'
// as separator, so "*.example.com" matches "mail.example.com" but not
// "example.com", and "**.example.com" matches any depth.
type Policy struct {
	patterns []string
	globs    []glob.Glob
}

// NewPolicy compiles the given block patterns.
func NewPolicy(blocked []string) (*Policy, error) {
	p := &Policy{}
	for _, pattern := range blocked {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid block pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, pattern)
		p.globs = append(p.globs, g)
	}
	return p, nil
}

// Allows reports whether navigation to rawURL is permitted. When it is not,
// the matching pattern is returned. A nil Policy allows everything.
func (p *Policy) Allows(rawURL string) (bool, string) {
	if p == nil || len(p.globs) == 0 {
		return true, ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true, ""
	}
	host := strings.ToLower(u.Hostname())
	for i, g := range p.globs {
		if g.Match(host) {
			return false, p.patterns[i]
		}
	}
	return true, ""
}

// Patterns returns the compiled patterns.
func (p *Policy) Patterns() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.patterns))
	copy(out, p.patterns)
	return out
}
