package headless

import (
	"fmt"

	"github.com/gobwas/glob"
)

// urlRule is one compiled page URL pattern.
type urlRule struct {
	pattern string
	g       glob.Glob
}

// PatternMatcher decides which page URLs may submit forms. Patterns use '/'
// as separator: "https://shop.example.com/*" matches one path segment and
// "https://shop.example.com/**" any path.
type PatternMatcher struct {
	allowed []urlRule
	denied  []urlRule
}

func compileRules(kind string, patterns []string) ([]urlRule, error) {
	rules := make([]urlRule, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern '%s': %w", kind, p, err)
		}
		rules = append(rules, urlRule{pattern: p, g: g})
	}
	return rules, nil
}

func NewPatternMatcher(allowed, denied []string) (*PatternMatcher, error) {
	allowRules, err := compileRules("allowed", allowed)
	if err != nil {
		return nil, err
	}
	denyRules, err := compileRules("denied", denied)
	if err != nil {
		return nil, err
	}
	return &PatternMatcher{allowed: allowRules, denied: denyRules}, nil
}

// DeniedBy returns the first denied pattern matching pageURL.
func (pm *PatternMatcher) DeniedBy(pageURL string) (string, bool) {
	for _, r := range pm.denied {
		if r.g.Match(pageURL) {
			return r.pattern, true
		}
	}
	return "", false
}

// IsAllowed reports whether pageURL passes the rules. Denied patterns win;
// an empty allow list lets every URL that is not denied through.
func (pm *PatternMatcher) IsAllowed(pageURL string) bool {
	if _, denied := pm.DeniedBy(pageURL); denied {
		return false
	}
	if len(pm.allowed) == 0 {
		return true
	}
	for _, r := range pm.allowed {
		if r.g.Match(pageURL) {
			return true
		}
	}
	return false
}
