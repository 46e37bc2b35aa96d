// ABOUTME: Prefix-based message router selecting the A2A backend for a run
// ABOUTME: Total and deterministic; rules and default target come from configuration

package gateway

import (
	"strings"
	"unicode"

	"github.com/2389/agui-gateway/internal/a2a"
)

// Target is one routable A2A backend with its shared streaming client.
type Target struct {
	Name   string
	Client *a2a.Client
}

// Rule is one prefix routing rule. Rules are evaluated in priority order;
// the first case-insensitive prefix match wins.
type Rule struct {
	Prefix string
	Target *Target
	Strip  bool
}

// RouteDecision is the outcome of routing one message.
// When Empty is set, a matched rule rewrote the forwarded text to nothing:
// the handler must not contact any backend and synthesizes an empty run.
type RouteDecision struct {
	Target *Target
	Text   string
	Empty  bool
}

// Router maps message text to a backend target. It is a pure, total
// function over its fixed rule set: Select never fails and always returns
// the same decision for the same text.
type Router struct {
	rules      []Rule
	defaultTgt *Target
}

// NewRouter creates a Router with the given ordered rules and default target.
func NewRouter(rules []Rule, defaultTarget *Target) *Router {
	return &Router{rules: rules, defaultTgt: defaultTarget}
}

// Select resolves the target and forwarded text for one message.
// Unmatched messages go to the default target with the text unmodified.
func (r *Router) Select(text string) RouteDecision {
	trimmed := strings.TrimSpace(text)

	for _, rule := range r.rules {
		if !hasPrefixFold(trimmed, rule.Prefix) {
			continue
		}
		if !rule.Strip {
			return RouteDecision{Target: rule.Target, Text: trimmed}
		}

		rest := stripSeparator(trimmed[len(rule.Prefix):])
		if rest == "" {
			return RouteDecision{Target: rule.Target, Empty: true}
		}
		return RouteDecision{Target: rule.Target, Text: rest}
	}

	return RouteDecision{Target: r.defaultTgt, Text: text}
}

// hasPrefixFold reports whether s starts with prefix, case-insensitively.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// stripSeparator drops a single separator character left over after
// removing a matched prefix, plus any surrounding whitespace.
func stripSeparator(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if len(s) > 0 && s[0] == ':' {
		s = s[1:]
	}
	return strings.TrimSpace(s)
}
