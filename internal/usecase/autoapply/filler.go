package autoapply

import (
	"context"
	"strings"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"
)

const logValueLimit = 20

// fieldRule maps a label predicate to a profile attribute.
type fieldRule struct {
	attribute string
	matches   func(label string) bool
	value     func(p entity.UserProfile) string
}

// fieldRules is evaluated in order against the lowercased label; the first
// matching rule decides the value even when that value is empty.
var fieldRules = []fieldRule{
	{
		attribute: "first_name",
		matches:   containsAll("first", "name"),
		value: func(p entity.UserProfile) string {
			tokens := p.NameTokens()
			if len(tokens) == 0 {
				return ""
			}
			return tokens[0]
		},
	},
	{
		attribute: "last_name",
		matches:   containsAll("last", "name"),
		value: func(p entity.UserProfile) string {
			tokens := p.NameTokens()
			if len(tokens) < 2 {
				return ""
			}
			return tokens[len(tokens)-1]
		},
	},
	{attribute: "email", matches: containsAny("email"), value: func(p entity.UserProfile) string { return p.Email }},
	{attribute: "phone", matches: containsAny("phone"), value: func(p entity.UserProfile) string { return p.Phone }},
	{attribute: "linkedin_url", matches: containsAny("linkedin"), value: func(p entity.UserProfile) string { return p.LinkedInURL }},
	{attribute: "github_url", matches: containsAny("github"), value: func(p entity.UserProfile) string { return p.GitHubURL }},
	{attribute: "portfolio_url", matches: containsAny("portfolio", "website"), value: func(p entity.UserProfile) string { return p.PortfolioURL }},
}

func containsAll(words ...string) func(string) bool {
	return func(label string) bool {
		for _, w := range words {
			if !strings.Contains(label, w) {
				return false
			}
		}
		return true
	}
}

func containsAny(words ...string) func(string) bool {
	return func(label string) bool {
		for _, w := range words {
			if strings.Contains(label, w) {
				return true
			}
		}
		return false
	}
}

// resolveFieldValue returns the profile value for a label and the attribute
// that matched. attribute is empty when no rule matches.
func resolveFieldValue(label string, p entity.UserProfile) (value, attribute string) {
	lower := strings.ToLower(label)
	for _, rule := range fieldRules {
		if rule.matches(lower) {
			return rule.value(p), rule.attribute
		}
	}
	return "", ""
}

type filler struct {
	log *statusLog
}

// fill writes the mapped profile value into a text, email or tel field.
// It reports whether a value was written; errors are logged, never returned.
func (f *filler) fill(ctx context.Context, s output.BrowserSession, field entity.FormField, p entity.UserProfile) bool {
	value, attribute := resolveFieldValue(field.Label, p)
	if value == "" || !field.Type.Writable() {
		f.log.logger.Debug("Field skipped",
			"label", field.Label,
			"type", field.Type,
			"attribute", attribute,
			"hasValue", value != "",
		)
		return false
	}

	if err := s.Fill(ctx, field.Selector, value); err != nil {
		f.log.addf("Error filling field %s: %v", field.Label, err)
		return false
	}

	f.log.addf("Filled %s: %s", field.Label, truncateForLog(value))
	return true
}

func truncateForLog(value string) string {
	runes := []rune(value)
	if len(runes) <= logValueLimit {
		return value
	}
	return string(runes[:logValueLimit]) + "..."
}
