package search

import (
	"regexp"
	"strings"
)

// Intent records which kinds of question a query asks.
type Intent struct {
	// Quantity is set for "how many" style questions.
	Quantity bool
	// Hiring is set for questions about roles and openings.
	Hiring bool
	// Current is set when the question is about the present.
	Current bool
}

var (
	quantityPattern = regexp.MustCompile(`(?i)how many|number of|total`)
	hiringPattern   = regexp.MustCompile(`(?i)hiring|roles?|positions?|jobs?|openings?`)
	currentPattern  = regexp.MustCompile(`(?i)current|currently|right now|at the moment`)

	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Normalize lowercases q, strips punctuation and collapses whitespace.
func Normalize(q string) string {
	q = strings.ToLower(q)
	q = punctuation.ReplaceAllString(q, "")
	q = whitespace.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}

// ClassifyIntent tests q against each intent pattern independently.
func ClassifyIntent(q string) Intent {
	return Intent{
		Quantity: quantityPattern.MatchString(q),
		Hiring:   hiringPattern.MatchString(q),
		Current:  currentPattern.MatchString(q),
	}
}

// substitution rewrites one word of a query into an alternative phrasing.
type substitution struct {
	pattern *regexp.Regexp
	with    string
}

func wordSubstitution(word, with string) substitution {
	return substitution{pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`), with: with}
}

var (
	hiringSubstitutions = []substitution{
		wordSubstitution("roles", "positions"),
		wordSubstitution("roles", "jobs"),
		wordSubstitution("hiring", "recruiting"),
	}
	currentSubstitutions = []substitution{
		wordSubstitution("currently", "right now"),
		wordSubstitution("current", "latest"),
	}
)

// Variations returns the normalized query followed by the rephrasings its
// intent calls for. No entry repeats; order is stable.
func Variations(normalized string, intent Intent) []string {
	variations := []string{normalized}
	seen := map[string]bool{normalized: true}

	add := func(subs []substitution) {
		for _, sub := range subs {
			v := sub.pattern.ReplaceAllString(normalized, sub.with)
			if !seen[v] {
				seen[v] = true
				variations = append(variations, v)
			}
		}
	}

	if intent.Hiring {
		add(hiringSubstitutions)
	}
	if intent.Current {
		add(currentSubstitutions)
	}
	return variations
}
