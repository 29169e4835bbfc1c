// Package classify guesses which textbook integration techniques apply to
// an integrand from its text alone.
//
// The guess is advisory. It is driven by an ordered rule table over the
// lower-cased input and never looks at the parsed expression.
package classify

import (
	"slices"
	"strings"
)

// Method is a technique label.
type Method string

const (
	TrigSubstitution Method = "Trigonometric Substitution"
	TrigIdentities   Method = "Trigonometric Identities"
	ByParts          Method = "Integration by Parts"
	PartialFractions Method = "Partial Fractions"
	USubstitution    Method = "U-Substitution"
)

// Rule inspects lower-cased text together with the labels emitted by
// earlier rules and reports the label it contributes, if any.
type Rule struct {
	Name  string
	Match func(text string, emitted []Method) (Method, bool)
}

// Rules run in order; each contributes at most one label.
var Rules = []Rule{
	{Name: "trigonometric", Match: matchTrig},
	{Name: "by-parts", Match: matchByParts},
	{Name: "partial-fractions", Match: matchPartialFractions},
	{Name: "composite", Match: matchComposite},
	{Name: "call-parenthesis", Match: matchCallParenthesis},
}

// Methods returns the labels for text in rule order without duplicates.
func Methods(text string) []Method {
	lower := strings.ToLower(text)
	out := []Method{}
	for _, r := range Rules {
		if m, ok := r.Match(lower, out); ok && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

var trigNames = []string{"sin", "cos", "tan", "sec", "csc", "cot"}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func matchTrig(text string, _ []Method) (Method, bool) {
	found := 0
	for _, name := range trigNames {
		if strings.Contains(text, name) {
			found++
		}
	}
	switch {
	case found == 0:
		return "", false
	case strings.Contains(text, "sqrt") && containsAny(text, "+", "-"):
		return TrigSubstitution, true
	case found >= 2:
		return TrigIdentities, true
	}
	return "", false
}

func matchByParts(text string, _ []Method) (Method, bool) {
	if !strings.Contains(text, "x") {
		return "", false
	}
	if containsAny(text, "log", "ln") {
		return ByParts, true
	}
	if containsAny(text, "sin", "cos", "exp", "e^") && containsAny(text, "x*sin", "x*cos", "x*exp", "x*e^") {
		return ByParts, true
	}
	return "", false
}

func matchPartialFractions(text string, _ []Method) (Method, bool) {
	if strings.Count(text, "/") != 1 {
		return "", false
	}
	_, den, _ := strings.Cut(text, "/")
	if containsAny(den, "x^2", "x**2", "(") {
		return PartialFractions, true
	}
	return "", false
}

// compositePairs lists an outer function with the substrings that suggest
// its argument's derivative also appears. The first matching pair wins.
var compositePairs = []struct {
	outer string
	with  []string
}{
	{"log", []string{"/", "x"}},
	{"sin", []string{"cos"}},
	{"cos", []string{"sin"}},
	{"exp", []string{"x"}},
	{"sqrt", []string{"x"}},
}

func matchComposite(text string, _ []Method) (Method, bool) {
	for _, p := range compositePairs {
		if strings.Contains(text, p.outer) && containsAny(text, p.with...) {
			return USubstitution, true
		}
	}
	return "", false
}

func matchCallParenthesis(text string, emitted []Method) (Method, bool) {
	if slices.Contains(emitted, USubstitution) || slices.Contains(emitted, ByParts) {
		return "", false
	}
	if strings.Contains(text, "(") && strings.Contains(text, ")") && strings.Contains(text, "x") &&
		containsAny(text, "sin(", "cos(", "exp(", "log(") {
		return USubstitution, true
	}
	return "", false
}
