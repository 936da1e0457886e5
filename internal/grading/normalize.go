package grading

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

// truthyValues is the vocabulary read as "true" for TRUE_FALSE questions.
var truthyValues = map[string]struct{}{
	"true":  {},
	"1":     {},
	"yes":   {},
	"да":    {},
	"верно": {},
}

// foldText trims surrounding whitespace and folds case.
func foldText(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// normalizeOption strips markup, collapses whitespace and folds case so that
// "<p>A</p>" and " a " compare equal.
func normalizeOption(s string) string {
	return foldText(strings.Join(strings.Fields(stripHTML(s)), " "))
}

// stripHTML keeps only the text content of s, with entities decoded.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed markup; either way keep what was collected
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

func isTruthy(s string) bool {
	_, ok := truthyValues[foldText(s)]
	return ok
}

// optionSet normalizes every option and collapses duplicates. Options that are
// empty after normalization are dropped.
func optionSet(options []string) map[string]struct{} {
	set := make(map[string]struct{}, len(options))
	for _, option := range options {
		if n := normalizeOption(option); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
