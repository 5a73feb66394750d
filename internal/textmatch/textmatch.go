// Package textmatch holds the fuzzy string predicates used to match authors and
// titles across catalogs. Matching is lowercase, punctuation-free substring
// containment in either direction. It is a heuristic: short titles can match
// unrelated ones, and titles that differ only by subtitle wording can fail to
// match.
package textmatch

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Normalize lowercases s and strips every character that is neither an ASCII
// word character nor whitespace.
func Normalize(s string) string {
	return nonWord.ReplaceAllString(strings.ToLower(s), "")
}

// Contains reports whether the normalized forms of a and b are equal or one
// contains the other.
func Contains(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

// AuthorMatches reports whether a catalog author refers to the wanted author.
func AuthorMatches(candidate, wanted string) bool {
	return Contains(candidate, wanted)
}

// AnyAuthorMatches reports whether any of candidates matches wanted. An empty
// candidate list never matches.
func AnyAuthorMatches(candidates []string, wanted string) bool {
	for _, c := range candidates {
		if AuthorMatches(c, wanted) {
			return true
		}
	}
	return false
}

// TitleOwned reports whether an owned title represents a catalog title.
// "Harry Potter and the Sorcerer's Stone" does not own "Harry Potter 1".
func TitleOwned(owned, catalog string) bool {
	return Contains(owned, catalog)
}
