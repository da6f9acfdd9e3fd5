package querysql

import (
	"strings"

	"github.com/roach88/qplan/internal/filter"
)

const likeEscape = '\\'

// likePattern builds a LIKE pattern for op. escaped reports whether the
// pattern uses the backslash escape and needs an ESCAPE clause; it is only
// set when the text contains a literal % or _.
func likePattern(op filter.Operator, text string) (pattern string, escaped bool) {
	escaped = strings.ContainsAny(text, "%_")
	if op == filter.OpMatches {
		return likeFromWildcard(text, escaped), escaped
	}

	lit := text
	if escaped {
		lit = escapeLike(text)
	}
	return wrap(op, lit, "%"), escaped
}

// escapeLike escapes the backslash escape character itself plus both LIKE
// wildcards.
func escapeLike(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case likeEscape, '%', '_':
			b.WriteRune(likeEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// likeFromWildcard translates * and ? into % and _.
func likeFromWildcard(pattern string, escape bool) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case likeEscape, '%', '_':
			if escape {
				b.WriteRune(likeEscape)
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// globPattern builds a GLOB pattern for op. GLOB has no escape character;
// metacharacters are matched literally by wrapping them in a bracket class.
func globPattern(op filter.Operator, text string) string {
	if op == filter.OpMatches {
		return strings.ReplaceAll(text, "[", "[[]")
	}
	return wrap(op, escapeGlob(text), "*")
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func wrap(op filter.Operator, lit, wildcard string) string {
	switch op {
	case filter.OpStartsWith:
		return lit + wildcard
	case filter.OpEndsWith:
		return wildcard + lit
	default:
		return wildcard + lit + wildcard
	}
}
