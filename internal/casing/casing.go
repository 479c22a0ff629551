// Package casing classifies identifiers against Rust naming conventions and
// computes conforming replacements.
package casing

import (
	"strings"
	"unicode"
)

// Style is a naming convention an identifier may be checked against.
type Style int

const (
	CamelCase Style = iota
	SnakeCase
	UpperSnakeCase
)

// Fallback names reported when an identifier has no usable core.
const (
	camelFallback = "CamelCase"
	snakeFallback = "snake_case"
	upperFallback = "UPPER_CASE"
)

func (s Style) String() string {
	switch s {
	case CamelCase:
		return "camel"
	case SnakeCase:
		return "snake"
	case UpperSnakeCase:
		return "upper"
	}
	return "unknown"
}

// Phrase returns the style as it reads in a diagnostic ("a camel", "an upper").
func (s Style) Phrase() string {
	if s == UpperSnakeCase {
		return "an " + s.String()
	}
	return "a " + s.String()
}

// Matches reports whether name already conforms to the style. Leading and
// trailing underscores are ignored.
func (s Style) Matches(name string) bool {
	core := strings.Trim(name, "_")
	switch s {
	case CamelCase:
		return isCamelCase(core)
	case SnakeCase:
		return core != "" && !strings.ContainsFunc(core, unicode.IsUpper)
	case UpperSnakeCase:
		return core != "" && !strings.ContainsFunc(core, unicode.IsLower)
	}
	return false
}

// Suggest returns a name that conforms to the style. A name that already
// conforms is returned unchanged, so Suggest is idempotent.
func (s Style) Suggest(name string) string {
	if s.Matches(name) {
		return name
	}
	return s.rewrite(name)
}

// Classify returns ("", false) when name conforms to style, and a conforming
// replacement with true otherwise.
func Classify(name string, style Style) (string, bool) {
	if style.Matches(name) {
		return "", false
	}
	return style.rewrite(name), true
}

func (s Style) rewrite(name string) string {
	empty := strings.Trim(name, "_") == ""
	switch s {
	case CamelCase:
		if empty {
			return camelFallback
		}
		return toCamelCase(name)
	case SnakeCase:
		if empty {
			return snakeFallback
		}
		return ToSnakeCase(name, false)
	case UpperSnakeCase:
		if empty {
			return upperFallback
		}
		return ToSnakeCase(name, true)
	}
	return name
}

func hasCase(r rune) bool {
	return unicode.IsLower(r) || unicode.IsUpper(r)
}

func isCamelCase(s string) bool {
	if s == "" || strings.Contains(s, "__") {
		return false
	}
	runes := []rune(s)
	if unicode.IsLower(runes[0]) {
		return false
	}
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		if (hasCase(prev) && cur == '_') || (prev == '_' && hasCase(cur)) {
			return false
		}
	}
	return true
}

func toCamelCase(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	wasUnderscore := true
	startWord := true
	for _, r := range name {
		switch {
		case r == '_':
			wasUnderscore = true
		case wasUnderscore || startWord && (unicode.IsUpper(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToUpper(r))
			wasUnderscore = false
			startWord = false
		default:
			startWord = unicode.IsLower(r)
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if b.Len() == 0 {
		return camelFallback
	}
	return b.String()
}

// ToSnakeCase rewrites name into snake_case, or UPPER_SNAKE_CASE when upper is
// set. A prefix of underscores and quotes (lifetimes) is kept verbatim.
func ToSnakeCase(name string, upper bool) string {
	fold := unicode.ToLower
	if upper {
		fold = unicode.ToUpper
	}

	prefixEnd := strings.IndexFunc(name, func(r rune) bool { return r != '_' && r != '\'' })
	if prefixEnd < 0 {
		return name
	}

	var b strings.Builder
	b.Grow(len(name) + 3)
	b.WriteString(name[:prefixEnd])

	firstPart := true
	for _, part := range strings.Split(name[prefixEnd:], "_") {
		if part == "" {
			continue
		}
		if !firstPart {
			b.WriteByte('_')
		}
		firstPart = false

		// afterLower is true when the previous rune was lowercase or uncased.
		afterLower := false
		firstRune := true
		for _, r := range part {
			isUpper := unicode.IsUpper(r)
			if afterLower && isUpper && !firstRune {
				b.WriteByte('_')
			}
			afterLower = !isUpper
			b.WriteRune(fold(r))
			firstRune = false
		}
	}
	return b.String()
}
