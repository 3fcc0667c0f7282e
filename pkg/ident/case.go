// Package ident implements the Identifier & Naming Service (spec §4.1): it
// sanitizes SVD names into target-language identifiers, applies per-category
// case/prefix/suffix rules, reserves language keywords, and expands array
// placeholders.
package ident

import "strings"

// toWords splits a raw SVD name into case-insensitive words, the same
// normalization inflections-style libraries use ahead of re-casing:
// underscores and hyphens are word boundaries, and an internal
// lower-to-upper transition (as in "GPIOA" -> already-upper, "gpioPin" ->
// "gpio"/"Pin") starts a new word.
func toWords(s string) []string {
	var (
		words   []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)

	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case i > 0 && isLower(runes[i-1]) && isUpper(r):
			flush()
			current.WriteRune(r)
		case i > 0 && isUpper(runes[i-1]) && isUpper(r) && i+1 < len(runes) && isLower(runes[i+1]):
			// "ABField" -> "AB", "Field": the last upper before a
			// lowercase run starts a new word.
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}

	flush()

	return words
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

// toConstantCase renders words as SCREAMING_SNAKE_CASE.
func toConstantCase(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToUpper(w)
	}

	return strings.Join(out, "_")
}

// toSnakeCase renders words as snake_case.
func toSnakeCase(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}

	return strings.Join(out, "_")
}

// toPascalCase renders words as PascalCase.
func toPascalCase(words []string) string {
	var b strings.Builder

	for _, w := range words {
		if w == "" {
			continue
		}

		lower := strings.ToLower(w)
		b.WriteString(strings.ToUpper(lower[:1]))
		b.WriteString(lower[1:])
	}

	return b.String()
}
