package ident

import (
	"strconv"
	"strings"

	"github.com/svdgen/svdgen/pkg/config"
)

// blacklistChars is a fixed list of punctuation some SVD vendors use in
// peripheral/field names that is not valid in a generated identifier,
// mirroring original_source/src/util.rs's BLACKLIST_CHARS.
var blacklistChars = []string{"(", ")", "[", "]", ".", ",", "/"}

// reserved is the set of target-language keywords and internal method
// names an identifier must never collide with (spec §4.1 step 5). The
// keyword list is the Rust keyword table from original_source/src/util.rs's
// `keywords!` macro — the naming service sanitizes identifiers that go into
// the generated Rust library, not Go; the internal-method-name list is
// exactly the set of names the Register-Module Emitter (§4.5) generates as
// methods on Reader/Writer types.
var reserved = buildReserved()

func buildReserved() map[string]bool {
	words := []string{
		// Rust keywords (original_source/src/util.rs).
		"abstract", "alignof", "as", "become", "box",
		"break", "const", "continue", "crate", "do",
		"else", "enum", "extern", "false", "final",
		"fn", "for", "if", "impl", "in",
		"let", "loop", "macro", "match", "mod",
		"move", "mut", "offsetof", "override", "priv",
		"proc", "pub", "pure", "ref", "return",
		"self", "sizeof", "static", "struct", "super",
		"trait", "true", "type", "typeof", "unsafe",
		"unsized", "use", "virtual", "where", "while",
		"yield",
		// Reserved in newer Rust editions than util.rs's table covers.
		"async", "await", "dyn",
		// Internal method names reserved by the Register-Module Emitter
		// (spec §4.1 step 5).
		"bits", "set", "bit", "clear_bit", "set_bit", "variant",
	}

	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}

	return out
}

// Expand applies the array placeholder rule (spec §6): names containing
// `[%s]` expand by replacing the bracketed token with the index; names
// containing bare `%s` replace without brackets. At most one form is
// present per array entity.
func Expand(raw string, index int) string {
	idx := strconv.Itoa(index)

	if strings.Contains(raw, "[%s]") {
		return strings.Replace(raw, "[%s]", idx, 1)
	}

	if strings.Contains(raw, "%s") {
		return strings.Replace(raw, "%s", idx, 1)
	}

	return raw
}

// stripBlacklist removes the fixed blacklist of punctuation (spec §4.1
// step 2).
func stripBlacklist(s string) string {
	for _, ch := range blacklistChars {
		s = strings.ReplaceAll(s, ch, "")
	}

	return s
}

// recase applies the case rule for c (spec §4.1 step 3).
func recase(s string, c config.Case) string {
	words := toWords(s)

	switch c {
	case config.Pascal:
		return toPascalCase(words)
	case config.Snake:
		return toSnakeCase(words)
	default:
		return toConstantCase(words)
	}
}

// Ident implements the full naming-service contract: ident(raw, category,
// case, prefix, suffix) -> identifier (spec §4.1). index is only consulted
// when raw contains an array placeholder; pass -1 for non-array entities.
func Ident(raw string, category config.Category, formats config.IdentFormats, index int) string {
	format := formats.Get(category)

	name := raw
	if index >= 0 {
		name = Expand(raw, index)
	}

	name = stripBlacklist(name)
	name = recase(name, format.Case)

	// Applying prefix/suffix is itself idempotent: a name already carrying
	// this category's prefix/suffix is left alone rather than stacking a
	// second copy, so re-running the pipeline on an already-sanitized name
	// is a no-op (spec §8, naming idempotence).
	if format.Prefix != "" && !strings.HasPrefix(name, format.Prefix) {
		name = format.Prefix + name
	}

	if format.Suffix != "" && !strings.HasSuffix(name, format.Suffix) {
		name = name + format.Suffix
	}

	// Step 4: prepend underscore if the first character is a digit.
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}

	// Step 5: append underscore on collision with a reserved word or
	// internal method name. Collisions are checked case-insensitively
	// against the reserved set, which is itself lower-case, so compare on
	// the snake/lower form regardless of the category's case.
	if reserved[strings.ToLower(name)] {
		name += "_"
	}

	return name
}
