package config

// Case selects the casing convention applied by a naming category (spec
// §4.1).
type Case int

const (
	// Constant is SCREAMING_SNAKE_CASE, the default for most categories.
	Constant Case = iota
	// Pascal is PascalCase.
	Pascal
	// Snake is snake_case.
	Snake
)

// Category enumerates the fixed set of naming categories the Identifier &
// Naming Service recognizes (spec §4.1).
type Category int

const (
	FieldAccessor Category = iota
	FieldReader
	FieldWriter
	EnumName
	EnumWriteName
	EnumValue
	EnumValueAccessor
	Interrupt
	Cluster
	Register
	RegisterMod
	RegisterSpec
	Peripheral
	PeripheralFeature
)

// IdentFormat carries the {case, prefix, suffix} triple for one naming
// category.
type IdentFormat struct {
	Case   Case
	Prefix string
	Suffix string
}

// IdentFormats is the full per-category override table. Zero-value entries
// mean "use the default for this category" — callers should merge through
// DefaultIdentFormats rather than relying on Go's zero Case meaning
// Constant by coincidence (which it does, but Merge makes the intent
// explicit and lets prefix/suffix-only overrides compose with a default
// case).
type IdentFormats struct {
	formats map[Category]IdentFormat
}

// DefaultIdentFormats returns the spec-mandated default formatting table,
// resolved from original_source/src/config.rs's IdentFormats::default().
func DefaultIdentFormats() IdentFormats {
	return IdentFormats{formats: map[Category]IdentFormat{
		FieldAccessor:      {Case: Snake},
		FieldReader:        {Case: Constant, Suffix: "_R"},
		FieldWriter:        {Case: Constant, Suffix: "_W"},
		EnumName:           {Case: Constant, Suffix: "_A"},
		EnumWriteName:      {Case: Constant, Suffix: "_AW"},
		EnumValue:          {Case: Constant},
		EnumValueAccessor:  {Case: Snake},
		Interrupt:          {Case: Constant},
		Cluster:            {Case: Constant},
		Register:           {Case: Constant},
		RegisterMod:        {Case: Snake},
		RegisterSpec:       {Case: Constant, Suffix: "_SPEC"},
		Peripheral:         {Case: Constant},
		PeripheralFeature:  {Case: Snake},
	}}
}

// Get returns the format for the given category, falling back to the
// spec-mandated default for any category not present in an override table
// built by Set.
func (f IdentFormats) Get(c Category) IdentFormat {
	if fmt, ok := f.formats[c]; ok {
		return fmt
	}

	return DefaultIdentFormats().formats[c]
}

// Set overrides the format for a single category, returning the updated
// table (IdentFormats is copied by value, matching Config's flat-struct
// style).
func (f IdentFormats) Set(c Category, format IdentFormat) IdentFormats {
	out := map[Category]IdentFormat{}

	for k, v := range f.formats {
		out[k] = v
	}

	out[c] = format

	return IdentFormats{formats: out}
}

// WithPascalEnumValues returns a copy of f with EnumValue cased as Pascal
// instead of Constant (spec §6, pascal_enum_values), unifying that legacy
// flag with the general ident_formats override mechanism.
func (f IdentFormats) WithPascalEnumValues() IdentFormats {
	ev := f.Get(EnumValue)
	ev.Case = Pascal

	return f.Set(EnumValue, ev)
}
