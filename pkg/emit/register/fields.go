package register

import (
	"fmt"
	"strings"

	"github.com/svdgen/svdgen/pkg/access"
	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/ident"
	"github.com/svdgen/svdgen/pkg/model"
)

// fieldNames resolves the accessor, reader-type, and writer-type
// identifiers for one field, all scoped to the enclosing register.
type fieldNames struct {
	accessor string
	readerTy string
	writerTy string
	enumTy   string
	enumWTy  string
}

func namesFor(f *model.Field, formats config.IdentFormats) fieldNames {
	return fieldNames{
		accessor: ident.Ident(f.Name, config.FieldAccessor, formats, -1),
		readerTy: ident.Ident(f.Name, config.FieldReader, formats, -1),
		writerTy: ident.Ident(f.Name, config.FieldWriter, formats, -1),
		enumTy:   ident.Ident(f.Name, config.EnumName, formats, -1),
		enumWTy:  ident.Ident(f.Name, config.EnumWriteName, formats, -1),
	}
}

// readEnum picks the enum set a field's reader should decode against: the
// usage=read (or shared read-write) set, resolved through derivedFrom.
func readEnum(f *model.Field) *model.EnumeratedValues {
	for _, e := range f.EnumeratedValue {
		if e.Usage == model.UsageRead || e.Usage == model.UsageReadWrite {
			return model.ResolvedEvs(e)
		}
	}

	return nil
}

// writeEnum picks the enum set a field's writer should offer named setters
// for: the usage=write (or shared read-write) set.
func writeEnum(f *model.Field) *model.EnumeratedValues {
	for _, e := range f.EnumeratedValue {
		if e.Usage == model.UsageWrite || e.Usage == model.UsageReadWrite {
			return model.ResolvedEvs(e)
		}
	}

	return nil
}

func emitFieldReader(b *strings.Builder, f *model.Field, formats config.IdentFormats, idx *model.Index,
	eff *model.EffectiveRegister, specName string) {
	names := namesFor(f, formats)
	mask := uint64(1)<<f.BitWidth - 1

	fmt.Fprintf(b, "        /// Bits %d..%d - %s\n", f.BitOffset, f.BitOffset+f.BitWidth, describe(f.Description, f.Name))
	fmt.Fprintf(b, "        #[inline(always)]\n")

	evs := readEnum(f)
	rawTy := widthType(f.BitWidth)

	switch {
	case evs != nil && len(evs.Values) > 0:
		fmt.Fprintf(b, "        pub fn %s(&self) -> generic::FieldReader<%s, %s> {\n", names.accessor, rawTy, names.enumTy)
		fmt.Fprintf(b, "            generic::FieldReader::new(((self.bits() >> %d) & 0x%x) as %s)\n", f.BitOffset, mask, rawTy)
		b.WriteString("        }\n")
	case f.BitWidth == 1:
		fmt.Fprintf(b, "        pub fn %s(&self) -> generic::FieldReader<bool, bool> {\n", names.accessor)
		fmt.Fprintf(b, "            generic::FieldReader::new(((self.bits() >> %d) & 0x1) != 0)\n", f.BitOffset)
		b.WriteString("        }\n")
	default:
		fmt.Fprintf(b, "        pub fn %s(&self) -> generic::FieldReader<%s> {\n", names.accessor, rawTy)
		fmt.Fprintf(b, "            generic::FieldReader::new(((self.bits() >> %d) & 0x%x) as %s)\n", f.BitOffset, mask, rawTy)
		b.WriteString("        }\n")
	}
}

func emitFieldWriter(b *strings.Builder, f *model.Field, formats config.IdentFormats, idx *model.Index,
	eff *model.EffectiveRegister, specName string) {
	names := namesFor(f, formats)
	rawTy := widthType(f.BitWidth)

	wc := f.WriteConstraint
	evs := writeEnum(f)
	full := access.EnumCoversFullWidth(evs, f.BitWidth)
	safety := access.FieldSafety(f.BitWidth, wc, full)

	fmt.Fprintf(b, "        /// Bits %d..%d - %s\n", f.BitOffset, f.BitOffset+f.BitWidth, describe(f.Description, f.Name))
	fmt.Fprintf(b, "        #[inline(always)]\n")

	if f.BitWidth == 1 {
		fmt.Fprintf(b, "        pub fn %s(&mut self) -> generic::BitWriter<%s> {\n", names.accessor, specName)
		fmt.Fprintf(b, "            generic::BitWriter::new(self, %d)\n", f.BitOffset)
		b.WriteString("        }\n")

		emitSingleBitSetters(b, f, names)

		return
	}

	switch safety {
	case access.Safe:
		fmt.Fprintf(b, "        pub fn %s(&mut self) -> generic::FieldWriter<'_, %s, %d, %s, generic::Safe> {\n",
			names.accessor, specName, f.BitWidth, rawTy)
	case access.Range:
		min, max := access.RangeBounds(wc)
		fmt.Fprintf(b, "        pub fn %s(&mut self) -> generic::FieldWriter<'_, %s, %d, %s, generic::Range<%d, %d>> {\n",
			names.accessor, specName, f.BitWidth, rawTy, min, max)
	default:
		fmt.Fprintf(b, "        pub fn %s(&mut self) -> generic::FieldWriter<'_, %s, %d, %s, generic::Unsafe> {\n",
			names.accessor, specName, f.BitWidth, rawTy)
	}

	fmt.Fprintf(b, "            generic::FieldWriter::new(self, %d)\n", f.BitOffset)
	b.WriteString("        }\n")

	if evs != nil {
		fmt.Fprintf(b, "        /// Writes a named variant to the field.\n")
		fmt.Fprintf(b, "        #[inline(always)]\n")
		fmt.Fprintf(b, "        pub fn %s_variant(&mut self, variant: %s) -> &mut Self {\n", names.accessor, names.enumWTy)
		fmt.Fprintf(b, "            unsafe { self.%s().bits(variant as %s) }\n", names.accessor, rawTy)
		b.WriteString("        }\n")

		for _, v := range model.ResolvedEvs(evs).Values {
			if v.IsDefault {
				continue
			}

			setterName := ident.Ident(v.Name, config.EnumValueAccessor, formats, -1)
			fmt.Fprintf(b, "        /// Sets the field to `%s`.\n", v.Name)
			fmt.Fprintf(b, "        #[inline(always)]\n")
			fmt.Fprintf(b, "        pub fn %s(&mut self) -> &mut Self {\n", setterName)
			fmt.Fprintf(b, "            self.%s_variant(%s::%s)\n", names.accessor, names.enumWTy, ident.Ident(v.Name, config.EnumValue, formats, -1))
			b.WriteString("        }\n")
		}
	}
}

// emitSingleBitSetters emits the modified-write-aware setters for a
// single-bit field (set_bit / clear_bit / pulse-style operations matching
// the field's modified_write kind, spec §4.5).
func emitSingleBitSetters(b *strings.Builder, f *model.Field, names fieldNames) {
	switch f.ModifiedWrite {
	case model.OneToSet, model.OneToClear, model.OneToToggle, model.ZeroToSet, model.ZeroToClear, model.ZeroToToggle:
		fmt.Fprintf(b, "        /// Writes 1 to the field, applying its %s semantics.\n", modifiedWriteName(f.ModifiedWrite))
		fmt.Fprintf(b, "        #[inline(always)]\n")
		fmt.Fprintf(b, "        pub fn %s_pulse(&mut self) -> &mut Self {\n", names.accessor)
		fmt.Fprintf(b, "            self.%s().bit(true)\n", names.accessor)
		b.WriteString("        }\n")
	default:
		fmt.Fprintf(b, "        /// Sets the bit.\n#[inline(always)]\n        pub fn set_bit_%s(&mut self) -> &mut Self {\n            self.%s().bit(true)\n        }\n",
			names.accessor, names.accessor)
		fmt.Fprintf(b, "        /// Clears the bit.\n#[inline(always)]\n        pub fn clear_bit_%s(&mut self) -> &mut Self {\n            self.%s().bit(false)\n        }\n",
			names.accessor, names.accessor)
	}
}

func modifiedWriteName(m model.ModifiedWrite) string {
	switch m {
	case model.OneToSet:
		return "one-to-set"
	case model.OneToClear:
		return "one-to-clear"
	case model.OneToToggle:
		return "one-to-toggle"
	case model.ZeroToSet:
		return "zero-to-set"
	case model.ZeroToClear:
		return "zero-to-clear"
	case model.ZeroToToggle:
		return "zero-to-toggle"
	default:
		return "modify"
	}
}

// emitFieldEnums emits the closed discriminated enum types for a field's
// read/write enumerated-value sets (spec §4.5, "Enumerated-value
// emission"). A derived set emits only a type alias to the base enum's
// path, never a second copy of the variants (spec §8).
func emitFieldEnums(b *strings.Builder, f *model.Field, formats config.IdentFormats, idx *model.Index, eff *model.EffectiveRegister) {
	names := namesFor(f, formats)

	for _, raw := range f.EnumeratedValue {
		if raw.DerivedFrom != "" {
			fmt.Fprintf(b, "    /// `%s` aliases its base enumeration.\n", enumTypeName(raw, names))
			fmt.Fprintf(b, "    pub type %s = %s;\n\n", enumTypeName(raw, names), raw.DerivedFrom)
			continue
		}

		resolved := model.ResolvedEvs(raw)
		full := access.EnumCoversFullWidth(resolved, f.BitWidth)
		typeName := enumTypeName(raw, names)

		fmt.Fprintf(b, "    /// Possible values of the field `%s`\n", f.Name)
		fmt.Fprintf(b, "    #[derive(Clone, Copy, Debug, PartialEq, Eq)]\n")
		fmt.Fprintf(b, "    pub enum %s {\n", typeName)

		hasDefault := false

		for _, v := range resolved.Values {
			if v.IsDefault {
				hasDefault = true
				fmt.Fprintf(b, "        /// %s (catch-all default)\n        %s,\n",
					describe(v.Description, v.Name), ident.Ident(v.Name, config.EnumValue, formats, -1))

				continue
			}

			fmt.Fprintf(b, "        /// %s\n        %s = %d,\n",
				describe(v.Description, v.Name), ident.Ident(v.Name, config.EnumValue, formats, -1), v.Value)
		}

		if !full && !hasDefault {
			fmt.Fprintf(b, "        /// Raw value does not match any defined variant\n        Reserved(%s),\n", widthType(f.BitWidth))
		}

		b.WriteString("    }\n\n")

		emitEnumConversions(b, typeName, resolved, f.BitWidth, full || hasDefault, formats)
	}
}

func enumTypeName(evs *model.EnumeratedValues, names fieldNames) string {
	if evs.Usage == model.UsageWrite {
		return names.enumWTy
	}

	return names.enumTy
}

// emitEnumConversions emits the From<enum> conversion into RAW that the
// writer's *_variant() setter relies on, and the reader's variant()
// accessor: infallible, plus one is_*() accessor per variant, when the
// enum is exhaustive; returning Option, with no is_*() accessors,
// otherwise. No conversion from RAW into the enum is emitted. Every reference to a variant
// uses the same sanitized identifier the variant was declared with
// (config.EnumValue), never the raw SVD name, so renaming/recasing
// (e.g. pascal_enum_values) can never desync a match arm from its
// declaration.
func emitEnumConversions(b *strings.Builder, typeName string, evs *model.EnumeratedValues, width uint, exhaustive bool,
	formats config.IdentFormats) {
	rawTy := widthType(width)

	fmt.Fprintf(b, "    impl From<%s> for %s {\n        #[inline(always)]\n        fn from(variant: %s) -> Self {\n            variant as %s\n        }\n    }\n\n",
		typeName, rawTy, typeName, rawTy)

	if exhaustive {
		fmt.Fprintf(b, "    impl generic::FieldReader<%s, %s> {\n", rawTy, typeName)
		b.WriteString("        /// Returns the decoded enumerated variant.\n        #[inline(always)]\n        pub fn variant(&self) -> ")
		fmt.Fprintf(b, "%s {\n", typeName)
		b.WriteString("            match self.bits() {\n")

		for _, v := range evs.Values {
			if v.IsDefault {
				continue
			}

			fmt.Fprintf(b, "                %d => %s::%s,\n", v.Value, typeName, ident.Ident(v.Name, config.EnumValue, formats, -1))
		}

		fallback := "unreachable!()"
		for _, v := range evs.Values {
			if v.IsDefault {
				fallback = typeName + "::" + ident.Ident(v.Name, config.EnumValue, formats, -1)
			}
		}

		fmt.Fprintf(b, "                _ => %s,\n            }\n        }\n", fallback)

		for _, v := range evs.Values {
			if v.IsDefault {
				continue
			}

			variantName := ident.Ident(v.Name, config.EnumValue, formats, -1)
			accessorName := ident.Ident(v.Name, config.EnumValueAccessor, formats, -1)

			fmt.Fprintf(b, "        /// Returns `true` if the field equals `%s`\n", v.Name)
			fmt.Fprintf(b, "        #[inline(always)]\n        pub fn is_%s(&self) -> bool {\n            self.variant() == %s::%s\n        }\n",
				accessorName, typeName, variantName)
		}

		b.WriteString("    }\n\n")

		return
	}

	fmt.Fprintf(b, "    impl generic::FieldReader<%s, %s> {\n", rawTy, typeName)
	fmt.Fprintf(b, "        /// Returns the decoded enumerated variant, or `None` if the raw value\n        /// does not match any defined variant.\n")
	fmt.Fprintf(b, "        #[inline(always)]\n        pub fn variant(&self) -> Option<%s> {\n            match self.bits() {\n", typeName)

	for _, v := range evs.Values {
		if v.IsDefault {
			continue
		}

		fmt.Fprintf(b, "                %d => Some(%s::%s),\n", v.Value, typeName, ident.Ident(v.Name, config.EnumValue, formats, -1))
	}

	b.WriteString("                _ => None,\n            }\n        }\n    }\n\n")
}
