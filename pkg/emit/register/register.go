// Package register implements the Register-Module Emitter (spec §4.5): for
// each non-derived register it produces a register-spec type, Reader,
// Writer, field accessors, enumerated-value variants, reset/modify
// integration, and the optional Debug/atomic/bit-band extensions.
package register

import (
	"fmt"
	"strings"

	"github.com/svdgen/svdgen/pkg/access"
	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/ident"
	"github.com/svdgen/svdgen/pkg/model"
)

// Emitted is one register's generated module plus the four quantities
// computed in the same pass (spec §4.5, "State of emission per register").
type Emitted struct {
	Path             string
	Contents         string
	ReaderItems      int
	WriterItems      int
	OneToModifyMask  uint64
	ZeroToModifyMask uint64
	SpecName         string
	ModName          string
}

// widthType returns the width-typed unsigned integer a register/field of
// the given bit width is stored in, rounded up to the next power-of-two
// byte-aligned width (spec §3, "effective size is power-of-two
// byte-aligned upward to >= 8").
func widthType(bits uint) string {
	switch {
	case bits <= 8:
		return "u8"
	case bits <= 16:
		return "u16"
	case bits <= 32:
		return "u32"
	default:
		return "u64"
	}
}

// modifyMasks computes ONE_TO_MODIFY and ZERO_TO_MODIFY bitmaps: the
// bitmap for a field is its mask shifted to offset when its kind is
// OneToSet/Clear/Toggle or ZeroToSet/Clear/Toggle respectively (spec
// §4.5). Invariant: the two masks never overlap (spec §8).
func modifyMasks(fields []*model.Field) (one, zero uint64) {
	for _, f := range fields {
		mask := (uint64(1)<<f.BitWidth - 1) << f.BitOffset

		switch f.ModifiedWrite {
		case model.OneToSet, model.OneToClear, model.OneToToggle:
			one |= mask
		case model.ZeroToSet, model.ZeroToClear, model.ZeroToToggle:
			zero |= mask
		}
	}

	return one, zero
}

// Emit renders one register's module (spec §4.5). idx is used to resolve
// the derivedFrom EnumeratedValues chain for any field with a derived
// enum. scope keeps the register's spec and module names distinct after
// sanitization; field names are not checked for collisions.
// Cross-register collisions are resolved by path qualification (spec §5).
func Emit(cfg config.Config, eff *model.EffectiveRegister, idx *model.Index) (*Emitted, error) {
	formats := cfg.IdentFormats
	if cfg.PascalEnumValues {
		formats = formats.WithPascalEnumValues()
	}

	regAccess := access.EffectiveAccess(eff.Access, eff.Reg.Fields)
	ux := widthType(eff.SizeBits)
	scope := ident.NewScope()

	specName := scope.Claim(ident.Ident(eff.Reg.Name, config.RegisterSpec, formats, -1))
	modName := scope.Claim(ident.Ident(eff.Reg.Name, config.RegisterMod, formats, -1))

	one, zero := modifyMasks(eff.Reg.Fields)

	var b strings.Builder

	fmt.Fprintf(&b, "//! `%s` register: %s\n", eff.Path, describe(eff.Reg.Description, eff.Reg.Name))
	fmt.Fprintf(&b, "//! Offset 0x%02x, reset value 0x%x.\n\n", eff.Reg.AddressOffset, resetOr(eff))
	fmt.Fprintf(&b, "pub mod %s {\n", modName)
	fmt.Fprintf(&b, "    use super::generic;\n\n")

	if regAccess == model.ReadOnly || regAccess == model.ReadWrite {
		fmt.Fprintf(&b, "    /// Register `%s` reader\n", eff.Reg.Name)
		fmt.Fprintf(&b, "    pub type R = generic::R<%s>;\n\n", specName)
	}

	if regAccess == model.WriteOnly || regAccess == model.ReadWrite {
		fmt.Fprintf(&b, "    /// Register `%s` writer\n", eff.Reg.Name)
		fmt.Fprintf(&b, "    pub type W = generic::W<%s>;\n\n", specName)
	}

	fmt.Fprintf(&b, "    /// `%s` register spec\n", eff.Reg.Name)
	fmt.Fprintf(&b, "    pub struct %s;\n\n", specName)
	fmt.Fprintf(&b, "    impl generic::RegisterSpec for %s {\n        type Ux = %s;\n    }\n\n", specName, ux)

	if regAccess == model.ReadOnly || regAccess == model.ReadWrite {
		fmt.Fprintf(&b, "    impl generic::Readable for %s {}\n\n", specName)
	}

	if regAccess == model.WriteOnly || regAccess == model.ReadWrite {
		fmt.Fprintf(&b, "    impl generic::Writable for %s {\n", specName)
		fmt.Fprintf(&b, "        const ONE_TO_MODIFY_FIELDS_BITMAP: %s = 0x%x;\n", ux, one)
		fmt.Fprintf(&b, "        const ZERO_TO_MODIFY_FIELDS_BITMAP: %s = 0x%x;\n", ux, zero)
		fmt.Fprintf(&b, "    }\n\n")
	}

	if eff.HasReset {
		fmt.Fprintf(&b, "    impl generic::Resettable for %s {\n        const RESET_VALUE: %s = 0x%x;\n    }\n\n",
			specName, ux, eff.ResetValue)
	}

	readerItems, writerItems := 0, 0

	if regAccess == model.ReadOnly || regAccess == model.ReadWrite {
		b.WriteString("    impl R {\n")

		for _, f := range eff.Reg.Fields {
			fa := access.FieldEffectiveAccess(regAccess, f.Access)
			if fa != model.ReadOnly && fa != model.ReadWrite {
				continue
			}

			emitFieldReader(&b, f, formats, idx, eff, specName)
			readerItems++
		}

		b.WriteString("    }\n\n")
	}

	if regAccess == model.WriteOnly || regAccess == model.ReadWrite {
		b.WriteString("    impl W {\n")

		for _, f := range eff.Reg.Fields {
			fa := access.FieldEffectiveAccess(regAccess, f.Access)
			if fa != model.WriteOnly && fa != model.ReadWrite {
				continue
			}

			emitFieldWriter(&b, f, formats, idx, eff, specName)
			writerItems++
		}

		b.WriteString("    }\n\n")
	}

	for _, f := range eff.Reg.Fields {
		emitFieldEnums(&b, f, formats, idx, eff)
	}

	if cfg.ImplDebug {
		emitDebug(&b, eff, regAccess, specName, cfg.ImplDebugFeature)
	}

	if cfg.Atomics && (eff.SizeBits == 8 || eff.SizeBits == 16 || eff.SizeBits == 32 || eff.SizeBits == 64) &&
		(regAccess == model.ReadWrite) {
		emitAtomics(&b, specName, ux, cfg.AtomicsFeature)
	}

	if cfg.Atomics && cfg.Target == config.CortexM && eff.SizeBits == 32 && regAccess != model.ReadOnly &&
		isBitBanded(eff.Peripheral.BaseAddress) {
		emitBitBand(&b, eff, specName, cfg.AtomicsFeature)
	}

	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "/// `%s` register accessor: an alias for `generic::Reg<%s::%s>`\n", eff.Reg.Name, modName, specName)
	fmt.Fprintf(&b, "pub type %s = generic::Reg<%s::%s>;\n", eff.Reg.Name, modName, specName)

	return &Emitted{
		Path:             strings.ToLower(eff.Path.String()) + ".rs",
		Contents:         b.String(),
		ReaderItems:      readerItems,
		WriterItems:      writerItems,
		OneToModifyMask:  one,
		ZeroToModifyMask: zero,
		SpecName:         specName,
		ModName:          modName,
	}, nil
}

func resetOr(eff *model.EffectiveRegister) uint64 {
	if eff.HasReset {
		return eff.ResetValue
	}

	return 0
}

func describe(desc, name string) string {
	if desc == "" {
		return name
	}

	return desc
}
