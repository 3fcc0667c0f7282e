package peripheral

import (
	"fmt"
	"strings"

	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/diag"
	"github.com/svdgen/svdgen/pkg/ident"
	"github.com/svdgen/svdgen/pkg/model"
)

// Emitted is one peripheral's contribution to the bundle: its own module
// (RegisterBlock plus any nested cluster modules), and the metadata the
// Device Emitter needs to build Peripherals and re-export the peripheral
// under its base-address constant.
type Emitted struct {
	// PeripheralName is the sanitized PascalCase/CONSTANT peripheral type
	// name (e.g. `GPIOA`).
	PeripheralName string
	// ModName is the lowercase module named after this peripheral itself
	// (e.g. `gpioa`), under which its own files are bundled; a derived
	// peripheral's RegisterBlock lives in BaseName instead.
	ModName string
	// BaseName is ModName of the peripheral this one borrows its block
	// from; equal to ModName when not derived.
	BaseName string
	// Derived is true when this peripheral only emits a struct/base
	// address referencing BaseName's block, no RegisterBlock of its own
	// (spec §4.6, "Derived peripherals become type aliases").
	Derived bool
	// HasRegisterBlock is false for a peripheral (derived or not) with no
	// registers at all — no struct/RegisterBlock is generated for it, and
	// the Device Emitter excludes it from Peripherals (spec 9, mirroring
	// original_source/src/generate/peripheral.rs: "No struct RegisterBlock
	// can be generated").
	HasRegisterBlock bool
	Files            []Module
}

// Emit renders one (non-core, spec §4.7) peripheral: the struct +
// `ptr()`/`Deref` boilerplate that is always emitted, and — only for a
// non-derived peripheral with at least one register — the RegisterBlock
// module plus one file per nested cluster (spec §4.6). formats is the
// resolved identifier format table; idx is the frozen Index this
// peripheral was normalized into.
func Emit(p *model.Peripheral, idx *model.Index, cfg config.Config, sink *diag.Sink) (*Emitted, error) {
	formats := cfg.IdentFormats
	if cfg.PascalEnumValues {
		formats = formats.WithPascalEnumValues()
	}

	peripheralName := ident.Ident(p.Name, config.Peripheral, formats, -1)
	modName := strings.ToLower(peripheralName)

	base := model.ResolvedPeripheral(p)
	baseModName := modName

	if base != p {
		baseModName = strings.ToLower(ident.Ident(base.Name, config.Peripheral, formats, -1))
	}

	hasRegisters := len(base.Registers) > 0 || len(base.Clusters) > 0

	emitted := &Emitted{
		PeripheralName:   peripheralName,
		ModName:          modName,
		BaseName:         baseModName,
		Derived:          base != p,
		HasRegisterBlock: hasRegisters,
	}

	var sb strings.Builder

	desc := describe(p.Description, p.Name)
	fmt.Fprintf(&sb, "/// %s\n", desc)

	if p.GroupName != "" && !cfg.IgnoreGroups {
		fmt.Fprintf(&sb, "///\n/// Part of the `%s` peripheral group.\n", p.GroupName)
	}

	fmt.Fprintf(&sb, "pub struct %s { _marker: core::marker::PhantomData<*const ()> }\n\n", peripheralName)
	sb.WriteString("unsafe impl Send for " + peripheralName + " {}\n\n")
	fmt.Fprintf(&sb, "impl %s {\n", peripheralName)
	fmt.Fprintf(&sb, "    /// Returns a pointer to the register block.\n")
	fmt.Fprintf(&sb, "    #[inline(always)]\n    pub fn ptr() -> *const %s::RegisterBlock {\n        0x%x as *const _\n    }\n",
		baseModName, p.BaseAddress)
	sb.WriteString("}\n\n")
	fmt.Fprintf(&sb, "impl core::ops::Deref for %s {\n    type Target = %s::RegisterBlock;\n\n", peripheralName, baseModName)
	fmt.Fprintf(&sb, "    #[inline(always)]\n    fn deref(&self) -> &%s::RegisterBlock {\n        unsafe { &*%s::ptr() }\n    }\n}\n",
		baseModName, peripheralName)

	emitted.Files = append(emitted.Files, Module{Name: modName + "_periph.rs", Contents: sb.String()})

	if emitted.Derived || !hasRegisters {
		return emitted, nil
	}

	blockPath := model.BlockPath{Peripheral: p.Name}

	block, nested, err := LayoutBlock(base.Registers, base.Clusters, blockPath, idx, formats, cfg, sink)
	if err != nil {
		return nil, err
	}

	emitted.Files = append(emitted.Files, Module{
		Name:     "register_block.rs",
		Contents: renderRegisterBlock(block, cfg.ImplDefmt),
	})
	emitted.Files = append(emitted.Files, nested...)

	return emitted, nil
}

// renderRegisterBlock renders the RegisterBlock struct. defmtPath, when
// non-empty (Config.ImplDefmt), additionally derives that crate's Format
// trait so the block can be logged through a structured-logging frontend
// instead of (or alongside) core::fmt::Debug.
func renderRegisterBlock(block Block, defmtPath string) string {
	var sb strings.Builder

	sb.WriteString("/// Register block\n")

	if defmtPath != "" {
		fmt.Fprintf(&sb, "#[derive(%s::Format)]\n", defmtPath)
	}

	sb.WriteString("#[repr(C)]\npub struct RegisterBlock {\n")

	for _, f := range block.Fields {
		sb.WriteString(f)
		sb.WriteString("\n")
	}

	sb.WriteString("}\n")

	return sb.String()
}
