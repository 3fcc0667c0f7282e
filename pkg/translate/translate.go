// Package translate wires the full translation engine together (spec §2,
// "Data flow: parsed Device -> Index build & property expansion -> per-
// peripheral walk driving Access & Interrupt analysis -> emitters feeding
// the Artifact Assembler"). It is the core entry point the `generate` CLI
// subcommand (pkg/cmd) calls; everything upstream of it (SVD/YAML/JSON
// parsing, file I/O) is an external collaborator out of the core's scope
// (spec §1).
package translate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/svdgen/svdgen/pkg/arch"
	"github.com/svdgen/svdgen/pkg/assemble"
	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/diag"
	"github.com/svdgen/svdgen/pkg/emit/peripheral"
	"github.com/svdgen/svdgen/pkg/emit/register"
	"github.com/svdgen/svdgen/pkg/ident"
	"github.com/svdgen/svdgen/pkg/interrupt"
	"github.com/svdgen/svdgen/pkg/model"
)

// Result is everything a successful translation produces (spec §6,
// Outputs): the generated source bundle, the linker fragment (when the
// target has one), and the build-script body emitted alongside it.
type Result struct {
	Bundle         *assemble.Bundle
	LinkerFragment string
	BuildScript    string
	Warnings       []*diag.Diagnostic
}

// Translate runs the full pipeline over an already-parsed, semantically
// validated Device tree (spec §1, "assumed to hand the core a validated
// semantic tree"): it builds the Index (§4.2), plans interrupts (§4.4),
// selects the architecture backend (§4.7), emits every non-core peripheral
// module and the module of every register declared directly on a
// non-derived peripheral (§4.5, §4.6; registers nested in clusters get no
// module of their own), and assembles the final
// bundle (§4.8). It returns the first fatal diagnostic encountered (spec
// §7, "No partial output is produced on fatal errors"); warnings are
// always returned alongside a successful Result so the caller can flush
// them regardless of outcome.
func Translate(device *model.Device, cfg config.Config) (*Result, error) {
	sink := diag.NewSink(cfg.Strict)
	defer sink.Flush()

	idx, err := model.BuildIndex(device, sink)
	if err != nil {
		return nil, err
	}

	if cfg.Strict && len(sink.Warnings()) > 0 {
		return nil, sink.Warnings()[0]
	}

	backend := arch.For(cfg.Target)

	plan, err := interrupt.Build(device.Peripherals, sink)
	if err != nil {
		return nil, err
	}

	bundle := assemble.NewBundle()

	var deviceEntries []peripheral.DeviceEntry

	for _, p := range device.Peripherals {
		if peripheral.ExcludeCore(p.Name, backend) {
			continue
		}

		emitted, err := peripheral.Emit(p, idx, cfg, sink)
		if err != nil {
			return nil, err
		}

		for _, f := range emitted.Files {
			bundle.Add(emitted.ModName+"/"+f.Name, f.Contents)
		}

		if !emitted.Derived {
			for _, eff := range idx.Registers(model.BlockPath{Peripheral: p.Name}) {
				regMod, err := register.Emit(cfg, eff, idx)
				if err != nil {
					return nil, err
				}

				bundle.Add(emitted.ModName+"/"+regMod.ModName+".rs", regMod.Contents)
			}
		}

		if emitted.HasRegisterBlock {
			deviceEntries = append(deviceEntries, peripheral.DeviceEntry{
				PeripheralName: emitted.PeripheralName,
				ModName:        emitted.ModName,
			})
		}
	}

	if cfg.Strict && len(sink.Warnings()) > 0 {
		return nil, sink.Warnings()[0]
	}

	sort.Slice(deviceEntries, func(i, j int) bool { return deviceEntries[i].PeripheralName < deviceEntries[j].PeripheralName })

	reexportInterrupt := ""
	if cfg.ReexportInterrupt {
		reexportInterrupt = backend.ReexportInterruptLine()
	}

	reexportCore := ""
	if cfg.ReexportCorePeripherals {
		reexportCore = peripheral.ReexportCore(backend)
	}

	bundle.Add("device.rs", renderDevicePreamble(device, backend)+
		renderModuleDeclarations(deviceEntries, cfg)+
		reexportInterrupt+
		reexportCore+
		peripheral.RenderPeripherals(deviceEntries, backend))

	bundle.Add("interrupt.rs", renderInterrupts(plan, backend, cfg, ownersByValue(device.Peripherals)))
	bundle.Add("generic.rs", register.GenericModule())

	result := &Result{Bundle: bundle, Warnings: sink.Warnings()}

	if frag := backend.LinkerFragment(plan, cfg.InterruptLinkSection); frag != "" {
		result.LinkerFragment = frag
		result.BuildScript = backend.BuildScriptBody()
	}

	return result, nil
}

func renderDevicePreamble(d *model.Device, backend arch.Backend) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "//! Peripheral access API for %s, generated for target `%s`.\n", d.Name, backend.Target)
	sb.WriteString("#![no_std]\n#![allow(non_camel_case_types)]\n\n")

	if cpu := d.CPU; cpu != "" {
		fmt.Fprintf(&sb, "/// CPU core: %s\npub const CPU: &str = \"%s\";\n\n", cpu, cpu)
	}

	return sb.String()
}

// interruptOwner records which peripheral (and SVD group_name, if any)
// declared a given interrupt value, used only to drive the
// --feature-group/--feature-peripheral cfg-attribute gating below; it does
// not affect dedup, which remains interrupt.Build's job.
type interruptOwner struct {
	peripheralName string
	groupName      string
}

// ownersByValue mirrors interrupt.Build's own last-write-wins dedup so the
// owner recorded for a value matches the interrupt that actually survived
// into the plan.
func ownersByValue(peripherals []*model.Peripheral) map[int]interruptOwner {
	owners := map[int]interruptOwner{}

	for _, p := range peripherals {
		for _, intr := range p.Interrupts {
			owners[intr.Value] = interruptOwner{peripheralName: p.Name, groupName: p.GroupName}
		}
	}

	return owners
}

// featureAttr renders the #[cfg(feature = "...")] lines gating one
// interrupt variant, grounded on
// original_source/src/generate/interrupt.rs's feature_attribute
// construction: --feature-group gates on the owning peripheral's
// group_name (when present) and --feature-peripheral gates on the owning
// peripheral's own name, independently stackable.
func featureAttr(owner interruptOwner, cfg config.Config) string {
	var sb strings.Builder

	if cfg.FeatureGroup && owner.groupName != "" {
		name := ident.Ident(owner.groupName, config.PeripheralFeature, cfg.IdentFormats, -1)
		fmt.Fprintf(&sb, "    #[cfg(feature = %q)]\n", name)
	}

	if cfg.FeaturePeripheral && owner.peripheralName != "" {
		name := ident.Ident(owner.peripheralName, config.PeripheralFeature, cfg.IdentFormats, -1)
		fmt.Fprintf(&sb, "    #[cfg(feature = %q)]\n", name)
	}

	return sb.String()
}

// renderModuleDeclarations wires every emitted file into the crate module
// tree rooted at device.rs: the generic-support and interrupt modules,
// plus one `pub mod`/`pub use` pair per non-core peripheral so
// Peripherals (spec §4.6) can name each field's type unqualified. When
// cfg.GenericMod is set, the generic module is declared with an explicit
// `#[path = "generic.rs"]` attribute, and when cfg.MakeMod is set, each
// peripheral module with `#[path = "<mod>/mod.rs"]`, instead of the bare
// `pub mod name;` svd2rust normally relies on Cargo's default module-file
// resolution for (spec §6, make_mod/generic_mod).
func renderModuleDeclarations(entries []peripheral.DeviceEntry, cfg config.Config) string {
	var sb strings.Builder

	if cfg.GenericMod {
		sb.WriteString("#[path = \"generic.rs\"]\npub mod generic;\n")
	} else {
		sb.WriteString("pub mod generic;\n")
	}

	sb.WriteString("pub mod interrupt;\n")
	sb.WriteString("pub use interrupt::Interrupt;\n\n")

	for _, e := range entries {
		if cfg.MakeMod {
			fmt.Fprintf(&sb, "#[path = \"%s/mod.rs\"]\npub mod %s;\n", e.ModName, e.ModName)
		} else {
			fmt.Fprintf(&sb, "pub mod %s;\n", e.ModName)
		}

		fmt.Fprintf(&sb, "pub use %s::%s;\n", e.ModName, e.PeripheralName)
	}

	sb.WriteString("\n")

	return sb.String()
}

// renderInterrupts renders the Interrupt discriminated enumeration, the
// vector-table representation, and the fallible try_from conversion (spec
// §4.4). keepList (SPEC_FULL.md supplemented feature) additionally emits
// the SVD-declaration-ordered secondary listing alongside the primary,
// value-ordered vector table.
func renderInterrupts(plan *interrupt.Plan, backend arch.Backend, cfg config.Config, owners map[int]interruptOwner) string {
	var sb strings.Builder

	sb.WriteString("//! Interrupt vector table.\n\n")
	sb.WriteString("#[derive(Clone, Copy, Debug, PartialEq, Eq)]\npub enum Interrupt {\n")

	for _, v := range plan.Vectors {
		if v.Interrupt == nil {
			continue
		}

		name := ident.Ident(v.Interrupt.Name, config.Interrupt, cfg.IdentFormats, -1)
		sb.WriteString(featureAttr(owners[v.Value], cfg))
		fmt.Fprintf(&sb, "    /// %s\n    %s = %d,\n", describeIntr(v.Interrupt), name, v.Interrupt.Value)
	}

	sb.WriteString("}\n\n")

	slotTy := "u32"

	switch backend.SlotWidth {
	case arch.Slot16:
		slotTy = "u16"
	case arch.SlotPtr:
		slotTy = "usize"
	}

	fmt.Fprintf(&sb, "/// One slot of the vector table: a handler pointer or a reserved zero word.\n")
	fmt.Fprintf(&sb, "#[repr(C)]\npub union Vector {\n    pub handler: unsafe extern \"%s\" fn(),\n    reserved: %s,\n}\n\n",
		backend.Convention, slotTy)

	fmt.Fprintf(&sb, "#[repr(C)]\npub struct VectorTable {\n    pub vectors: [Vector; %d],\n}\n\n", len(plan.Vectors))

	sb.WriteString("impl core::convert::TryFrom<")
	sb.WriteString(slotTy)
	sb.WriteString("> for Interrupt {\n    type Error = ")
	sb.WriteString(slotTy)
	sb.WriteString(";\n\n    fn try_from(value: ")
	sb.WriteString(slotTy)
	sb.WriteString(") -> Result<Self, Self::Error> {\n        match value {\n")

	for _, v := range plan.Vectors {
		if v.Interrupt == nil {
			continue
		}

		name := ident.Ident(v.Interrupt.Name, config.Interrupt, cfg.IdentFormats, -1)
		sb.WriteString(strings.ReplaceAll(featureAttr(owners[v.Value], cfg), "    #[cfg", "            #[cfg"))
		fmt.Fprintf(&sb, "            %d => Ok(Interrupt::%s),\n", v.Interrupt.Value, name)
	}

	sb.WriteString("            _ => Err(value),\n        }\n    }\n}\n")

	if cfg.KeepList && len(plan.Declared) > 0 {
		sb.WriteString("\n/// Interrupts in their original SVD declaration order (--keep-list).\n")
		sb.WriteString("pub const DECLARED_ORDER: &[Interrupt] = &[\n")

		for _, intr := range plan.Declared {
			name := ident.Ident(intr.Name, config.Interrupt, cfg.IdentFormats, -1)
			fmt.Fprintf(&sb, "    Interrupt::%s,\n", name)
		}

		sb.WriteString("];\n")
	}

	return sb.String()
}

func describeIntr(i *model.Interrupt) string {
	if i.Description == "" {
		return i.Name
	}

	return i.Description
}
