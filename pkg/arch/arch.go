// Package arch implements the Architecture Backend (spec §4.7): the
// per-target dialect selection (vector table shape, calling convention,
// slot width, core-peripheral re-export set) and linker-fragment content.
package arch

import (
	"fmt"
	"strings"

	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/interrupt"
)

// SlotWidth is the integer width (in bits) of one vector-table slot.
type SlotWidth int

const (
	Slot16 SlotWidth = 16
	Slot32 SlotWidth = 32
	SlotPtr SlotWidth = 0 // platform pointer width (RISC-V usize slots)
)

// CallingConvention names the ABI tag the vector table's handler function
// pointers are declared with.
type CallingConvention string

const (
	ConventionC             CallingConvention = "C"
	ConventionMSP430Interrupt CallingConvention = "msp430-interrupt"
)

// Backend captures everything the Architecture Backend contributes for one
// target (spec §4.7).
type Backend struct {
	Target            config.Target
	Convention        CallingConvention
	SlotWidth         SlotWidth
	// CorePeripherals lists peripheral names assumed supplied by the
	// architecture support library and therefore excluded from the
	// device's own Peripherals singleton; they are re-exported from that
	// library when ReexportCorePeripherals is requested.
	CorePeripherals []string
	// HasCLINT / HasPLIC gate RISC-V-only codegen hooks (spec §4.7).
	HasCLINT, HasPLIC bool
}

// For returns the Backend for a given target selector.
func For(target config.Target) Backend {
	switch target {
	case config.Msp430:
		return Backend{Target: target, Convention: ConventionMSP430Interrupt, SlotWidth: Slot16}
	case config.RISCV:
		return Backend{
			Target: target, Convention: ConventionC, SlotWidth: SlotPtr,
			CorePeripherals: []string{"CLINT", "PLIC"}, HasCLINT: true, HasPLIC: true,
		}
	case config.XtensaLX:
		return Backend{Target: target, Convention: ConventionC, SlotWidth: Slot32}
	case config.Mips:
		return Backend{Target: target, Convention: ConventionC, SlotWidth: Slot32}
	case config.None:
		return Backend{Target: target, Convention: ConventionC, SlotWidth: Slot32}
	default: // CortexM
		return Backend{
			Target: config.CortexM, Convention: ConventionC, SlotWidth: Slot32,
			CorePeripherals: []string{"NVIC", "SCB", "SYST"},
		}
	}
}

// LinkerFragment renders the `device.x` PROVIDE lines for every named
// interrupt in plan, plus (for RISC-V) the `_start_NAME_trap` aliases
// (spec §4.7).
func (b Backend) LinkerFragment(plan *interrupt.Plan, linkSection string) string {
	var sb strings.Builder

	section := linkSection
	if section == "" {
		section = ".vector_table.interrupts"
	}

	fmt.Fprintf(&sb, "/* Generated by svdgen for target %s. */\n", b.Target)
	fmt.Fprintf(&sb, "SECTIONS\n{\n  .vector_table.interrupts (NOLOAD) : ALIGN(4)\n  {\n    KEEP(*(%s));\n  } > FLASH\n}\n\n", section)

	for _, v := range plan.Vectors {
		if v.Interrupt == nil {
			continue
		}

		fmt.Fprintf(&sb, "PROVIDE(%s = DefaultHandler);\n", v.Interrupt.Name)

		if b.Target == config.RISCV {
			fmt.Fprintf(&sb, "PROVIDE(_start_%s_trap = DefaultHandler);\n", v.Interrupt.Name)
		}
	}

	return sb.String()
}

// ReexportInterruptLine renders the `pub use` line that re-exports the
// architecture support crate's own Interrupt type alongside the device's
// generated one (spec §6, reexport_interrupt), for targets whose core
// crate defines one; empty for targets with none.
func (b Backend) ReexportInterruptLine() string {
	switch {
	case b.HasPLIC, b.HasCLINT:
		return "pub use riscv::interrupt::Interrupt as CoreInterrupt;\n"
	case b.Target == config.CortexM:
		return "pub use cortex_m::interrupt::InterruptNumber as CoreInterruptNumber;\n"
	default:
		return ""
	}
}

// BuildScriptBody renders the build-script body that copies the linker
// fragment to where the linker will find it (spec §4.8), when one is
// requested alongside an emitted linker fragment.
func (b Backend) BuildScriptBody() string {
	return `fn main() {
    let out = std::env::var("OUT_DIR").unwrap();
    std::fs::write(std::path::Path::new(&out).join("device.x"), DEVICE_X).unwrap();
    println!("cargo:rustc-link-search={}", out);
    println!("cargo:rerun-if-changed=build.rs");
}
`
}
