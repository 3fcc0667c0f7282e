package peripheral

import (
	"fmt"
	"strings"

	"github.com/svdgen/svdgen/pkg/arch"
	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/ident"
)

// coreCrateFor names the architecture support crate whose interrupt::free
// critical section guards `take()`, or "" when the target has none (spec
// §4.6, "at-most-once acquisition", grounded on
// original_source/src/generate/device.rs's `take` match).
func coreCrateFor(t config.Target) string {
	switch t {
	case config.CortexM:
		return "cortex_m"
	case config.Msp430:
		return "msp430"
	case config.RISCV:
		return "riscv"
	default:
		return ""
	}
}

// DeviceEntry is one peripheral's contribution to the device's Peripherals
// singleton: its field declaration and the expression that constructs it
// in `steal()`.
type DeviceEntry struct {
	PeripheralName string
	ModName        string
}

// RenderPeripherals emits the device-wide `Peripherals` aggregate (spec
// §4.6, "Device"): a zero-sized-per-field struct of every non-core
// peripheral that has a RegisterBlock, plus the `DEVICE_PERIPHERALS`
// process-wide guard and the `take()`/`steal()` pair (spec §9, "Global
// mutable state in generated code"). entries are peripherals already
// filtered to exclude architecture-owned core peripherals (spec §4.7).
func RenderPeripherals(entries []DeviceEntry, backend arch.Backend) string {
	var sb strings.Builder

	sb.WriteString("// `no_mangle` prevents linking two minor versions of this device crate, which\n")
	sb.WriteString("// would otherwise let a binary `take` the device peripherals more than once.\n")
	sb.WriteString("#[no_mangle]\nstatic mut DEVICE_PERIPHERALS: bool = false;\n\n")

	sb.WriteString("/// All the peripherals.\n#[allow(non_snake_case)]\npub struct Peripherals {\n")

	for _, e := range entries {
		fmt.Fprintf(&sb, "    /// %s\n    pub %s: %s,\n", e.PeripheralName, e.PeripheralName, e.PeripheralName)
	}

	sb.WriteString("}\n\n")

	sb.WriteString("impl Peripherals {\n")

	if krate := coreCrateFor(backend.Target); krate != "" {
		fmt.Fprintf(&sb, "    /// Returns all the peripherals *once*.\n    #[inline]\n    pub fn take() -> Option<Self> {\n")
		fmt.Fprintf(&sb, "        %s::interrupt::free(|_| {\n", krate)
		sb.WriteString("            if unsafe { DEVICE_PERIPHERALS } {\n                None\n            } else {\n                Some(unsafe { Peripherals::steal() })\n            }\n        })\n    }\n\n")
	}

	sb.WriteString("    /// Unchecked version of `Peripherals::take()`; bypasses the at-most-once guard.\n")
	sb.WriteString("    #[inline]\n    pub unsafe fn steal() -> Self {\n        debug_assert!(!DEVICE_PERIPHERALS);\n\n        DEVICE_PERIPHERALS = true;\n\n        Peripherals {\n")

	for _, e := range entries {
		fmt.Fprintf(&sb, "            %s: %s { _marker: core::marker::PhantomData },\n", e.PeripheralName, e.PeripheralName)
	}

	sb.WriteString("        }\n    }\n}\n")

	return sb.String()
}

// ExcludeCore filters out any peripheral whose sanitized name is one of the
// architecture backend's assumed-present core peripherals, re-exporting
// them instead when cfg.ReexportCorePeripherals is set (spec §4.7).
func ExcludeCore(name string, backend arch.Backend) bool {
	upper := ident.Ident(name, config.Peripheral, config.DefaultIdentFormats(), -1)

	for _, core := range backend.CorePeripherals {
		if strings.EqualFold(core, upper) {
			return true
		}
	}

	return false
}

// ReexportCore renders the `pub use` lines for the architecture support
// crate's core peripherals (spec §6, reexport_core_peripherals).
func ReexportCore(backend arch.Backend) string {
	if len(backend.CorePeripherals) == 0 {
		return ""
	}

	krate := coreCrateFor(backend.Target)
	if krate == "" {
		return ""
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "pub use %s::peripheral::Peripherals as CorePeripherals;\n", krate)

	for _, p := range backend.CorePeripherals {
		fmt.Fprintf(&sb, "pub use %s::peripheral::%s;\n", krate, p)
	}

	return sb.String()
}
