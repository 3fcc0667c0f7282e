package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/svdgen/svdgen/pkg/config"
)

// addConfigFlags registers every option from spec §6's configuration table
// onto cmd, shared between `generate` and `check` (check ignores the
// emission-only ones but still accepts them so a single invocation line
// can be reused between `check` and `generate`).
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("target", "cortex-m", "architecture backend: cortex-m, msp430, riscv, xtensa-lx, mips, none")
	cmd.Flags().Bool("atomics", false, "emit atomic set_bits/clear_bits/toggle_bits helpers")
	cmd.Flags().String("atomics-feature", "", "gate atomics behind a named build feature")
	cmd.Flags().Bool("generic-mod", false, "split the generic-support module into a sibling file")
	cmd.Flags().Bool("make-mod", false, "emit as a mod.rs-style tree")
	cmd.Flags().Bool("ignore-groups", false, "ignore SVD group_name in peripheral naming")
	cmd.Flags().Bool("keep-list", false, "preserve SVD declaration order for non-address-ordered views")
	cmd.Flags().Bool("pascal-enum-values", false, "case enumerated-value identifiers as Pascal instead of CONSTANT")
	cmd.Flags().Bool("feature-group", false, "gate peripherals behind a per-group build feature")
	cmd.Flags().Bool("feature-peripheral", false, "gate peripherals behind a per-peripheral build feature")
	cmd.Flags().Uint("max-cluster-size", 0, "emit clusters as fixed-size arrays where dim is uniform")
	cmd.Flags().Bool("impl-debug", false, "derive a Debug-style field-by-field formatter")
	cmd.Flags().String("impl-debug-feature", "", "gate the Debug implementation behind a named build feature")
	cmd.Flags().String("impl-defmt", "", "request a structured-log derivation under the given crate path")
	cmd.Flags().String("interrupt-link-section", "", "override the default link section for the vector table")
	cmd.Flags().Bool("reexport-core-peripherals", false, "re-export architecture-library core peripherals")
	cmd.Flags().Bool("reexport-interrupt", false, "re-export the architecture library's interrupt enumeration")
	cmd.Flags().String("config", "", "YAML file of ident_formats overrides (spec §6)")
}

// buildConfig resolves a config.Config from cmd's bound flags (spec §6).
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	target, ok := config.ParseTarget(GetString(cmd, "target"))
	if !ok {
		return cfg, fmt.Errorf("unknown target %q", GetString(cmd, "target"))
	}

	cfg.Target = target
	cfg.Atomics = GetFlag(cmd, "atomics")
	cfg.AtomicsFeature = GetString(cmd, "atomics-feature")
	cfg.GenericMod = GetFlag(cmd, "generic-mod")
	cfg.MakeMod = GetFlag(cmd, "make-mod")
	cfg.IgnoreGroups = GetFlag(cmd, "ignore-groups")
	cfg.KeepList = GetFlag(cmd, "keep-list")
	cfg.Strict = GetFlag(cmd, "strict")
	cfg.PascalEnumValues = GetFlag(cmd, "pascal-enum-values")
	cfg.FeatureGroup = GetFlag(cmd, "feature-group")
	cfg.FeaturePeripheral = GetFlag(cmd, "feature-peripheral")
	cfg.MaxClusterSize = GetUint(cmd, "max-cluster-size")
	cfg.ImplDebug = GetFlag(cmd, "impl-debug")
	cfg.ImplDebugFeature = GetString(cmd, "impl-debug-feature")
	cfg.ImplDefmt = GetString(cmd, "impl-defmt")
	cfg.InterruptLinkSection = GetString(cmd, "interrupt-link-section")
	cfg.ReexportCorePeripherals = GetFlag(cmd, "reexport-core-peripherals")
	cfg.ReexportInterrupt = GetFlag(cmd, "reexport-interrupt")

	if path := GetString(cmd, "config"); path != "" {
		formats, err := config.LoadIdentFormats(path)
		if err != nil {
			return cfg, err
		}

		cfg.IdentFormats = formats
	}

	return cfg, nil
}
