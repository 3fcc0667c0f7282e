package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/model"
)

func u(v uint) *uint       { return &v }
func u64(v uint64) *uint64 { return &v }

func stubDevice() *model.Device {
	return &model.Device{
		Name: "STUB",
		Peripherals: []*model.Peripheral{{
			Name:        "GPIOA",
			BaseAddress: 0x40000000,
			Description: "GPIO",
			Registers: []*model.Register{
				{Name: "MODER", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0), Description: "Mode"},
			},
		}},
	}
}

func TestCheckCommandFailsWithoutALoader(t *testing.T) {
	RegisteredLoader = nil

	rootCmd.SetArgs([]string{"check", "--input", "device.svd"})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("check should fail when no Loader is registered")
	}
}

func TestGenerateCommandWritesBundleToOutputDir(t *testing.T) {
	RegisteredLoader = func(path string) (*model.Device, error) {
		return stubDevice(), nil
	}
	defer func() { RegisteredLoader = nil }()

	outDir := t.TempDir()

	rootCmd.SetArgs([]string{"generate", "--input", "device.svd", "--output-dir", outDir, "--target", "cortex-m"})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "device.x")); err != nil {
		t.Fatalf("expected device.x to be written: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "gpioa", "register_block.rs")); err != nil {
		t.Fatalf("expected gpioa/register_block.rs to be written: %v", err)
	}
}

func TestBuildConfigRejectsUnknownTarget(t *testing.T) {
	generateCmd.Flags().Set("target", "not-a-real-target")
	defer generateCmd.Flags().Set("target", "cortex-m")

	if _, err := buildConfig(generateCmd); err == nil {
		t.Fatalf("buildConfig should reject an unknown target")
	}
}

func TestBuildConfigDefaultsToCortexM(t *testing.T) {
	cfg, err := buildConfig(generateCmd)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}

	if cfg.Target != config.CortexM {
		t.Fatalf("Target = %v, want CortexM", cfg.Target)
	}
}
