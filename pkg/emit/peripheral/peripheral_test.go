package peripheral

import (
	"strings"
	"testing"

	"github.com/svdgen/svdgen/pkg/arch"
	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/diag"
	"github.com/svdgen/svdgen/pkg/model"
)

func TestEmitNonDerivedPeripheralProducesRegisterBlock(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{
			{
				Name:        "GPIOA",
				BaseAddress: 0x40000000,
				Description: "General purpose I/O",
				Registers: []*model.Register{
					{Name: "MODER", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0)},
				},
			},
		},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	emitted, err := Emit(device.Peripherals[0], idx, config.Default(), diag.NewSink(false))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if emitted.Derived {
		t.Fatalf("Derived = true, want false")
	}

	if !emitted.HasRegisterBlock {
		t.Fatalf("HasRegisterBlock = false, want true")
	}

	if emitted.ModName != "gpioa" {
		t.Fatalf("ModName = %q, want gpioa", emitted.ModName)
	}

	var registerBlockFile *Module
	for i := range emitted.Files {
		if emitted.Files[i].Name == "register_block.rs" {
			registerBlockFile = &emitted.Files[i]
		}
	}

	if registerBlockFile == nil {
		t.Fatalf("no register_block.rs file among %d emitted files", len(emitted.Files))
	}

	if !strings.Contains(registerBlockFile.Contents, "pub struct RegisterBlock") {
		t.Fatalf("register block contents = %q, want a RegisterBlock struct", registerBlockFile.Contents)
	}
}

func TestEmitDerivedPeripheralHasNoRegisterBlockOfItsOwn(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{
			{
				Name:        "USART1",
				BaseAddress: 0x40011000,
				Description: "USART",
				Registers: []*model.Register{
					{Name: "CR", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0)},
				},
			},
			{
				Name:        "USART2",
				BaseAddress: 0x40004400,
				Description: "USART",
				DerivedFrom: "USART1",
			},
		},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	emitted, err := Emit(device.Peripherals[1], idx, config.Default(), diag.NewSink(false))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if !emitted.Derived {
		t.Fatalf("Derived = false, want true")
	}

	if !emitted.HasRegisterBlock {
		t.Fatalf("HasRegisterBlock = false, want true (borrows USART1's block)")
	}

	if emitted.BaseName != "usart1" {
		t.Fatalf("BaseName = %q, want usart1", emitted.BaseName)
	}

	for _, f := range emitted.Files {
		if f.Name == "register_block.rs" {
			t.Fatalf("derived peripheral emitted its own register_block.rs")
		}
	}
}

func TestEmitPeripheralWithNoRegistersHasNoRegisterBlock(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{
			{Name: "RESERVED", BaseAddress: 0x50000000, Description: "Reserved region"},
		},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	emitted, err := Emit(device.Peripherals[0], idx, config.Default(), diag.NewSink(false))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if emitted.HasRegisterBlock {
		t.Fatalf("HasRegisterBlock = true, want false for a register-less peripheral")
	}
}

func TestEmitMentionsGroupNameUnlessIgnored(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{
			{
				Name:        "USART1",
				GroupName:   "USART",
				BaseAddress: 0x40011000,
				Description: "USART",
				Registers: []*model.Register{
					{Name: "CR", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0)},
				},
			},
		},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	withGroup, err := Emit(device.Peripherals[0], idx, config.Default(), diag.NewSink(false))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if !strings.Contains(withGroup.Files[0].Contents, "USART` peripheral group") {
		t.Fatalf("expected group_name mention, got: %s", withGroup.Files[0].Contents)
	}

	cfg := config.Default()
	cfg.IgnoreGroups = true

	ignored, err := Emit(device.Peripherals[0], idx, cfg, diag.NewSink(false))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if strings.Contains(ignored.Files[0].Contents, "peripheral group") {
		t.Fatalf("--ignore-groups should suppress the group_name mention, got: %s", ignored.Files[0].Contents)
	}
}

func TestEmitImplDefmtDerivesFormatOnRegisterBlock(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{
			{
				Name:        "GPIOA",
				BaseAddress: 0x40000000,
				Registers: []*model.Register{
					{Name: "MODER", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0)},
				},
			},
		},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	cfg := config.Default()
	cfg.ImplDefmt = "defmt"

	emitted, err := Emit(device.Peripherals[0], idx, cfg, diag.NewSink(false))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var registerBlock string
	for _, f := range emitted.Files {
		if f.Name == "register_block.rs" {
			registerBlock = f.Contents
		}
	}

	if !strings.Contains(registerBlock, "#[derive(defmt::Format)]") {
		t.Fatalf("expected a defmt::Format derive, got: %s", registerBlock)
	}
}

func TestExcludeCoreMatchesArchitectureCorePeripherals(t *testing.T) {
	backend := arch.For(config.CortexM)

	if !ExcludeCore("NVIC", backend) {
		t.Fatalf("ExcludeCore(NVIC) = false, want true for cortex-m")
	}

	if ExcludeCore("GPIOA", backend) {
		t.Fatalf("ExcludeCore(GPIOA) = true, want false")
	}
}
