package register

import (
	"strings"
	"testing"

	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/diag"
	"github.com/svdgen/svdgen/pkg/model"
)

func u(v uint) *uint       { return &v }
func u64(v uint64) *uint64 { return &v }

func TestEmitReadWriteRegisterProducesReaderAndWriter(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{{
			Name:        "GPIOA",
			BaseAddress: 0x40000000,
			Registers: []*model.Register{{
				Name: "MODER", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0),
				Fields: []*model.Field{
					{Name: "MODE0", BitOffset: 0, BitWidth: 2, Description: "Pin 0 mode"},
				},
			}},
		}},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	eff, ok := idx.Register(model.RegisterPath{Block: model.BlockPath{Peripheral: "GPIOA"}, Register: "MODER"})
	if !ok {
		t.Fatalf("register MODER not found in index")
	}

	emitted, err := Emit(config.Default(), eff, idx)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if emitted.ReaderItems != 1 || emitted.WriterItems != 1 {
		t.Fatalf("ReaderItems=%d WriterItems=%d, want 1 and 1", emitted.ReaderItems, emitted.WriterItems)
	}

	if !strings.Contains(emitted.Contents, "pub type R = generic::R<") {
		t.Fatalf("read-write register should emit a reader type: %s", emitted.Contents)
	}

	if !strings.Contains(emitted.Contents, "pub type W = generic::W<") {
		t.Fatalf("read-write register should emit a writer type: %s", emitted.Contents)
	}

	if !strings.Contains(emitted.Contents, "mode0") {
		t.Fatalf("field accessor mode0 missing: %s", emitted.Contents)
	}
}

func TestEmitReadOnlyRegisterHasNoWriter(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{{
			Name:        "GPIOA",
			BaseAddress: 0x40000000,
			Registers: []*model.Register{{
				Name: "IDR", AddressOffset: 0, Size: u(32), Access: model.ReadOnly,
				Fields: []*model.Field{{Name: "IDR0", BitOffset: 0, BitWidth: 1}},
			}},
		}},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	eff, ok := idx.Register(model.RegisterPath{Block: model.BlockPath{Peripheral: "GPIOA"}, Register: "IDR"})
	if !ok {
		t.Fatalf("register IDR not found in index")
	}

	emitted, err := Emit(config.Default(), eff, idx)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if emitted.WriterItems != 0 {
		t.Fatalf("WriterItems = %d, want 0 for a read-only register", emitted.WriterItems)
	}

	if strings.Contains(emitted.Contents, "pub type W") {
		t.Fatalf("read-only register should not emit a writer type: %s", emitted.Contents)
	}
}

func TestEmitFieldWithEnumeratedValuesProducesEnumType(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{{
			Name:        "GPIOA",
			BaseAddress: 0x40000000,
			Registers: []*model.Register{{
				Name: "MODER", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0),
				Fields: []*model.Field{{
					Name: "MODE0", BitOffset: 0, BitWidth: 2,
					EnumeratedValue: []*model.EnumeratedValues{{
						Usage: model.UsageReadWrite,
						Values: []model.EnumeratedValue{
							{Name: "INPUT", Value: 0, HasValue: true},
							{Name: "OUTPUT", Value: 1, HasValue: true},
						},
					}},
				}},
			}},
		}},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	eff, ok := idx.Register(model.RegisterPath{Block: model.BlockPath{Peripheral: "GPIOA"}, Register: "MODER"})
	if !ok {
		t.Fatalf("register MODER not found in index")
	}

	emitted, err := Emit(config.Default(), eff, idx)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if !strings.Contains(emitted.Contents, "pub enum MODE0_A") {
		t.Fatalf("expected enum type MODE0_A, got: %s", emitted.Contents)
	}

	if !strings.Contains(emitted.Contents, "INPUT = 0") || !strings.Contains(emitted.Contents, "OUTPUT = 1") {
		t.Fatalf("expected both enum variants with values, got: %s", emitted.Contents)
	}
}

func TestEmitSingleBitEnumeratedFieldDecodesThroughEnumReader(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{{
			Name:        "GPIOA",
			BaseAddress: 0x40000000,
			Registers: []*model.Register{{
				Name: "CR", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0),
				Fields: []*model.Field{{
					Name: "EN", BitOffset: 0, BitWidth: 1,
					EnumeratedValue: []*model.EnumeratedValues{{
						Usage: model.UsageReadWrite,
						Values: []model.EnumeratedValue{
							{Name: "OFF", Value: 0, HasValue: true},
							{Name: "ON", Value: 1, HasValue: true},
						},
					}},
				}},
			}},
		}},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	eff, ok := idx.Register(model.RegisterPath{Block: model.BlockPath{Peripheral: "GPIOA"}, Register: "CR"})
	if !ok {
		t.Fatalf("register CR not found in index")
	}

	emitted, err := Emit(config.Default(), eff, idx)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if strings.Contains(emitted.Contents, "FieldReader<bool, bool>") {
		t.Fatalf("a 1-bit enumerated field should not read through the bool reader, got: %s", emitted.Contents)
	}

	if !strings.Contains(emitted.Contents, "pub fn en(&self) -> generic::FieldReader<u8, EN_A>") {
		t.Fatalf("expected en() to return generic::FieldReader<u8, EN_A>, got: %s", emitted.Contents)
	}

	if !strings.Contains(emitted.Contents, "pub fn is_off(&self) -> bool") || !strings.Contains(emitted.Contents, "pub fn is_on(&self) -> bool") {
		t.Fatalf("expected is_off/is_on accessors, got: %s", emitted.Contents)
	}

	if !strings.Contains(emitted.Contents, "EN_A::OFF") || !strings.Contains(emitted.Contents, "EN_A::ON") {
		t.Fatalf("expected match arms referencing the sanitized variant names, got: %s", emitted.Contents)
	}
}

func TestEmitPascalEnumValuesKeepsMatchArmsInSyncWithDeclaredVariants(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{{
			Name:        "GPIOA",
			BaseAddress: 0x40000000,
			Registers: []*model.Register{{
				Name: "CR", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0),
				Fields: []*model.Field{{
					Name: "EN", BitOffset: 0, BitWidth: 1,
					EnumeratedValue: []*model.EnumeratedValues{{
						Usage: model.UsageReadWrite,
						Values: []model.EnumeratedValue{
							{Name: "OFF", Value: 0, HasValue: true},
							{Name: "ON", Value: 1, HasValue: true},
						},
					}},
				}},
			}},
		}},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	eff, ok := idx.Register(model.RegisterPath{Block: model.BlockPath{Peripheral: "GPIOA"}, Register: "CR"})
	if !ok {
		t.Fatalf("register CR not found in index")
	}

	cfg := config.Default()
	cfg.PascalEnumValues = true

	emitted, err := Emit(cfg, eff, idx)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if strings.Contains(emitted.Contents, "EN_A::OFF") || strings.Contains(emitted.Contents, "EN_A::ON") {
		t.Fatalf("pascal_enum_values should recase the match arms too, got: %s", emitted.Contents)
	}

	if !strings.Contains(emitted.Contents, "EN_A::Off") || !strings.Contains(emitted.Contents, "EN_A::On") {
		t.Fatalf("expected match arms to reference the declared Pascal-cased variants, got: %s", emitted.Contents)
	}
}

func TestEmitWithAtomicsEmitsSetClearToggleBits(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{{
			Name:        "GPIOA",
			BaseAddress: 0x48000000,
			Registers: []*model.Register{{
				Name: "BSRR", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0),
				Fields: []*model.Field{{Name: "BS0", BitOffset: 0, BitWidth: 1}},
			}},
		}},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	eff, ok := idx.Register(model.RegisterPath{Block: model.BlockPath{Peripheral: "GPIOA"}, Register: "BSRR"})
	if !ok {
		t.Fatalf("register BSRR not found in index")
	}

	cfg := config.Default()
	cfg.Atomics = true

	emitted, err := Emit(cfg, eff, idx)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	for _, want := range []string{"set_bits", "clear_bits", "toggle_bits"} {
		if !strings.Contains(emitted.Contents, want) {
			t.Fatalf("expected atomics extension to emit %q, got: %s", want, emitted.Contents)
		}
	}
}

func TestEmitWithAtomicsOnCortexMBitBandableAddressEmitsBbSet(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{{
			Name:        "GPIOA",
			BaseAddress: 0x40020000,
			Registers: []*model.Register{{
				Name: "BSRR", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0),
				Fields: []*model.Field{{Name: "BS0", BitOffset: 0, BitWidth: 1}},
			}},
		}},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	eff, ok := idx.Register(model.RegisterPath{Block: model.BlockPath{Peripheral: "GPIOA"}, Register: "BSRR"})
	if !ok {
		t.Fatalf("register BSRR not found in index")
	}

	cfg := config.Default()
	cfg.Atomics = true
	cfg.Target = config.CortexM

	emitted, err := Emit(cfg, eff, idx)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if !strings.Contains(emitted.Contents, "bb_set") || !strings.Contains(emitted.Contents, "bb_clear") {
		t.Fatalf("expected bit-band extension on a bit-bandable cortex-m address, got: %s", emitted.Contents)
	}
}

func TestEmitWithImplDebugReportsFieldAccessors(t *testing.T) {
	device := &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{{
			Name:        "GPIOA",
			BaseAddress: 0x40000000,
			Registers: []*model.Register{{
				Name: "MODER", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0),
				Fields: []*model.Field{{Name: "MODE0", BitOffset: 0, BitWidth: 2}},
			}},
		}},
	}

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	eff, ok := idx.Register(model.RegisterPath{Block: model.BlockPath{Peripheral: "GPIOA"}, Register: "MODER"})
	if !ok {
		t.Fatalf("register MODER not found in index")
	}

	cfg := config.Default()
	cfg.ImplDebug = true

	emitted, err := Emit(cfg, eff, idx)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if !strings.Contains(emitted.Contents, "impl core::fmt::Debug for R") {
		t.Fatalf("expected a Debug impl for R, got: %s", emitted.Contents)
	}

	if !strings.Contains(emitted.Contents, "mode0") {
		t.Fatalf("expected Debug impl to name field accessor mode0, got: %s", emitted.Contents)
	}
}
