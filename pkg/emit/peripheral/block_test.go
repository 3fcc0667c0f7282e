package peripheral

import (
	"strings"
	"testing"

	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/diag"
	"github.com/svdgen/svdgen/pkg/model"
)

func u(v uint) *uint        { return &v }
func u64(v uint64) *uint64  { return &v }

func deviceWithRegisters(regs ...*model.Register) *model.Device {
	return &model.Device{
		Name: "D",
		Peripherals: []*model.Peripheral{
			{Name: "P", BaseAddress: 0x40000000, Registers: regs},
		},
	}
}

func TestLayoutBlockInsertsReservedFiller(t *testing.T) {
	device := deviceWithRegisters(
		&model.Register{Name: "R0", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0)},
		&model.Register{Name: "R1", AddressOffset: 8, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0)},
	)

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	block, _, err := LayoutBlock(device.Peripherals[0].Registers, nil, model.BlockPath{Peripheral: "P"},
		idx, config.DefaultIdentFormats(), config.Default(), diag.NewSink(false))
	if err != nil {
		t.Fatalf("LayoutBlock: %v", err)
	}

	if len(block.Fields) != 3 {
		t.Fatalf("len(Fields) = %d, want 3 (r0, reserved, r1)", len(block.Fields))
	}

	if !strings.Contains(block.Fields[1], "_reserved0: [u8; 4]") {
		t.Fatalf("reserved filler = %q, want 4-byte gap", block.Fields[1])
	}

	if block.SizeBytes != 12 {
		t.Fatalf("SizeBytes = %d, want 12", block.SizeBytes)
	}
}

func TestLayoutBlockDropsOverlap(t *testing.T) {
	device := deviceWithRegisters(
		&model.Register{Name: "R0", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0)},
		&model.Register{Name: "R1", AddressOffset: 2, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0)},
	)

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	sink := diag.NewSink(false)

	block, _, err := LayoutBlock(device.Peripherals[0].Registers, nil, model.BlockPath{Peripheral: "P"},
		idx, config.DefaultIdentFormats(), config.Default(), sink)
	if err != nil {
		t.Fatalf("LayoutBlock: %v", err)
	}

	if len(block.Fields) != 1 {
		t.Fatalf("len(Fields) = %d, want 1 (overlapping register dropped)", len(block.Fields))
	}

	if len(sink.Warnings()) != 1 {
		t.Fatalf("len(Warnings) = %d, want 1", len(sink.Warnings()))
	}

	if sink.Warnings()[0].Kind() != diag.Overlap {
		t.Fatalf("warning kind = %v, want Overlap", sink.Warnings()[0].Kind())
	}
}

func TestLayoutBlockSequentialArrayBecomesArrayField(t *testing.T) {
	device := deviceWithRegisters(&model.Register{
		Name: "GPIO[%s]", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0),
		ArrayDim: &model.ArrayDim{Dim: 4, DimIncrement: 4},
	})

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	block, _, err := LayoutBlock(device.Peripherals[0].Registers, nil, model.BlockPath{Peripheral: "P"},
		idx, config.DefaultIdentFormats(), config.Default(), diag.NewSink(false))
	if err != nil {
		t.Fatalf("LayoutBlock: %v", err)
	}

	if len(block.Fields) != 1 {
		t.Fatalf("len(Fields) = %d, want 1 (single array field)", len(block.Fields))
	}

	if !strings.Contains(block.Fields[0], "[GPIO; 4]") {
		t.Fatalf("field = %q, want array type [GPIO; 4]", block.Fields[0])
	}

	if block.SizeBytes != 16 {
		t.Fatalf("SizeBytes = %d, want 16", block.SizeBytes)
	}
}

func TestLayoutBlockNonSequentialArrayExpands(t *testing.T) {
	device := deviceWithRegisters(&model.Register{
		Name: "GPIO[%s]", AddressOffset: 0, Size: u(32), Access: model.ReadWrite, ResetValue: u64(0),
		ArrayDim: &model.ArrayDim{Dim: 2, DimIncrement: 8},
	})

	idx, err := model.BuildIndex(device, diag.NewSink(false))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	block, _, err := LayoutBlock(device.Peripherals[0].Registers, nil, model.BlockPath{Peripheral: "P"},
		idx, config.DefaultIdentFormats(), config.Default(), diag.NewSink(false))
	if err != nil {
		t.Fatalf("LayoutBlock: %v", err)
	}

	// 2 named siblings plus a reserved gap between them (8-byte stride, 4-byte registers).
	if len(block.Fields) != 3 {
		t.Fatalf("len(Fields) = %d, want 3 (gpio0, reserved, gpio1)", len(block.Fields))
	}

	if !strings.Contains(block.Fields[0], "pub gpio0: GPIO") {
		t.Fatalf("field[0] = %q, want named sibling gpio0", block.Fields[0])
	}
}
