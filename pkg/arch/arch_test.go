package arch

import (
	"strings"
	"testing"

	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/interrupt"
	"github.com/svdgen/svdgen/pkg/model"
)

func TestForSelectsPerTargetConvention(t *testing.T) {
	cases := []struct {
		target     config.Target
		convention CallingConvention
		slotWidth  SlotWidth
	}{
		{config.CortexM, ConventionC, Slot32},
		{config.Msp430, ConventionMSP430Interrupt, Slot16},
		{config.RISCV, ConventionC, SlotPtr},
	}

	for _, c := range cases {
		b := For(c.target)

		if b.Convention != c.convention {
			t.Fatalf("For(%v).Convention = %v, want %v", c.target, b.Convention, c.convention)
		}

		if b.SlotWidth != c.slotWidth {
			t.Fatalf("For(%v).SlotWidth = %v, want %v", c.target, b.SlotWidth, c.slotWidth)
		}
	}
}

func TestForRISCVHasPLICAndCLINT(t *testing.T) {
	b := For(config.RISCV)

	if !b.HasCLINT || !b.HasPLIC {
		t.Fatalf("riscv backend should have both CLINT and PLIC, got %+v", b)
	}

	if len(b.CorePeripherals) != 2 {
		t.Fatalf("riscv CorePeripherals = %v, want [CLINT PLIC]", b.CorePeripherals)
	}
}

func TestLinkerFragmentEmitsProvideLinesForNamedVectors(t *testing.T) {
	plan, err := interrupt.Build([]*model.Peripheral{
		{Name: "P", Interrupts: []*model.Interrupt{{Name: "TIM2", Value: 0}}},
	}, nil)
	if err != nil {
		t.Fatalf("interrupt.Build: %v", err)
	}

	frag := For(config.CortexM).LinkerFragment(plan, "")

	if !strings.Contains(frag, "PROVIDE(TIM2 = DefaultHandler);") {
		t.Fatalf("missing PROVIDE line in: %s", frag)
	}

	if strings.Contains(frag, "_start_TIM2_trap") {
		t.Fatalf("non-riscv target should not emit trap aliases: %s", frag)
	}
}

func TestLinkerFragmentRISCVEmitsTrapAlias(t *testing.T) {
	plan, err := interrupt.Build([]*model.Peripheral{
		{Name: "P", Interrupts: []*model.Interrupt{{Name: "MachineTimer", Value: 7}}},
	}, nil)
	if err != nil {
		t.Fatalf("interrupt.Build: %v", err)
	}

	frag := For(config.RISCV).LinkerFragment(plan, "")

	if !strings.Contains(frag, "PROVIDE(_start_MachineTimer_trap = DefaultHandler);") {
		t.Fatalf("riscv target should emit trap alias: %s", frag)
	}
}

func TestPLICDispatchStubNamesCoreInterrupt(t *testing.T) {
	stub := PLICDispatchStub("MachineExternal")

	if !strings.Contains(stub, "fn MachineExternal()") {
		t.Fatalf("stub should be named after the core interrupt: %s", stub)
	}

	if !strings.Contains(stub, "PLIC::claim()") || !strings.Contains(stub, "PLIC::complete(claim)") {
		t.Fatalf("stub should claim and complete: %s", stub)
	}
}
