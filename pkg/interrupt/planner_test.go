package interrupt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/svdgen/svdgen/pkg/diag"
	"github.com/svdgen/svdgen/pkg/model"
)

func TestBuildInterruptGap(t *testing.T) {
	peripherals := []*model.Peripheral{
		{
			Name: "P",
			Interrupts: []*model.Interrupt{
				{Name: "TIMER", Value: 0},
				{Name: "UART", Value: 3},
			},
		},
	}

	plan, err := Build(peripherals, diag.NewSink(false))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(plan.Vectors) != 4 {
		t.Fatalf("len(Vectors) = %d, want 4", len(plan.Vectors))
	}

	if plan.Vectors[0].Interrupt == nil || plan.Vectors[0].Interrupt.Name != "TIMER" {
		t.Fatalf("Vectors[0] = %+v, want TIMER", plan.Vectors[0])
	}

	if plan.Vectors[1].Interrupt != nil || plan.Vectors[2].Interrupt != nil {
		t.Fatalf("Vectors[1], Vectors[2] should be reserved slots")
	}

	if plan.Vectors[3].Interrupt == nil || plan.Vectors[3].Interrupt.Name != "UART" {
		t.Fatalf("Vectors[3] = %+v, want UART", plan.Vectors[3])
	}

	if _, ok := plan.TryFrom(2); ok {
		t.Fatal("TryFrom(2) should fail: reserved slot")
	}

	if intr, ok := plan.TryFrom(3); !ok || intr.Name != "UART" {
		t.Fatalf("TryFrom(3) = (%v, %v), want (UART, true)", intr, ok)
	}
}

func TestBuildInterruptDuplicateValueLastWriteWins(t *testing.T) {
	peripherals := []*model.Peripheral{
		{Name: "P1", Interrupts: []*model.Interrupt{{Name: "A", Value: 0, Description: "first"}}},
		{Name: "P2", Interrupts: []*model.Interrupt{{Name: "B", Value: 0, Description: "second"}}},
	}

	sink := diag.NewSink(false)

	plan, err := Build(peripherals, sink)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if plan.Vectors[0].Interrupt.Name != "B" {
		t.Fatalf("expected last write (B) to win, got %s", plan.Vectors[0].Interrupt.Name)
	}

	if len(sink.Warnings()) != 1 {
		t.Fatalf("expected 1 warning for description mismatch, got %d", len(sink.Warnings()))
	}
}

func TestBuildInterruptDeclaredOrderSurvivesDedup(t *testing.T) {
	peripherals := []*model.Peripheral{
		{Name: "P1", Interrupts: []*model.Interrupt{
			{Name: "UART", Value: 5, Description: "uart"},
			{Name: "TIMER", Value: 1, Description: "timer"},
		}},
		{Name: "P2", Interrupts: []*model.Interrupt{
			{Name: "TIMER", Value: 1, Description: "timer"}, // duplicate value, same description
		}},
	}

	plan, err := Build(peripherals, diag.NewSink(false))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []*model.Interrupt{
		{Name: "UART", Value: 5, Description: "uart"},
		{Name: "TIMER", Value: 1, Description: "timer"},
	}

	if diff := cmp.Diff(want, plan.Declared); diff != "" {
		t.Fatalf("Declared order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildInterruptEmpty(t *testing.T) {
	plan, err := Build(nil, diag.NewSink(false))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(plan.Vectors) != 0 {
		t.Fatalf("expected empty plan, got %d vectors", len(plan.Vectors))
	}
}
