// Package interrupt implements the Interrupt Planner (spec §4.4): it
// deduplicates, orders, and fills gaps in the vector table, and selects
// the per-architecture emission strategy (the architecture-specific parts
// live in pkg/arch; this package produces the architecture-independent
// plan that pkg/arch renders).
package interrupt

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/svdgen/svdgen/pkg/diag"
	"github.com/svdgen/svdgen/pkg/model"
)

// Vector is one resolved entry in the vector table: either a named
// interrupt or a reserved slot.
type Vector struct {
	Value int
	// Interrupt is nil for a reserved slot.
	Interrupt *model.Interrupt
}

// Plan is the deduplicated, ordered, gap-filled interrupt table (spec
// §4.4).
type Plan struct {
	// Vectors has length max(value)+1; Vectors[i].Value == i always.
	Vectors []Vector
	// Declared preserves the original SVD declaration order of every
	// named interrupt (pre-dedup collapse keeps the first occurrence's
	// position), used for the `keep_list` secondary listing
	// (SPEC_FULL.md, domain-stack supplemented features) instead of the
	// primary, value-ordered Vectors view.
	Declared []*model.Interrupt
}

// Build deduplicates interrupts by value (last write wins, with a warning
// when a duplicate's description differs from the interrupt previously
// recorded for that value), sorts by value, and fills
// gaps with reserved slots (spec §4.4).
func Build(peripherals []*model.Peripheral, sink *diag.Sink) (*Plan, error) {
	byValue := map[int]*model.Interrupt{}
	firstSeenOrder := []int{}
	maxValue := -1

	for _, p := range peripherals {
		for _, intr := range p.Interrupts {
			if existing, ok := byValue[intr.Value]; ok {
				if existing.Description != intr.Description {
					if sink != nil {
						sink.Warn(diag.New(diag.Ambiguity, intr.Name,
							fmt.Sprintf("duplicate interrupt value %d with inconsistent description (vs %q)",
								intr.Value, existing.Name)))
					}
				}
			} else {
				firstSeenOrder = append(firstSeenOrder, intr.Value)
			}

			// Last write wins.
			byValue[intr.Value] = intr

			if intr.Value > maxValue {
				maxValue = intr.Value
			}
		}
	}

	if maxValue < 0 {
		return &Plan{}, nil
	}

	occupied := bitset.New(uint(maxValue + 1))
	vectors := make([]Vector, maxValue+1)

	for v, intr := range byValue {
		vectors[v] = Vector{Value: v, Interrupt: intr}
		occupied.Set(uint(v))
	}

	for i := range vectors {
		if !occupied.Test(uint(i)) {
			vectors[i] = Vector{Value: i}
		}
	}

	declared := make([]*model.Interrupt, 0, len(firstSeenOrder))
	for _, v := range firstSeenOrder {
		declared = append(declared, byValue[v])
	}

	return &Plan{Vectors: vectors, Declared: declared}, nil
}

// TryFrom looks up the named interrupt occupying a given vector value,
// mirroring the generated code's fallible `try_from(value) -> Interrupt`
// conversion (spec §4.4(d)).
func (p *Plan) TryFrom(value int) (*model.Interrupt, bool) {
	if value < 0 || value >= len(p.Vectors) {
		return nil, false
	}

	v := p.Vectors[value]

	return v.Interrupt, v.Interrupt != nil
}
