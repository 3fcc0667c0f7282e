// Package access implements the Access & Safety Analyzer (spec §4.3): it
// derives the effective access for every register/field, and classifies
// writer safety (Safe / Range / Unsafe) from write-constraints and bit
// width.
package access

import "github.com/svdgen/svdgen/pkg/model"

// EffectiveAccess computes a register's effective access (spec §4.3): if
// the register declares access, use it; otherwise infer from its fields
// (all read-only -> read-only, all write-only -> write-only, otherwise
// read-write); a register with no fields at all is read-write.
func EffectiveAccess(declared model.Access, fields []*model.Field) model.Access {
	if declared != model.AccessUnspecified {
		return declared
	}

	if len(fields) == 0 {
		return model.ReadWrite
	}

	allRO, allWO := true, true

	for _, f := range fields {
		if f.Access != model.ReadOnly {
			allRO = false
		}

		if f.Access != model.WriteOnly {
			allWO = false
		}
	}

	switch {
	case allRO:
		return model.ReadOnly
	case allWO:
		return model.WriteOnly
	default:
		return model.ReadWrite
	}
}

// FieldEffectiveAccess resolves one field's access: a field that declares
// its own access uses it; otherwise it inherits the register's effective
// access (spec §3, "Absent fields -> read-write" generalizes to "absent
// field access -> register access").
func FieldEffectiveAccess(registerAccess, declared model.Access) model.Access {
	if declared != model.AccessUnspecified {
		return declared
	}

	return registerAccess
}

// Safety classifies how a field's writer may be used.
type Safety int

const (
	// Safe means any bit pattern of the field's width is a legal write.
	Safe Safety = iota
	// Range means only values within [Min, Max] are legal; the Writer
	// emits a bounded-integer newtype rather than a raw accessor.
	Range
	// Unsafe means the caller must assert legality themselves; the
	// Writer's raw `bits` setter is gated behind an explicit marker.
	Unsafe
)

// FieldSafety classifies writer safety for a field of the given width,
// optional write-constraint, and optional full enumeration (spec §4.3).
func FieldSafety(width uint, wc *model.WriteConstraint, enumCoversFullWidth bool) Safety {
	if enumCoversFullWidth {
		return Safe
	}

	if wc != nil && wc.Kind == model.WriteConstraintRange {
		if wc.Min == 0 && wc.Max == fullRange(width) {
			return Safe
		}

		return Range
	}

	if wc == nil && width == 1 {
		return Safe
	}

	return Unsafe
}

// RangeBounds returns the [Min, Max] bounds for a Range-classified field.
// Behavior is undefined if FieldSafety did not return Range for the same
// inputs.
func RangeBounds(wc *model.WriteConstraint) (min, max uint64) {
	return wc.Min, wc.Max
}

func fullRange(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}

	return 1<<width - 1
}

// EnumCoversFullWidth reports whether an enumerated-value set exhausts
// every one of the 2^width distinct values a field of that width can hold
// (spec §4.3, "safety is Safe regardless").
func EnumCoversFullWidth(evs *model.EnumeratedValues, width uint) bool {
	if evs == nil {
		return false
	}

	resolved := model.ResolvedEvs(evs)
	seen := map[uint64]bool{}
	hasDefault := false

	for _, v := range resolved.Values {
		if v.IsDefault {
			hasDefault = true
			continue
		}

		if v.HasValue {
			seen[v.Value] = true
		}
	}

	if hasDefault {
		return true
	}

	if width >= 64 {
		return false
	}

	return uint64(len(seen)) >= fullRange(width)+1
}
