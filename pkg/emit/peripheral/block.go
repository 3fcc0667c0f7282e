// Package peripheral implements the Peripheral & Device Emitter (spec
// §4.6): RegisterBlock layout (offset ordering, padding, array/union
// handling), re-export of derived peripherals, and (in device.go) the
// device's Peripherals singleton.
package peripheral

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/svdgen/svdgen/pkg/config"
	"github.com/svdgen/svdgen/pkg/diag"
	"github.com/svdgen/svdgen/pkg/ident"
	"github.com/svdgen/svdgen/pkg/model"
)

// slot is one sorted, pre-layout candidate occupying space in a
// RegisterBlock: a register (possibly array-emittable) or a nested cluster
// (possibly array-emittable), after array expansion decisions have been
// made but before reserved-byte filler has been inserted (spec §4.6).
type slot struct {
	name       string // raw SVD name, for warnings
	offset     uint   // byte offset relative to the enclosing block
	sizeBytes  uint   // total bytes occupied, including array repetition
	decl       string // e.g. "pub gpioa: GPIOA" (no trailing comma/semicolon)
	comment    string
}

// byteWidth rounds a register width in bits up to the byte width it
// occupies in a RegisterBlock: 1, 2, 4, or 8 bytes (spec §3, "effective
// size is power-of-two byte-aligned upward to >= 8 [bits]").
func byteWidth(bits uint) uint {
	switch {
	case bits <= 8:
		return 1
	case bits <= 16:
		return 2
	case bits <= 32:
		return 4
	default:
		return 8
	}
}

// registerSizeBits resolves one register's effective width via the index,
// falling back to 32 only if the index has no entry (should not happen for
// a well-formed block; BuildIndex would already have failed).
func registerSizeBits(idx *model.Index, path model.RegisterPath) uint {
	if eff, ok := idx.Register(path); ok {
		return eff.SizeBits
	}

	return 32
}

// registerSlots converts one declared (possibly dimensioned) register into
// one or more layout slots: a single slot if non-array or array-emittable,
// N named-sibling slots otherwise (spec §4.2 array expansion, §4.6 "Arrays
// convertible per §4.2 become array fields; otherwise, expand").
func registerSlots(r *model.Register, blockPath model.BlockPath, idx *model.Index, formats config.IdentFormats) []slot {
	path := model.RegisterPath{Block: blockPath, Register: r.Name}
	sizeBits := registerSizeBits(idx, path)
	typeName := ident.Ident(strings.NewReplacer("[%s]", "", "%s", "").Replace(r.Name), config.Peripheral, formats, -1)

	if r.ArrayDim == nil {
		fieldName := ident.Ident(r.Name, config.FieldAccessor, formats, -1)

		return []slot{{
			name:      r.Name,
			offset:    r.AddressOffset,
			sizeBytes: byteWidth(sizeBits),
			decl:      fmt.Sprintf("pub %s: %s", fieldName, typeName),
			comment:   describe(r.Description, r.Name),
		}}
	}

	dim := r.ArrayDim

	if dim.EmittableAsArray(sizeBits) {
		fieldName := ident.Ident(strings.NewReplacer("[%s]", "", "%s", "").Replace(r.Name), config.FieldAccessor, formats, -1)

		return []slot{{
			name:      r.Name,
			offset:    r.AddressOffset,
			sizeBytes: byteWidth(sizeBits) * dim.Dim,
			decl:      fmt.Sprintf("pub %s: [%s; %d]", fieldName, typeName, dim.Dim),
			comment:   describe(r.Description, r.Name),
		}}
	}

	// Not array-emittable: expand to N named siblings, one register each,
	// dimIncrement bytes apart (spec §4.2, §4.6).
	indices := dim.Indices()
	out := make([]slot, 0, len(indices))

	for i, idxLabel := range indices {
		name := ident.Expand(r.Name, i)
		_ = idxLabel

		fieldName := ident.Ident(name, config.FieldAccessor, formats, -1)

		out = append(out, slot{
			name:      name,
			offset:    r.AddressOffset + uint(i)*dim.DimIncrement,
			sizeBytes: byteWidth(sizeBits),
			decl:      fmt.Sprintf("pub %s: %s", fieldName, typeName),
			comment:   describe(r.Description, r.Name),
		})
	}

	return out
}

// describe substitutes the entity name for a missing description (spec
// §7, "Missing description").
func describe(desc, name string) string {
	if desc == "" {
		return name
	}

	return desc
}

// clusterSlots lays out one cluster (recursively) into one or more slots,
// returning the slots plus every nested RegisterBlock module the recursion
// produced (spec §4.6, nested clusters).
func clusterSlots(c *model.Cluster, blockPath model.BlockPath, idx *model.Index, formats config.IdentFormats,
	cfg config.Config, sink *diag.Sink) ([]slot, []Module, error) {
	childBlockBase := blockPath.Child(strings.NewReplacer("[%s]", "", "%s", "").Replace(c.Name))

	blockTypeName := ident.Ident(strings.NewReplacer("[%s]", "", "%s", "").Replace(c.Name), config.Cluster, formats, -1)

	block, modules, err := LayoutBlock(c.Registers, c.Clusters, childBlockBase, idx, formats, cfg, sink)
	if err != nil {
		return nil, nil, err
	}

	modName := strings.ToLower(blockTypeName)
	modules = append(modules, Module{
		Name:     modName + ".rs",
		Contents: renderClusterModule(blockTypeName, c.Description, c.Name, block),
	})

	fullTypeName := modName + "::" + blockTypeName

	if c.ArrayDim == nil {
		fieldName := ident.Ident(c.Name, config.FieldAccessor, formats, -1)

		return []slot{{
			name:      c.Name,
			offset:    c.AddressOffset,
			sizeBytes: block.SizeBytes,
			decl:      fmt.Sprintf("pub %s: %s", fieldName, fullTypeName),
			comment:   describe(c.Description, c.Name),
		}}, modules, nil
	}

	dim := c.ArrayDim

	// Non-uniform dim_increment on a cluster array is rejected rather than
	// guessed (spec §9, Open questions).
	if !dim.EmittableAsArray(block.SizeBytes * 8) {
		if dim.DimIncrement*8 != block.SizeBytes*8 && cfg.MaxClusterSize == 0 {
			return nil, nil, diag.New(diag.Schema, childBlockBase.String(),
				"cluster array has non-uniform dim_increment relative to its own layout size; rejected rather than guessed")
		}

		indices := dim.Indices()
		out := make([]slot, 0, len(indices))

		for i := range indices {
			name := ident.Expand(c.Name, i)
			fn := ident.Ident(name, config.FieldAccessor, formats, -1)

			out = append(out, slot{
				name:      name,
				offset:    c.AddressOffset + uint(i)*dim.DimIncrement,
				sizeBytes: block.SizeBytes,
				decl:      fmt.Sprintf("pub %s: %s", fn, fullTypeName),
				comment:   describe(c.Description, c.Name),
			})
		}

		return out, modules, nil
	}

	fieldName := ident.Ident(strings.NewReplacer("[%s]", "", "%s", "").Replace(c.Name), config.FieldAccessor, formats, -1)

	return []slot{{
		name:      c.Name,
		offset:    c.AddressOffset,
		sizeBytes: block.SizeBytes * dim.Dim,
		decl:      fmt.Sprintf("pub %s: [%s; %d]", fieldName, fullTypeName, dim.Dim),
		comment:   describe(c.Description, c.Name),
	}}, modules, nil
}

// Module is one nested source fragment produced while laying out a block
// recursively (a cluster's own RegisterBlock module).
type Module struct {
	Name     string
	Contents string
}

// Block is the result of laying out one RegisterBlock: the rendered field
// list (in final, gap-filled order) and the block's total byte size.
type Block struct {
	Fields    []string // fully rendered "    /// doc\n    pub x: T,\n" lines
	SizeBytes uint
}

// LayoutBlock sorts registers and clusters by offset, fills gaps with
// reserved byte arrays, converts array-emittable entities to target-array
// fields, drops overlapping entries with a warning, and returns the
// resulting field list plus any nested cluster modules (spec §4.6).
func LayoutBlock(registers []*model.Register, clusters []*model.Cluster, blockPath model.BlockPath,
	idx *model.Index, formats config.IdentFormats, cfg config.Config, sink *diag.Sink) (Block, []Module, error) {
	var (
		slots   []slot
		modules []Module
	)

	for _, r := range registers {
		slots = append(slots, registerSlots(r, blockPath, idx, formats)...)
	}

	for _, c := range clusters {
		cs, mods, err := clusterSlots(c, blockPath, idx, formats, cfg, sink)
		if err != nil {
			return Block{}, nil, err
		}

		slots = append(slots, cs...)
		modules = append(modules, mods...)
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].offset < slots[j].offset })

	occupied := bitset.New(0)
	var fields []string
	var cur uint
	reservedN := 0

	for _, s := range slots {
		if s.offset < cur || rangeOccupied(occupied, s.offset, s.sizeBytes) {
			if sink != nil {
				sink.Warn(diag.New(diag.Overlap, blockPath.Child(s.name).String(),
					fmt.Sprintf("overlaps with another entry at offset 0x%x; dropped", s.offset)))
			}

			continue
		}

		if s.offset > cur {
			pad := s.offset - cur
			fields = append(fields, fmt.Sprintf("    _reserved%d: [u8; %d],", reservedN, pad))
			reservedN++
		}

		markOccupied(occupied, s.offset, s.sizeBytes)

		fields = append(fields, fmt.Sprintf("    /// 0x%02x - %s\n    %s,", s.offset, s.comment, s.decl))
		cur = s.offset + s.sizeBytes
	}

	return Block{Fields: fields, SizeBytes: cur}, modules, nil
}

// rangeOccupied and markOccupied track claimed byte offsets in a block
// using a bitset sized lazily to the highest offset seen so far (spec
// §4.6, overlap detection; SPEC_FULL.md domain stack, bitset for
// offset/overlap tracking).
func rangeOccupied(b *bitset.BitSet, offset, size uint) bool {
	for i := offset; i < offset+size; i++ {
		if b.Test(i) {
			return true
		}
	}

	return false
}

func markOccupied(b *bitset.BitSet, offset, size uint) {
	for i := offset; i < offset+size; i++ {
		b.Set(i)
	}
}

func renderClusterModule(typeName, description, rawName string, block Block) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "//! `%s` cluster register block.\n", rawName)
	fmt.Fprintf(&sb, "pub mod %s {\n", strings.ToLower(typeName))
	fmt.Fprintf(&sb, "    use super::super::generic;\n\n")
	fmt.Fprintf(&sb, "    /// %s\n", describe(description, rawName))
	sb.WriteString("    #[repr(C)]\n    pub struct " + typeName + " {\n")

	for _, f := range block.Fields {
		sb.WriteString(f)
		sb.WriteString("\n")
	}

	sb.WriteString("    }\n}\n")

	return sb.String()
}
