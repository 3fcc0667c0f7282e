package model

import (
	"fmt"

	"github.com/svdgen/svdgen/pkg/diag"
)

// EffectiveRegister bundles a declared Register with its fully-inherited
// size/reset/access, resolved by walking Register -> Cluster chain ->
// Peripheral -> Device defaults (spec §4.2, property expansion).
type EffectiveRegister struct {
	Path       RegisterPath
	Reg        *Register
	Peripheral *Peripheral
	// Chain holds the cluster chain from outermost to innermost enclosing
	// this register, empty if the register is declared directly on the
	// peripheral.
	Chain []*Cluster
	// SizeBits is the inherited register width in bits.
	SizeBits uint
	// Access is the inherited declared access (register/cluster/
	// peripheral/device chain only — field-level inference is the Access
	// & Safety Analyzer's job, spec §4.3).
	Access Access
	// HasReset is false when no reset value was ever declared for this
	// register at any level of the chain.
	HasReset   bool
	ResetValue uint64
}

// Index is the normalized, read-only view over a Device produced by
// BuildIndex (spec §4.2). It is built once and consumed immutably by every
// downstream component (spec §5).
type Index struct {
	device       *Device
	peripherals  map[string]*Peripheral
	registers    map[string]*EffectiveRegister
	registersOf  map[string][]*EffectiveRegister // keyed by BlockPath string, declaration order
	enums        map[string]*EnumeratedValues
}

// Device returns the root Device this index was built from.
func (ix *Index) Device() *Device { return ix.device }

// Peripherals returns every peripheral in declaration order.
func (ix *Index) Peripherals() []*Peripheral {
	return ix.device.Peripherals
}

// Peripheral looks up a peripheral by its declared (raw) name.
func (ix *Index) Peripheral(name string) (*Peripheral, bool) {
	p, ok := ix.peripherals[name]
	return p, ok
}

// ResolvedPeripheral follows a peripheral's DerivedFrom chain (if any) and
// returns the base peripheral that actually owns structure: registers,
// clusters, interrupts not overridden locally. Returns p itself when p is
// not derived.
func ResolvedPeripheral(p *Peripheral) *Peripheral {
	if p.resolved != nil {
		return p.resolved
	}

	return p
}

// Register looks up the effective (inheritance-resolved) register at the
// given path.
func (ix *Index) Register(path RegisterPath) (*EffectiveRegister, bool) {
	r, ok := ix.registers[path.String()]
	return r, ok
}

// Registers returns every effective register declared directly within the
// given block, in declaration order (ascending by declared position, not
// yet sorted by offset — that ordering is the Peripheral & Device
// Emitter's job, spec §4.6).
func (ix *Index) Registers(block BlockPath) []*EffectiveRegister {
	return ix.registersOf[block.String()]
}

// Evs looks up a named enumerated-value set by its qualified path.
func (ix *Index) Evs(path EnumPath) (*EnumeratedValues, bool) {
	e, ok := ix.enums[path.String()]
	return e, ok
}

// ResolvedEvs follows an EnumeratedValues' DerivedFrom chain (if any) and
// returns the base set that actually owns the Values slice.
func ResolvedEvs(e *EnumeratedValues) *EnumeratedValues {
	if e.resolved != nil {
		return e.resolved
	}

	return e
}

// BuildIndex normalizes a parsed Device into an Index (spec §4.2). It
// resolves derivedFrom links, propagates size/reset/access defaults
// downward, and validates the schema invariants in spec §7 that are fatal
// (missing size, missing reset on a writable register, unresolvable
// derivedFrom, a field exceeding its register's width, an enumerated value
// exceeding its field's width). Warnings (missing description) are
// recorded on sink rather than aborting the build. Field names are not
// checked for collisions after sanitization, here or at emission time.
func BuildIndex(device *Device, sink *diag.Sink) (*Index, error) {
	ix := &Index{
		device:      device,
		peripherals: map[string]*Peripheral{},
		registers:   map[string]*EffectiveRegister{},
		registersOf: map[string][]*EffectiveRegister{},
		enums:       map[string]*EnumeratedValues{},
	}

	for _, p := range device.Peripherals {
		ix.peripherals[p.Name] = p
	}

	if err := ix.resolveDerivedPeripherals(); err != nil {
		return nil, err
	}

	for _, p := range device.Peripherals {
		base := ResolvedPeripheral(p)
		block := BlockPath{Peripheral: p.Name}

		if err := ix.walkBlock(p, base.Registers, base.Clusters, block, nil, device.Defaults.Size,
			device.Defaults.Reset, device.Defaults.Access); err != nil {
			return nil, err
		}
	}

	if err := ix.resolveEnums(); err != nil {
		return nil, err
	}

	if sink != nil {
		ix.collectMissingDescriptions(sink)
	}

	return ix, nil
}

// resolveDerivedPeripherals resolves every peripheral's DerivedFrom link to
// a direct pointer reference, detecting missing referents and derivation
// cycles (spec §4.2, "Failure").
func (ix *Index) resolveDerivedPeripherals() error {
	for _, p := range ix.device.Peripherals {
		if p.DerivedFrom == "" {
			continue
		}

		visited := map[string]bool{p.Name: true}
		cur := p

		for cur.DerivedFrom != "" {
			next, ok := ix.peripherals[cur.DerivedFrom]
			if !ok {
				return diag.New(diag.Schema, p.Name,
					fmt.Sprintf("derivedFrom %q does not exist", cur.DerivedFrom))
			}

			if visited[next.Name] {
				return diag.New(diag.Schema, p.Name,
					fmt.Sprintf("derivedFrom cycle detected at %q", next.Name))
			}

			visited[next.Name] = true
			cur = next
		}

		p.resolved = cur
	}

	return nil
}

// walkBlock recursively indexes the registers and nested clusters of one
// block (a peripheral or a cluster), propagating inherited defaults
// downward (spec §4.2, property expansion: "first-non-absent wins").
func (ix *Index) walkBlock(p *Peripheral, registers []*Register, clusters []*Cluster, block BlockPath,
	chain []*Cluster, defSize *uint, defReset *uint64, defAccess Access) error {
	for _, r := range registers {
		eff, err := ix.resolveRegister(p, r, block, chain, defSize, defReset, defAccess)
		if err != nil {
			return err
		}

		key := RegisterPath{Block: block, Register: r.Name}.String()
		ix.registers[key] = eff
		ix.registersOf[block.String()] = append(ix.registersOf[block.String()], eff)
	}

	for _, c := range clusters {
		childBlock := block.Child(c.Name)
		childChain := append(append([]*Cluster{}, chain...), c)

		if err := ix.walkBlock(p, c.Registers, c.Clusters, childBlock, childChain, defSize, defReset, defAccess); err != nil {
			return err
		}
	}

	return nil
}

// resolveRegister computes one register's effective size/reset/access by
// walking Register -> Cluster chain -> Peripheral -> Device defaults,
// first-non-absent wins (spec §4.2).
func (ix *Index) resolveRegister(p *Peripheral, r *Register, block BlockPath, chain []*Cluster,
	defSize *uint, defReset *uint64, defAccess Access) (*EffectiveRegister, error) {
	path := RegisterPath{Block: block, Register: r.Name}

	size, sizeOK := firstSize(r.Size, defSize)
	if !sizeOK {
		return nil, diag.New(diag.Schema, path.String(), "missing size: no size declared on register, cluster, peripheral, or device")
	}

	access := r.Access
	if access == AccessUnspecified {
		access = defAccess
	}

	reset, hasReset := firstReset(r.ResetValue, defReset)

	if !hasReset && registerIsWritable(access, r.Fields) {
		return nil, diag.New(diag.Schema, path.String(), "missing reset value for a writable register")
	}

	if err := validateFields(path, r, size); err != nil {
		return nil, err
	}

	return &EffectiveRegister{
		Path:       path,
		Reg:        r,
		Peripheral: p,
		Chain:      chain,
		SizeBits:   size,
		Access:     access,
		HasReset:   hasReset,
		ResetValue: reset,
	}, nil
}

func firstSize(regSize, defSize *uint) (uint, bool) {
	if regSize != nil {
		return *regSize, true
	}

	if defSize != nil {
		return *defSize, true
	}

	return 0, false
}

func firstReset(regReset, defReset *uint64) (uint64, bool) {
	if regReset != nil {
		return *regReset, true
	}

	if defReset != nil {
		return *defReset, true
	}

	return 0, false
}

// registerIsWritable reports whether a register (given its declared/
// inherited access and its fields) can ever be written, and therefore
// requires a reset value. Absent access with read-only fields only is not
// writable; everything else is, matching the Access & Safety Analyzer's
// effective-access rule (spec §4.3) applied conservatively here (a register
// whose access is not yet known to be strictly read-only is treated as
// writable for the purpose of requiring a reset).
func registerIsWritable(access Access, fields []*Field) bool {
	switch access {
	case WriteOnly, ReadWrite:
		return true
	case ReadOnly:
		return false
	default:
		if len(fields) == 0 {
			return true
		}

		for _, f := range fields {
			if f.Access != ReadOnly {
				return true
			}
		}

		return false
	}
}

// validateFields checks the field-offset/width-vs-register-size invariant
// and pairwise non-overlap (spec §3, §8).
func validateFields(path RegisterPath, r *Register, sizeBits uint) error {
	type span struct{ lo, hi uint }

	var spans []span

	for _, f := range r.Fields {
		if f.BitWidth == 0 {
			return diag.New(diag.Schema, FieldPath{Register: path, Field: f.Name}.String(),
				"field has zero width")
		}

		if f.BitOffset+f.BitWidth > sizeBits {
			return diag.New(diag.Schema, FieldPath{Register: path, Field: f.Name}.String(),
				fmt.Sprintf("field exceeds register width: offset %d + width %d > size %d",
					f.BitOffset, f.BitWidth, sizeBits))
		}

		spans = append(spans, span{f.BitOffset, f.BitOffset + f.BitWidth})
	}

	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].lo < spans[j].hi && spans[j].lo < spans[i].hi {
				return diag.New(diag.Schema, path.String(),
					fmt.Sprintf("fields %q and %q overlap", r.Fields[i].Name, r.Fields[j].Name))
			}
		}
	}

	return nil
}

// resolveEnums indexes every EnumeratedValues set by its qualified path and
// resolves DerivedFrom references to direct pointers, validating that
// every value fits within its field's width.
func (ix *Index) resolveEnums() error {
	for path, eff := range ix.registers {
		for _, f := range eff.Reg.Fields {
			for _, evs := range f.EnumeratedValue {
				name := evs.Name
				ep := EnumPath{Field: FieldPath{Register: eff.Path, Field: f.Name}, Name: name}
				ix.enums[ep.String()] = evs

				if err := validateEnumValues(path, f, evs); err != nil {
					return err
				}
			}
		}
	}

	for _, evs := range ix.enums {
		if evs.DerivedFrom == "" {
			continue
		}

		base, ok := ix.enums[evs.DerivedFrom]
		if !ok {
			return diag.New(diag.Schema, evs.DerivedFrom, "derivedFrom enumeratedValues does not exist")
		}

		evs.resolved = base
	}

	return nil
}

func validateEnumValues(regPath string, f *Field, evs *EnumeratedValues) error {
	maxVal := uint64(1)<<f.BitWidth - 1

	for _, v := range evs.Values {
		if v.IsDefault || !v.HasValue {
			continue
		}

		if v.Value > maxVal {
			return diag.New(diag.Schema, regPath+"."+f.Name+"."+v.Name,
				fmt.Sprintf("enumerated value %d exceeds field width %d", v.Value, f.BitWidth))
		}
	}

	return nil
}

// collectMissingDescriptions records a MissingDescription warning for every
// peripheral and register lacking one (spec §7; fields are not checked); callers in strict mode
// promote these into fatal errors before calling BuildIndex's caller code
// path, since Sink itself does not enforce Strict.
func (ix *Index) collectMissingDescriptions(sink *diag.Sink) {
	for _, p := range ix.device.Peripherals {
		if p.Description == "" {
			sink.Warn(diag.New(diag.MissingDescription, p.Name, "substituted with entity name"))
		}
	}

	for key, eff := range ix.registers {
		if eff.Reg.Description == "" {
			sink.Warn(diag.New(diag.MissingDescription, key, "substituted with entity name"))
		}
	}
}
