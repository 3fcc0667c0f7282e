// Package model implements the SVD Semantic Model & Index (spec §4.2): an
// in-memory tree of Device -> Peripheral -> (Cluster ->)* Register -> Field
// -> EnumeratedValues with a global index keyed by fully qualified path,
// supporting derivedFrom resolution, property inheritance, and array
// expansion.
package model

import "strings"

// BlockPath identifies a register block: a peripheral, optionally followed
// by a chain of nested cluster names.
type BlockPath struct {
	Peripheral string
	Clusters   []string
}

// String renders the canonical, dot-separated qualified path.
func (p BlockPath) String() string {
	parts := append([]string{p.Peripheral}, p.Clusters...)
	return strings.Join(parts, ".")
}

// Child returns the BlockPath for a nested cluster of this block.
func (p BlockPath) Child(cluster string) BlockPath {
	clusters := make([]string, len(p.Clusters)+1)
	copy(clusters, p.Clusters)
	clusters[len(p.Clusters)] = cluster

	return BlockPath{Peripheral: p.Peripheral, Clusters: clusters}
}

// RegisterPath identifies a register: a block plus the register's own
// name.
type RegisterPath struct {
	Block    BlockPath
	Register string
}

// String renders the canonical, dot-separated qualified path.
func (p RegisterPath) String() string {
	return p.Block.String() + "." + p.Register
}

// FieldPath identifies a field within a register.
type FieldPath struct {
	Register RegisterPath
	Field    string
}

// String renders the canonical, dot-separated qualified path.
func (p FieldPath) String() string {
	return p.Register.String() + "." + p.Field
}

// EnumPath identifies a named enumerated-value set within a field. Name is
// empty for an anonymous (unnamed) set.
type EnumPath struct {
	Field FieldPath
	Name  string
}

// String renders the canonical, dot-separated qualified path.
func (p EnumPath) String() string {
	if p.Name == "" {
		return p.Field.String()
	}

	return p.Field.String() + "." + p.Name
}
