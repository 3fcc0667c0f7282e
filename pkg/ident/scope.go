package ident

import "fmt"

// Scope maintains identifier uniqueness within a single naming scope (spec
// §5, "Identifier uniqueness within a scope is maintained by the Naming
// Service via a local set"). A Scope is local to one register block, one
// enum, or one field's set of variants — wherever the emitters need
// collision-free names among siblings.
type Scope struct {
	seen map[string]int
}

// NewScope constructs an empty naming scope.
func NewScope() *Scope {
	return &Scope{seen: map[string]int{}}
}

// Claim returns name unchanged the first time it is seen in this scope; on
// a repeat, it appends a numeric suffix to disambiguate. Cross-scope
// collisions are not this type's concern — those are resolved by the
// Index's path qualification instead (spec §5).
func (s *Scope) Claim(name string) string {
	n := s.seen[name]
	s.seen[name] = n + 1

	if n == 0 {
		return name
	}

	return fmt.Sprintf("%s_%d", name, n)
}
