// Package assemble implements the Artifact Assembler (spec §4.8): it owns
// a tree of (path, contents) fragments appended exactly once by the
// emitters, and produces the final emission bundle plus the optional
// linker-fragment/build-script sidecar outputs. No disk I/O is performed
// here; writing the bundle to disk is the caller's responsibility (spec
// §6).
package assemble

import "sort"

// File is one emitted source file: a relative path plus its full text
// contents.
type File struct {
	Path     string
	Contents string
}

// Bundle is the root of the emitted module tree (spec §4.8, "Ownership of
// emitted code fragments": the assembler owns a tree of (name,
// description, contents, children) nodes; emitters produce fragments that
// are appended exactly once; no back-edges).
type Bundle struct {
	files []File
	seen  map[string]bool

	// LinkerFragment holds the `device.x`-style sidecar, empty when the
	// target has none (spec §4.7/§6).
	LinkerFragment string
	// BuildScript holds the build-script body emitted alongside a
	// non-empty LinkerFragment, empty otherwise.
	BuildScript string
}

// NewBundle constructs an empty emission bundle.
func NewBundle() *Bundle {
	return &Bundle{seen: map[string]bool{}}
}

// Add appends one fragment to the bundle. It panics if the same path is
// added twice, enforcing the "appended exactly once, no back-edges"
// invariant from spec §4.8/§9 — a programming error in an emitter, not a
// condition a well-formed SVD can trigger.
func (b *Bundle) Add(path, contents string) {
	if b.seen[path] {
		panic("assemble: fragment already emitted for path " + path)
	}

	b.seen[path] = true
	b.files = append(b.files, File{Path: path, Contents: contents})
}

// Files returns every emitted fragment, sorted by path for deterministic
// output (spec §8, emission determinism).
func (b *Bundle) Files() []File {
	out := make([]File, len(b.files))
	copy(out, b.files)

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out
}
