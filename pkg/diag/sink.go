package diag

import (
	log "github.com/sirupsen/logrus"
)

// Sink is a side channel for warnings (spec §7). Warnings accumulate here
// as they are discovered and are flushed through the configured logger
// regardless of whether the run ultimately succeeds or fails. When Strict
// is set, every warning recorded here should instead have been raised as a
// fatal error by the caller; Sink itself does not enforce that — callers
// consult Strict before deciding whether to call Warn or return a fatal
// Diagnostic.
type Sink struct {
	// Strict promotes warnings to errors at the call site (spec §7,
	// "Validation mode"). Sink only exposes the flag; the promotion
	// decision is made by whoever is about to call Warn.
	Strict bool
	// items accumulates every warning recorded during a run, in the order
	// they were observed.
	items []*Diagnostic
}

// NewSink constructs an empty warning sink.
func NewSink(strict bool) *Sink {
	return &Sink{Strict: strict}
}

// Warn records a warning. Callers should check Strict first and return the
// diagnostic as a fatal error instead of calling Warn when it is set.
func (s *Sink) Warn(d *Diagnostic) {
	s.items = append(s.items, d)
}

// Warnings returns every warning recorded so far, in discovery order.
func (s *Sink) Warnings() []*Diagnostic {
	return s.items
}

// Flush logs every accumulated warning through logrus and clears the sink.
// This is called unconditionally at the end of a run, whether it succeeded
// or aborted on a fatal error.
func (s *Sink) Flush() {
	for _, d := range s.items {
		log.WithField("path", d.Path()).WithField("kind", d.Kind().String()).Warn(d.Message())
	}

	s.items = nil
}
