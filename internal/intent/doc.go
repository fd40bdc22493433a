// Package intent maps spoken actions onto backend primitives.
//
// A spoken command carries a backend-agnostic action ("turn_on", "pause",
// "set_brightness") and an optional numeric value. The intent table turns
// the (action, device domain) pair into a concrete ActionSpec: which
// primitive to invoke, which fixed parameters to attach, and what range a
// numeric value must fall within.
//
// Domain-specific rows override universal defaults, so "turn_on" against a
// cover becomes "open_cover" while everything else keeps plain "turn_on".
// Lookups never guess: an unmapped pair is an explicit ErrUnsupportedAction
// and out-of-range values are rejected rather than clamped.
//
// The table is immutable after construction and safe for concurrent reads.
package intent
