// Package discovery establishes the backend's capability profile.
//
// Different backend builds expose their service primitives under different
// naming conventions (bare "turn_on" versus a vendor prefix). Rather than
// hard-coding one, discovery probes the candidate prefixes once at startup
// and caches whichever the backend acknowledges. When no probe succeeds
// inside the budget, discovery degrades to the default convention with
// assumed confidence — dispatch keeps working and any mismatch surfaces as
// an invoke error instead of a startup failure.
//
// The cached profile is invalidated on transport reconnect, since the far
// end may have been upgraded while away.
package discovery
