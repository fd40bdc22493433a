// Package resolve matches spoken device names against registry snapshots.
//
// Speech transcription mangles device names: dropped letters, wrong plurals,
// reordered words. The resolver scores a spoken target against every alias
// of every device in a snapshot — an even blend of token overlap and edit
// similarity — and classifies the best score against two thresholds. At or
// above the accept threshold the match is taken automatically; in the band
// between suggest and accept the near-miss is offered back as a "did you
// mean"; below suggest the command fails outright rather than acting on a
// wild guess.
//
// Resolution is deterministic for a given snapshot: exact alias matches win
// outright, ties prefer the device seen most recently, and the snapshot's
// ID ordering settles anything left.
package resolve
