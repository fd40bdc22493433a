package resolve

import (
	"strings"

	"github.com/voxhaus/voxhaus-core/internal/registry"
)

// Match is one scored candidate from a resolution pass.
type Match struct {
	Record registry.DeviceRecord
	Score  float64
}

// Result is the outcome of resolving a spoken target against a snapshot.
//
// Exactly one of three shapes: Resolved with a Best match at or above the
// accept threshold; not resolved with a Suggestion when the best candidate
// landed in the suggest band; or neither when nothing came close.
type Result struct {
	Resolved bool

	// Best is the top-scoring candidate; nil when no candidate reached
	// the suggest threshold.
	Best *Match

	// Candidates holds every match at or above the suggest threshold,
	// best first. Useful for diagnostics and the advisory.
	Candidates []Match

	// Suggestion is the display name of the near-miss offered back to the
	// user when resolution failed but something scored close.
	Suggestion string
}

// Resolver matches free-form spoken device names against registry snapshots.
//
// A Resolver is stateless apart from its thresholds; the same instance may
// be shared across goroutines.
type Resolver struct {
	accept  float64
	suggest float64
}

// New creates a resolver with the given score thresholds. accept is the
// minimum score for an automatic match; suggest is the minimum for offering
// a "did you mean" candidate back instead.
func New(accept, suggest float64) *Resolver {
	return &Resolver{accept: accept, suggest: suggest}
}

// Resolve scores the spoken target against every device in the snapshot and
// classifies the best candidate against the thresholds.
//
// An exact alias match wins outright regardless of what else scores well.
// Ties on score prefer the record seen most recently; the snapshot's ID
// ordering makes the remaining tie-break deterministic.
func (r *Resolver) Resolve(snap *registry.Snapshot, target string) Result {
	normalized := registry.Normalize(target)
	if normalized == "" || snap == nil || snap.Len() == 0 {
		return Result{}
	}
	targetTokens := registry.Tokens(normalized)

	var candidates []Match
	for _, rec := range snap.Devices {
		if rec.HasAlias(normalized) {
			m := Match{Record: rec, Score: 1}
			return Result{Resolved: true, Best: &m, Candidates: []Match{m}}
		}

		score := scoreRecord(rec, normalized, targetTokens)
		if score >= r.suggest {
			candidates = append(candidates, Match{Record: rec, Score: score})
		}
	}

	if len(candidates) == 0 {
		return Result{}
	}
	sortMatches(candidates)

	best := candidates[0]
	result := Result{Best: &best, Candidates: candidates}
	if best.Score >= r.accept {
		result.Resolved = true
	} else {
		result.Suggestion = best.Record.DisplayName
	}
	return result
}

// scoreRecord returns the record's best alias score against the target:
// an even blend of token overlap and whole-string edit similarity. Token
// overlap rewards matching words out of order; edit similarity rewards
// near-misses inside a word ("offic" vs "office").
func scoreRecord(rec registry.DeviceRecord, target string, targetTokens []string) float64 {
	var best float64
	for _, alias := range rec.Aliases {
		overlap := tokenOverlap(targetTokens, registry.Tokens(alias))
		similarity := editSimilarity(target, alias)
		if score := 0.5*overlap + 0.5*similarity; score > best {
			best = score
		}
	}
	return best
}

// tokenOverlap is the share of tokens the two names have in common,
// relative to the longer of the two.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, tok := range a {
		set[tok] = struct{}{}
	}
	shared := 0
	for _, tok := range b {
		if _, ok := set[tok]; ok {
			shared++
			delete(set, tok)
		}
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return float64(shared) / float64(longest)
}

// sortMatches orders candidates best first: score, then most recent
// LastSeen, then ID for determinism.
func sortMatches(matches []Match) {
	// Insertion sort; candidate lists are small.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matchLess(matches[j], matches[j-1]); j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}

func matchLess(a, b Match) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Record.LastSeen.Equal(b.Record.LastSeen) {
		return a.Record.LastSeen.After(b.Record.LastSeen)
	}
	return strings.Compare(a.Record.ID, b.Record.ID) < 0
}
