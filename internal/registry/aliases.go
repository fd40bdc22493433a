package registry

import (
	"sort"
	"strings"
	"unicode"
)

// Normalize converts a human-generated name into its canonical matching form:
// lower-cased, punctuation stripped, whitespace collapsed to single spaces.
//
// The same function is applied to display names when building aliases and to
// spoken targets when resolving, so both sides of a comparison always go
// through identical normalisation.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastSpace := true // trim leading space
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case r == ' ' || r == '_' || r == '-' || r == '.' || r == '/':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			// Other punctuation is dropped entirely ("kid's room" → "kids room")
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Tokens splits an already-normalised name into its word tokens.
func Tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// BuildAliases derives the alias set for a display name: the normalised name
// itself plus singular/plural token variants, so "office lights" matches a
// device registered as "Office Light" and vice versa.
//
// The result is sorted and de-duplicated.
func BuildAliases(displayName string) []string {
	base := Normalize(displayName)
	if base == "" {
		return nil
	}

	seen := map[string]struct{}{base: {}}

	tokens := Tokens(base)
	for i, tok := range tokens {
		for _, variant := range numberVariants(tok) {
			if variant == tok {
				continue
			}
			alias := joinReplacing(tokens, i, variant)
			seen[alias] = struct{}{}
		}
	}

	aliases := make([]string, 0, len(seen))
	for a := range seen {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	return aliases
}

// numberVariants returns singular/plural forms of a token, including the
// token itself. Only plain English "s"/"es" inflection is attempted; spoken
// device names rarely use anything richer.
func numberVariants(tok string) []string {
	variants := []string{tok}

	switch {
	case strings.HasSuffix(tok, "es") && len(tok) > 3:
		variants = append(variants, strings.TrimSuffix(tok, "es"), strings.TrimSuffix(tok, "s"))
	case strings.HasSuffix(tok, "s") && len(tok) > 2:
		variants = append(variants, strings.TrimSuffix(tok, "s"))
	default:
		variants = append(variants, tok+"s")
	}

	return variants
}

// joinReplacing rebuilds a token list into a name with tokens[i] replaced.
func joinReplacing(tokens []string, i int, replacement string) string {
	out := make([]string, len(tokens))
	copy(out, tokens)
	out[i] = replacement
	return strings.Join(out, " ")
}
