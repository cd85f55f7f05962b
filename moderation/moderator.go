// Package moderation censors forbidden words in message content before it
// reaches the log or any connection.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator wraps an Aho-Corasick automaton built from a normalized wordlist.
// Matching runs on a normalized view of the input (lowercased, leet speak
// simplified, punctuation stripped) while replacement happens on the original
// runes, so spacing and casing around a censored span are preserved.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the automaton from the provided censored words.
func NewModerator(words []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, w := range words {
		patterns[i] = normalize([]rune(w), nil)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every matched span of the input with the replacement rune.
func (m *Moderator) Censor(original string) string {
	origRunes := []rune(original)
	origIdx := make([]int, 0, len(origRunes))
	normalized := normalize(origRunes, func(i int) { origIdx = append(origIdx, i) })
	if len(normalized) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			origRunes[i] = m.replacement
		}
	}
	return string(origRunes)
}

// normalize lowercases, undoes common leet substitutions, and drops noise
// runes. When keep is non-nil it records the original index of every rune
// that survives, so matches can be mapped back onto the input.
func normalize(input []rune, keep func(origIdx int)) []rune {
	out := make([]rune, 0, len(input))
	for i, r := range input {
		r = simplifyRune(r)
		if isNoise(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
		if keep != nil {
			keep(i)
		}
	}
	return out
}

// simplifyRune maps common leet speak characters back to letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies runes ignored during pattern matching.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
