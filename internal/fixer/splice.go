package fixer

import (
	"strings"
	"unicode"

	"github.com/gnolang/arrowlint/internal/jsast"
)

// Replacement is the text a single token is swapped for.
type Replacement struct {
	Text string
	// ConsumeFollowingSpace drops the whitespace run that starts the gap
	// after the token.
	ConsumeFollowingSpace bool
	// TrimPrecedingSpace drops whitespace already emitted before the token.
	TrimPrecedingSpace bool
}

// ReplacementPlan maps token start offsets to replacements.
type ReplacementPlan map[int]Replacement

// ReplaceTokens rebuilds the text covered by tokens. Text between tokens
// (whitespace and comments) is copied from orig unless a replacement asks
// for it to be dropped. Tokens without a replacement are copied as-is.
// A single trailing space is stripped from the result.
func ReplaceTokens(orig string, tokens []jsast.Token, plan ReplacementPlan) string {
	var b strings.Builder
	consumeNext := false
	lastEnd := -1

	for _, tok := range tokens {
		if lastEnd >= 0 {
			between := orig[lastEnd:tok.Start]
			if consumeNext {
				between = strings.TrimLeftFunc(between, unicode.IsSpace)
			}
			b.WriteString(between)
		}
		consumeNext = false

		if r, ok := plan[tok.Start]; ok {
			if r.TrimPrecedingSpace {
				trimmed := strings.TrimRightFunc(b.String(), unicode.IsSpace)
				b.Reset()
				b.WriteString(trimmed)
			}
			b.WriteString(r.Text)
			consumeNext = r.ConsumeFollowingSpace
		} else {
			b.WriteString(orig[tok.Start:tok.End])
		}
		lastEnd = tok.End
	}

	return strings.TrimSuffix(b.String(), " ")
}
