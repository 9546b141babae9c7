package extractor

import (
	"strings"
	"unicode"
)

// Clean normalizes a raw extracted string: any run of whitespace (newlines
// included) collapses to a single space, other non-printable characters are
// dropped, and the result is trimmed. Clean is pure and idempotent.
func Clean(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	prevSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}

	return strings.TrimSpace(sb.String())
}

// cleanAll cleans every unit and drops the ones that come out empty,
// preserving input order.
func cleanAll(units []string) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		if c := Clean(u); c != "" {
			out = append(out, c)
		}
	}
	return out
}
