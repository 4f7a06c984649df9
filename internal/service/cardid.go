package service

import (
	"fmt"
	"strings"
)

const cardIDPrefixLen = 3

// cardIDPrefix derives the 3-character prefix for synthesized card IDs:
// the first alphanumeric characters of the lowercased set ID, padded with
// 'x' when the ID is too short.
func cardIDPrefix(setID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(setID) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == cardIDPrefixLen {
				break
			}
		}
	}
	prefix := b.String()
	for len(prefix) < cardIDPrefixLen {
		prefix += "x"
	}
	return prefix
}

// synthesizeCardID builds a deterministic card ID from the set ID and the
// card's 1-based position, e.g. set "three-states" card 1 -> "thr001".
func synthesizeCardID(setID string, position int) string {
	return fmt.Sprintf("%s%03d", cardIDPrefix(setID), position)
}
