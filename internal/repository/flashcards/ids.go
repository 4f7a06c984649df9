package flashcards

import (
	"strings"
)

const userIDPrefixLen = 8

// GenerateUserFlashcardID builds a namespaced ID for a user-owned set,
// e.g. "user_abc12345_python_basics". The user ID is reduced to its first
// 8 alphanumeric characters: identity-provider subjects carry separators
// ("auth0|650f...") that must not leak into an identifier, and the prefix
// must stay a single underscore-delimited token.
func GenerateUserFlashcardID(userID, slug string) string {
	var b strings.Builder
	for _, r := range userID {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == userIDPrefixLen {
				break
			}
		}
	}
	return "user_" + b.String() + "_" + slug
}

// IsUserFlashcard reports whether an ID belongs to a user-owned set.
func IsUserFlashcard(flashcardID string) bool {
	return strings.HasPrefix(flashcardID, "user_")
}

// ExtractUserIDPrefix returns the 8-character user prefix embedded in a
// user flashcard ID, or "" when the ID does not follow the namespaced form.
func ExtractUserIDPrefix(flashcardID string) string {
	if !IsUserFlashcard(flashcardID) {
		return ""
	}
	parts := strings.Split(flashcardID, "_")
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

// Slugify lowers a title or declared ID into an identifier-safe slug:
// alphanumeric runs survive, everything else collapses into single
// underscores.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
