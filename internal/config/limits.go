package config

const (
	// MaxUploadBytes is the maximum size for an uploaded flashcard YAML
	// file. Real sets are a few hundred KB at most; 5 MB leaves room for
	// embedded base64 card images.
	MaxUploadBytes = 5 << 20

	// MaxFlashcardIDLength is the maximum length for a flashcard set ID.
	// IDs become filenames, so they stay well under filesystem name limits.
	MaxFlashcardIDLength = 128

	// SpeedQuizCardCount is the number of cards sampled into a printable
	// speed-quiz sheet.
	SpeedQuizCardCount = 12

	// RecentSessionLimit is the number of quiz sessions returned with a
	// progress record, newest first.
	RecentSessionLimit = 20

	// DefaultReportDays is the trailing period for learning reports when
	// the caller does not specify one.
	DefaultReportDays = 30
)
