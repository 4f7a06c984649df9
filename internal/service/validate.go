package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"ommiquiz/internal/config"
	"ommiquiz/internal/domain/models"
)

// flashcardIDPattern constrains set IDs to filename- and URL-safe values.
var flashcardIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validFlashcardID applies the ID format and length rules used for path
// and declared IDs alike.
func validFlashcardID(id string) bool {
	return len(id) <= config.MaxFlashcardIDLength && flashcardIDPattern.MatchString(id)
}

var (
	httpImagePattern = regexp.MustCompile(`(?i)^https?://\S+\.(png|jpe?g|gif|svg|webp)$`)
	dataURIPattern   = regexp.MustCompile(`^data:image/[A-Za-z0-9.+-]+;base64,[A-Za-z0-9+/=]+$`)
)

// Advisory allow-lists. A set in another language or level still
// validates; it just carries a warning so authors catch typos.
var knownLanguages = map[string]struct{}{
	"de": {}, "en": {}, "fr": {}, "es": {}, "it": {},
	"pt": {}, "nl": {}, "pl": {}, "ru": {}, "tr": {},
}

var knownLevels = map[string]struct{}{
	"A1": {}, "A2": {}, "B1": {}, "B2": {}, "C1": {}, "C2": {},
}

// ensureCardIDs assigns a deterministic ID to every card that lacks one
// and reports each assignment as a warning. Runs before structural
// validation so a missing card ID never surfaces as an error.
func ensureCardIDs(set *models.FlashcardSet) []string {
	var warnings []string
	for i := range set.Flashcards {
		if set.Flashcards[i].ID != "" {
			continue
		}
		set.Flashcards[i].ID = synthesizeCardID(set.ID, i+1)
		warnings = append(warnings, fmt.Sprintf("card %d: missing id, assigned %q", i+1, set.Flashcards[i].ID))
	}
	return warnings
}

// validateSet runs full structural validation, collecting every error and
// warning instead of stopping at the first failure.
func validateSet(set *models.FlashcardSet) *models.ValidationReport {
	report := &models.ValidationReport{
		Errors:   []string{},
		Warnings: []string{},
	}

	err := validation.ValidateStruct(set,
		validation.Field(&set.ID,
			validation.Required,
			validation.Length(0, config.MaxFlashcardIDLength),
			validation.Match(flashcardIDPattern).Error("must contain only letters, digits, underscores, and hyphens"),
		),
		validation.Field(&set.Author, validation.Required),
		validation.Field(&set.Title, validation.Required),
		validation.Field(&set.Description, validation.Required),
		validation.Field(&set.CreateDate, validation.Required),
		validation.Field(&set.Language, validation.Required),
		validation.Field(&set.Topics, validation.Required),
		validation.Field(&set.Keywords, validation.Required),
		validation.Field(&set.Flashcards, validation.Required),
	)
	report.Errors = append(report.Errors, flattenValidationErrors(err)...)

	if set.Language != "" {
		if _, ok := knownLanguages[strings.ToLower(set.Language)]; !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("unknown language %q", set.Language))
		}
	}
	if set.Level != "" {
		if _, ok := knownLevels[strings.ToUpper(set.Level)]; !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("unknown level %q", set.Level))
		}
	}

	seenQuestions := make(map[string]int)
	for i := range set.Flashcards {
		card := &set.Flashcards[i]
		prefix := fmt.Sprintf("card %d", i+1)

		cardErr := validation.ValidateStruct(card,
			validation.Field(&card.Question, validation.Required),
			validation.Field(&card.Type,
				validation.Required,
				validation.In(models.CardTypeSingle, models.CardTypeMultiple).Error("must be single or multiple"),
			),
		)
		for _, msg := range flattenValidationErrors(cardErr) {
			report.Errors = append(report.Errors, prefix+": "+msg)
		}

		switch card.Type {
		case models.CardTypeSingle:
			if strings.TrimSpace(card.Answer) == "" {
				report.Errors = append(report.Errors, prefix+": single-answer card requires an answer")
			}
		case models.CardTypeMultiple:
			if len(card.Answers) == 0 {
				report.Errors = append(report.Errors, prefix+": multiple-answer card requires an answers list")
			}
		}

		if card.Bitmap != "" {
			if msg := validateBitmap(card.Bitmap); msg != "" {
				report.Errors = append(report.Errors, prefix+": "+msg)
			}
		}

		if q := strings.TrimSpace(card.Question); q != "" {
			seenQuestions[q]++
		}
	}

	for question, count := range seenQuestions {
		if count > 1 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("duplicate question %q", question))
		}
	}
	sort.Strings(report.Warnings)

	report.Valid = len(report.Errors) == 0
	return report
}

// validateBitmap accepts an HTTP(S) image URL, a data:image/... base64
// URI, or a raw base64 payload. Returns the error message, or "" when the
// value is acceptable.
func validateBitmap(bitmap string) string {
	if httpImagePattern.MatchString(bitmap) {
		return ""
	}
	if strings.HasPrefix(bitmap, "data:") {
		if dataURIPattern.MatchString(bitmap) {
			return ""
		}
		return "bitmap data URI is malformed"
	}
	compact := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, bitmap)
	if _, err := base64.StdEncoding.DecodeString(compact); err == nil {
		return ""
	}
	return "bitmap must be an image URL, a data:image URI, or base64 content"
}

// flattenValidationErrors turns an ozzo error into deterministic
// "field: message" strings, sorted by field.
func flattenValidationErrors(err error) []string {
	if err == nil {
		return nil
	}
	var ve validation.Errors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(ve))
	for field := range ve {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, fmt.Sprintf("%s: %v", field, ve[field]))
	}
	return out
}
