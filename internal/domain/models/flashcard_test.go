package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashcardSetRoundTrip(t *testing.T) {
	set := &FlashcardSet{
		ID:          "german_articles_b1",
		Author:      "ommiquiz",
		Title:       "German Articles",
		Description: "Der, die, das practice",
		CreateDate:  "2025-03-14",
		Language:    "de",
		Level:       "B1",
		Topics:      []string{"grammar", "articles"},
		Keywords:    []string{"der", "die", "das"},
		Flashcards: []Card{
			{
				ID:       "ger001",
				Question: "Which article goes with 'Haus'?",
				Type:     CardTypeSingle,
				Answer:   "das",
			},
			{
				ID:       "ger002",
				Question: "Which of these nouns are feminine?",
				Type:     CardTypeMultiple,
				Answers:  []string{"die Tür", "die Lampe"},
			},
		},
	}

	content, err := set.Serialize()
	require.NoError(t, err)

	parsed, err := ParseFlashcardSet(content)
	require.NoError(t, err)
	assert.Equal(t, set, parsed)
}

func TestParseFlashcardSetRejectsNonMapping(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty document", ""},
		{"scalar", "just a string"},
		{"sequence", "- one\n- two\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlashcardSet(tt.content)
			assert.Error(t, err)
		})
	}
}
