package models

import (
	"errors"

	"gopkg.in/yaml.v3"
)

// Card types
const (
	CardTypeSingle   = "single"
	CardTypeMultiple = "multiple"
)

// Card is a single question within a flashcard set. Answer is set for
// single-answer cards, Answers for multiple-answer cards. Bitmap optionally
// carries an image as URL, data URI, or raw base64.
type Card struct {
	ID       string   `yaml:"id,omitempty" json:"id,omitempty"`
	Question string   `yaml:"question" json:"question"`
	Type     string   `yaml:"type" json:"type"`
	Answer   string   `yaml:"answer,omitempty" json:"answer,omitempty"`
	Answers  []string `yaml:"answers,omitempty" json:"answers,omitempty"`
	Bitmap   string   `yaml:"bitmap,omitempty" json:"bitmap,omitempty"`
}

// FlashcardSet is the parsed form of a Document's YAML content.
type FlashcardSet struct {
	ID          string   `yaml:"id" json:"id"`
	Author      string   `yaml:"author" json:"author"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	CreateDate  string   `yaml:"createDate" json:"createDate"`
	Language    string   `yaml:"language" json:"language"`
	Level       string   `yaml:"level,omitempty" json:"level,omitempty"`
	Module      string   `yaml:"module,omitempty" json:"module,omitempty"`
	Topics      []string `yaml:"topics" json:"topics"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	Flashcards  []Card   `yaml:"flashcards" json:"flashcards"`
}

// CardCount returns the number of cards in the set.
func (s *FlashcardSet) CardCount() int {
	return len(s.Flashcards)
}

// Serialize renders the set back to YAML.
func (s *FlashcardSet) Serialize() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseFlashcardSet decodes YAML content into a FlashcardSet. The top-level
// value must be a mapping; scalars, sequences, and empty documents are
// rejected as malformed.
func ParseFlashcardSet(content string) (*FlashcardSet, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, errors.New("empty YAML document")
	}
	if root.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("top-level YAML value is not a mapping")
	}

	var set FlashcardSet
	if err := root.Decode(&set); err != nil {
		return nil, err
	}
	return &set, nil
}

// ValidationReport is the outcome of structural validation: the full list of
// errors and warnings, never just the first failure.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
