package models

import (
	"time"
)

// CatalogEntry is the flattened metadata projection of one flashcard set,
// one row per set in the generated catalog.
type CatalogEntry struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Language    string   `yaml:"language" json:"language"`
	Level       string   `yaml:"level,omitempty" json:"level,omitempty"`
	Author      string   `yaml:"author" json:"author"`
	Topics      []string `yaml:"topics" json:"topics"`
	Module      string   `yaml:"module,omitempty" json:"module,omitempty"`
	CardCount   int      `yaml:"cardcount" json:"cardcount"`
	Filename    string   `yaml:"filename" json:"filename"`
}

// Catalog is a derived, rebuildable index over the global namespace. It has
// no independent source of truth and may be regenerated at any time from the
// full document collection without data loss.
type Catalog struct {
	GeneratedAt   time.Time      `yaml:"generatedAt" json:"generatedAt"`
	Total         int            `yaml:"total" json:"total"`
	FlashcardSets []CatalogEntry `yaml:"flashcard-sets" json:"flashcard-sets"`
}
