package models

import (
	"time"
)

// Document is the atomic storage unit: a named blob of YAML text within a
// store namespace. ID is derived from the filename (stem without extension)
// and is not guaranteed to equal the id field declared inside the content;
// reconciling the two is the repository's job.
type Document struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	Content      string     `json:"content"`
	ModifiedTime *time.Time `json:"modified_time,omitempty"`
}
