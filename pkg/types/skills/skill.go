// Package skills defines the skill artifact record, its summary projection,
// the category enumeration and the error taxonomy shared by the generation
// pipeline, the persistence layer and the HTTP surface.
package skills

import (
	"strings"
	"time"
)

// Category is the coarse grouping a skill belongs to
type Category string

// Known categories, mirrored in the generation system prompt
const (
	CategoryDev      Category = "Dev"
	CategoryDocs     Category = "Docs"
	CategoryTesting  Category = "Testing"
	CategorySecurity Category = "Security"
	CategoryDevOps   Category = "DevOps"
	CategoryData     Category = "Data"

	// DefaultCategory is reported for records that carry no category
	DefaultCategory = CategoryDev
)

// Categories lists every known category in display order
var Categories = []Category{
	CategoryDev,
	CategoryDocs,
	CategoryTesting,
	CategorySecurity,
	CategoryDevOps,
	CategoryData,
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// OrDefault returns the category, or DefaultCategory when it is empty
func (c Category) OrDefault() Category {
	if c == "" {
		return DefaultCategory
	}
	return c
}

// Record is a generated skill artifact as persisted in the library
type Record struct {
	ID          string    `json:"id" yaml:"id" db:"id" mapstructure:"id"`
	Name        string    `json:"name" yaml:"name" db:"name" mapstructure:"name"`
	Description string    `json:"description" yaml:"description" db:"description" mapstructure:"description"`
	Category    Category  `json:"category,omitempty" yaml:"category,omitempty" db:"category" mapstructure:"category"`
	Content     string    `json:"content" yaml:"content" db:"content" mapstructure:"content"`
	Prompt      string    `json:"prompt" yaml:"prompt" db:"prompt" mapstructure:"prompt"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt" db:"created_at" mapstructure:"createdAt"`
	Published   bool      `json:"published" yaml:"published" db:"published" mapstructure:"published"`
}

// Summary is the listing projection of a record
type Summary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

// ToSummary projects the record for listings, defaulting the category
func (r Record) ToSummary() Summary {
	return Summary{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category.OrDefault(),
	}
}

// Patch is a shallow set of field updates keyed by JSON field name
type Patch map[string]any
