package catalog

import (
	"strings"

	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

// AllCategories matches every category in a Query
const AllCategories = "All"

// Query narrows a listing
type Query struct {
	// Search is matched case-insensitively against name and description
	Search string
	// Category must equal the summary category; empty or "All" matches any
	Category string
}

// Filter returns the summaries matching q, preserving order
func Filter(summaries []skilltypes.Summary, q Query) []skilltypes.Summary {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)
	anyCategory := category == "" || strings.EqualFold(category, AllCategories)

	filtered := make([]skilltypes.Summary, 0, len(summaries))
	for _, s := range summaries {
		if !anyCategory && !strings.EqualFold(string(s.Category), category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.Description), search) {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}
