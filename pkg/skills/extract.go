package skills

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

const (
	// MaxNameLength caps normalised skill names
	MaxNameLength = 50
	// MaxDescriptionLength caps stored descriptions, in runes
	MaxDescriptionLength = 200
)

var disallowedNameChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// ExtractField returns the trimmed remainder of the first line that starts
// with "label:". Matching is case-sensitive and the metadata block is not
// parsed, so delimiters and nesting are ignored.
func ExtractField(content, label string) (string, bool) {
	prefix := label + ":"
	for line := range strings.SplitSeq(content, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

// NormalizeName maps every character outside [a-zA-Z0-9-] to '-', lower
// cases the result and caps it at MaxNameLength.
func NormalizeName(name string) string {
	name = disallowedNameChars.ReplaceAllString(name, "-")
	name = strings.ToLower(name)
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	return name
}

// FallbackName returns a random "skill-xxxxxx" name
func FallbackName() string {
	return "skill-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// TruncateDescription caps a description at MaxDescriptionLength runes
func TruncateDescription(description string) string {
	if utf8.RuneCountInString(description) <= MaxDescriptionLength {
		return description
	}
	runes := []rune(description)
	return string(runes[:MaxDescriptionLength])
}

// Fields holds the metadata extracted from generated content
type Fields struct {
	Name        string
	Description string
	Category    skilltypes.Category
}

// ExtractFields pulls name, description and category out of generated
// content, applying normalisation and fallbacks. A missing name yields a
// random fallback name; an unknown or missing category stays empty.
func ExtractFields(content string) Fields {
	var f Fields

	name, ok := ExtractField(content, "name")
	if !ok || name == "" {
		name = FallbackName()
	}
	f.Name = NormalizeName(name)

	if description, ok := ExtractField(content, "description"); ok {
		f.Description = TruncateDescription(description)
	}

	if category, ok := ExtractField(content, "category"); ok {
		if c, valid := skilltypes.ParseCategory(category); valid {
			f.Category = c
		}
	}

	return f
}
