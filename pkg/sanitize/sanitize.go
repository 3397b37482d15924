// Package sanitize cleans free-text user input before it is forwarded to
// the generation API.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

const (
	// MaxInputLength is the number of runes kept from the raw input
	MaxInputLength = 2000
	// MinPromptLength is the shortest sanitized prompt accepted for generation
	MinPromptLength = 10
)

// Matches a <script> element and its body up to the first closing tag.
var scriptBlock = regexp.MustCompile(`(?is)<script\b[^<]*(?:<[^<]*)*?</script\s*>`)

// Prompt truncates s to MaxInputLength runes, strips script blocks and
// every angle bracket, then trims surrounding whitespace.
func Prompt(s string) string {
	s = truncate(s, MaxInputLength)
	s = scriptBlock.ReplaceAllString(s, "")
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	return strings.TrimSpace(s)
}

// ValidatePrompt sanitizes raw and rejects results shorter than
// MinPromptLength with a validation error.
func ValidatePrompt(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", skills.ValidationError("Prompt is required.")
	}

	clean := Prompt(raw)
	if utf8.RuneCountInString(clean) < MinPromptLength {
		return "", skills.ValidationError("Please describe your skill in more detail (at least 10 characters).")
	}
	return clean, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
