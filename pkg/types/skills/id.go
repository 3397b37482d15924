package skills

import (
	"encoding/base64"
	"regexp"

	"github.com/google/uuid"
)

const (
	// IDLength is the length of generated record identifiers
	IDLength = 10
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// GenerateID returns a fresh URL-safe identifier of IDLength characters.
// Collisions are not checked here.
func GenerateID() string {
	return RandomToken(IDLength)
}

// RandomToken returns n URL-safe random characters, n <= 21.
func RandomToken(n int) string {
	u := uuid.New()
	s := base64.RawURLEncoding.EncodeToString(u[:])
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// ValidID reports whether id is safe to use as a storage key
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
