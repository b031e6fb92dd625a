package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random (v4) UUID string
func GenerateID() string {
	return uuid.New().String()
}

// IsValidUUID checks if the string is a valid UUID
func IsValidUUID(u string) bool {
	_, err := uuid.Parse(u)
	return err == nil
}

// CanonicalUUID parses any accepted UUID form and returns the lowercase
// hyphenated form
func CanonicalUUID(u string) (string, bool) {
	id, err := uuid.Parse(u)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
