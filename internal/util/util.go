package util

import (
	"github.com/google/uuid"
)

// NewID returns a new random identifier for a room or hand
func NewID() string {
	return uuid.New().String()
}

// IsID returns true if the string is a well-formed identifier
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
