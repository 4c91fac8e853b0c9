package utils

import "github.com/google/uuid"

// GenerateSessionID generates a unique capture session ID
func GenerateSessionID() string {
	return uuid.NewString()
}
