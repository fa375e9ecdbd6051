package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// requestIDPrefix tags IDs minted by this service so they're
// recognizable in logs and webhook payloads shared with other systems.
const requestIDPrefix = "ecg-"

// GenerateRequestID returns a short, unique identifier for a single
// analysis request or batch iteration.
func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return requestIDPrefix + "unknown"
	}
	return requestIDPrefix + hex.EncodeToString(b)
}
