package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const userIDHashLen = 16

// HashUserID returns a short stable identifier for a caller-supplied user ID
// so logs can correlate requests without storing the raw value.
func HashUserID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:userIDHashLen]
}
