package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// MaxDigestSize caps how many bytes of a prompt are digested. Limiting
	// the input keeps digesting cheap for pathological inputs while still
	// giving a stable audit identifier.
	MaxDigestSize = 1024 * 1024 // 1MB
)

// PromptDigest returns the hex-encoded SHA-256 digest of a prompt. The
// digest is the only representation of prompt content that ever reaches
// the audit trail.
//
// Returns an empty string for an empty prompt.
func PromptDigest(prompt string) string {
	if prompt == "" {
		return ""
	}

	content := []byte(prompt)
	if len(content) > MaxDigestSize {
		content = content[:MaxDigestSize]
	}

	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
