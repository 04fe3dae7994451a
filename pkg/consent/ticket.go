package consent

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"oecs-hq/lusaka/pkg/modes"
)

// minSecretLen is the minimum accepted signing secret length in bytes.
const minSecretLen = 16

// Claims are the facts a consent ticket attests to.
type Claims struct {
	// SessionID is the session the ticket is scoped to
	SessionID string `json:"session_id"`

	// Mode is the mode the operator accepted
	Mode modes.Mode `json:"mode"`

	// Allocated is the risk budget granted at handshake time
	Allocated float64 `json:"allocated"`

	// IssuedAt is when the ticket was signed
	IssuedAt time.Time `json:"issued_at"`

	// ExpiresAt is the end of the validity window.
	// The zero value means the ticket does not expire.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expires reports whether the ticket carries an expiry.
func (c *Claims) Expires() bool {
	return !c.ExpiresAt.IsZero()
}

// Signer issues and verifies consent tickets with a shared HMAC-SHA256 key.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer from the configured secret.
func NewSigner(secret string) (*Signer, error) {
	if len(secret) < minSecretLen {
		return nil, &KeyError{
			Message: fmt.Sprintf("secret must be at least %d bytes, got %d", minSecretLen, len(secret)),
		}
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Issue signs the claims into a compact ticket string.
// The format is base64url(claims JSON) + "." + base64url(HMAC-SHA256).
func (s *Signer) Issue(claims *Claims) (string, error) {
	if claims == nil {
		return "", NewInvalidTicketError("claims cannot be nil")
	}
	if claims.SessionID == "" {
		return "", NewInvalidTicketError("session_id is required")
	}
	if _, err := modes.Parse(string(claims.Mode)); err != nil {
		return "", NewInvalidTicketError(fmt.Sprintf("unknown mode %q", claims.Mode))
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + s.sign(encoded), nil
}

// Verify checks the ticket's signature and validity window and returns its
// claims. Expiry is evaluated against the supplied clock time so callers
// control the reference instant.
func (s *Signer) Verify(ticket string, now time.Time) (*Claims, error) {
	encoded, sig, ok := strings.Cut(ticket, ".")
	if !ok || encoded == "" || sig == "" {
		return nil, NewInvalidTicketError("malformed ticket")
	}

	// Constant-time signature comparison
	if !hmac.Equal([]byte(sig), []byte(s.sign(encoded))) {
		return nil, NewInvalidTicketError("signature mismatch")
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, NewInvalidTicketError("payload is not valid base64url")
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, NewInvalidTicketError("payload is not valid claims JSON")
	}
	if claims.SessionID == "" {
		return nil, NewInvalidTicketError("session_id is required")
	}

	if claims.Expires() && now.After(claims.ExpiresAt) {
		return nil, NewExpiredTicketError(claims.ExpiresAt)
	}

	return &claims, nil
}

// sign computes the base64url HMAC-SHA256 of the encoded payload.
func (s *Signer) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
