package providers

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "transport error with status",
			err:      &TransportError{Provider: "gemini", StatusCode: 503, Message: "overloaded"},
			contains: []string{"gemini", "503", "overloaded"},
		},
		{
			name:     "transport error without status",
			err:      &TransportError{Provider: "gemini", Message: "connection refused"},
			contains: []string{"gemini", "connection refused"},
		},
		{
			name:     "auth error",
			err:      &AuthError{Provider: "gemini", Message: "bad key"},
			contains: []string{"gemini", "authentication failed", "bad key"},
		},
		{
			name:     "rate limit with retry-after",
			err:      &RateLimitError{Provider: "gemini", RetryAfter: 30 * time.Second, Message: "slow down"},
			contains: []string{"gemini", "rate limit", "30s", "slow down"},
		},
		{
			name:     "timeout",
			err:      &TimeoutError{Provider: "gemini", Timeout: 5 * time.Second},
			contains: []string{"gemini", "timeout", "5s"},
		},
		{
			name:     "parse error",
			err:      &ParseError{Provider: "gemini", Cause: errors.New("unexpected EOF")},
			contains: []string{"gemini", "parse", "unexpected EOF"},
		},
		{
			name:     "validation error",
			err:      &ValidationError{Field: "turns", Message: "at least one turn is required"},
			contains: []string{"turns", "at least one turn"},
		},
		{
			name:     "config error",
			err:      &ConfigError{Provider: "gemini", Field: "api_key", Message: "required"},
			contains: []string{"gemini", "api_key", "required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("error message %q missing %q", msg, want)
				}
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")

	wrapped := fmt.Errorf("outer: %w", &TransportError{Provider: "gemini", Message: "x", Cause: cause})
	if !errors.Is(wrapped, cause) {
		t.Error("TransportError should unwrap to its cause")
	}

	parseErr := &ParseError{Provider: "gemini", Cause: cause}
	if !errors.Is(parseErr, cause) {
		t.Error("ParseError should unwrap to its cause")
	}
}
