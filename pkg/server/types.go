package server

import (
	"encoding/json"
	"net/http"

	"oecs-hq/lusaka/pkg/audit"
	"oecs-hq/lusaka/pkg/govern"
)

// createSessionRequest is the body for POST /v1/sessions.
type createSessionRequest struct {
	// Allocation is the risk budget for the session. Zero uses the
	// configured default.
	Allocation float64 `json:"allocation,omitempty"`

	// Mode names the governing mode. Empty uses the configured default.
	Mode string `json:"mode,omitempty"`
}

// createSessionResponse is the body for a created session.
type createSessionResponse struct {
	SessionID string        `json:"session_id"`
	State     string        `json:"state"`
	Mode      string        `json:"mode"`
	Contract  string        `json:"contract"`
	Balance   audit.Balance `json:"balance"`
}

// consentRequest is the body for POST /v1/sessions/{id}/consent.
type consentRequest struct {
	// Input is the verbatim consent phrase, e.g. "ACCEPT EXPLORATORY",
	// or "DECLINE".
	Input string `json:"input"`
}

// consentResponse carries the signed ticket after acceptance.
type consentResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Ticket    string `json:"ticket,omitempty"`
}

// chatRequest is the body for POST /v1/sessions/{id}/chat.
type chatRequest struct {
	Prompt string `json:"prompt"`
}

// modeChangeRequest is the body for POST /v1/sessions/{id}/mode.
type modeChangeRequest struct {
	Mode string `json:"mode"`

	// Input is the consent phrase for the new mode.
	Input string `json:"input"`
}

// topUpRequest is the body for POST /v1/sessions/{id}/topup.
type topUpRequest struct {
	Amount float64 `json:"amount"`
}

// topUpResponse reports the balance after a top-up.
type topUpResponse struct {
	SessionID string        `json:"session_id"`
	State     string        `json:"state"`
	Balance   audit.Balance `json:"balance"`
}

// statusResponse is the body for GET / and GET /v1/sessions/{id}.
type statusResponse struct {
	Service  string `json:"service"`
	Model    string `json:"model"`
	Sessions int    `json:"sessions"`
}

// sessionStatusResponse wraps govern.Status for the wire.
type sessionStatusResponse struct {
	govern.Status
}

// errorEnvelope is the JSON error body for every non-2xx response.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	// Code is a stable machine-readable identifier.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error codes returned in the envelope.
const (
	codeInvalidRequest   = "invalid_request"
	codeNotFound         = "session_not_found"
	codeSessionLimit     = "session_limit"
	codeInvalidState     = "invalid_state"
	codeConsentRequired  = "consent_required"
	codeTransportFailure = "transport_failure"
	codeInternal         = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}
