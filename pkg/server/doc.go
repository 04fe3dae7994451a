// Package server provides the HTTP API for the governance engine.
//
// # Endpoints
//
//	GET    /                         service status
//	POST   /v1/sessions              create a session (returns the mode contract)
//	GET    /v1/sessions/{id}         session status
//	POST   /v1/sessions/{id}/consent accept or decline the mode contract
//	POST   /v1/sessions/{id}/chat    submit an exchange
//	POST   /v1/sessions/{id}/mode    change mode (requires the new mode's consent phrase)
//	POST   /v1/sessions/{id}/topup   add budget
//	GET    /v1/sessions/{id}/export  export the audit trail (json, csv, markdown)
//	DELETE /v1/sessions/{id}         end the session
//	GET    /healthz                  liveness check
//	GET    /metrics                  Prometheus metrics (when enabled)
//
// Errors are returned as a JSON envelope with a stable code string.
// A denied exchange is not an error: it returns 200 with the decision
// and a zero charge, since warn-and-admit or deny-on-empty-budget are
// ordinary governance outcomes rather than failures.
package server
