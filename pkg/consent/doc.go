// Package consent implements the session consent handshake artifacts.
//
// A session only becomes active after the operator explicitly accepts the
// mode contract. Acceptance is recorded as a Permissioned Mode Ticket (PMT):
// a compact, HMAC-SHA256 signed token binding the session ID, the accepted
// mode, the allocated risk budget, and an expiry. The engine verifies the
// ticket on every exchange; a missing, tampered, or expired ticket
// terminates the session path before any budget evaluation happens.
//
// Tickets are bearer artifacts scoped to a single session. They are signed,
// not encrypted: the claims are visible to the holder, which is intentional
// because the operator is the party who granted them.
package consent
