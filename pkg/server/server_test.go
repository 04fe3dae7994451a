package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"oecs-hq/lusaka/pkg/config"
	"oecs-hq/lusaka/pkg/consent"
	"oecs-hq/lusaka/pkg/govern"
	"oecs-hq/lusaka/pkg/providers"
	"oecs-hq/lusaka/pkg/session"
)

func newTestServer(t *testing.T, provider providers.Provider) *Server {
	t.Helper()

	signer, err := consent.NewSigner("server-test-secret-key")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	manager, err := session.NewManager(session.Config{
		Provider: provider,
		Signer:   signer,
		Model:    "gemini-1.5-pro",
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { _ = manager.Close() })

	cfg := config.NewDefault()
	cfg.Provider.APIKey = "test-key"
	cfg.Governance.ConsentSecret = "server-test-secret-key"

	return NewServer(cfg, manager, nil)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response: %v\nbody: %s", err, rec.Body.String())
	}
	return out
}

// createActiveSession creates a session and walks it through consent.
func createActiveSession(t *testing.T, handler http.Handler, mode string, allocation float64) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions", createSessionRequest{
		Allocation: allocation,
		Mode:       mode,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, body: %s", rec.Code, rec.Body.String())
	}
	created := decode[createSessionResponse](t, rec)

	rec = doJSON(t, handler, http.MethodPost, "/v1/sessions/"+created.SessionID+"/consent",
		consentRequest{Input: "ACCEPT " + mode})
	if rec.Code != http.StatusOK {
		t.Fatalf("consent status = %d, body: %s", rec.Code, rec.Body.String())
	}

	return created.SessionID
}

// ============================================================================
// Service status
// ============================================================================

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	status := decode[statusResponse](t, rec)
	if status.Model != "gemini-1.5-pro" {
		t.Errorf("model = %q", status.Model)
	}
	if status.Sessions != 0 {
		t.Errorf("sessions = %d, want 0", status.Sessions)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

// ============================================================================
// Session lifecycle
// ============================================================================

func TestCreateSessionReturnsContract(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions", createSessionRequest{
		Allocation: 100,
		Mode:       "EXPLORATORY",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	created := decode[createSessionResponse](t, rec)
	if created.SessionID == "" {
		t.Error("missing session_id")
	}
	if created.State != string(govern.StatePendingConsent) {
		t.Errorf("state = %q, want PENDING_CONSENT", created.State)
	}
	if !strings.Contains(created.Contract, "ACCEPT EXPLORATORY") {
		t.Errorf("contract does not name the consent phrase: %q", created.Contract)
	}
	if created.Balance.Allocated != 100 {
		t.Errorf("allocated = %v, want 100", created.Balance.Allocated)
	}
}

func TestCreateSessionDefaults(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/sessions", createSessionRequest{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	created := decode[createSessionResponse](t, rec)
	if created.Mode != "EXPLORATORY" {
		t.Errorf("default mode = %q", created.Mode)
	}
	if created.Balance.Allocated != config.DefaultAllocation {
		t.Errorf("default allocation = %v", created.Balance.Allocated)
	}
}

func TestCreateSessionUnknownMode(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/sessions",
		createSessionRequest{Mode: "RECKLESS"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decode[errorEnvelope](t, rec)
	if envelope.Error.Code != codeInvalidRequest {
		t.Errorf("error code = %q", envelope.Error.Code)
	}
}

func TestConsentAcceptAndDecline(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	// Accept path.
	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions", createSessionRequest{Mode: "DIALECTIC"})
	created := decode[createSessionResponse](t, rec)

	rec = doJSON(t, handler, http.MethodPost, "/v1/sessions/"+created.SessionID+"/consent",
		consentRequest{Input: "ACCEPT DIALECTIC"})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept status = %d, body: %s", rec.Code, rec.Body.String())
	}
	accepted := decode[consentResponse](t, rec)
	if accepted.Ticket == "" {
		t.Error("accept returned no ticket")
	}

	// Decline path ends the session with a 200, not an error.
	rec = doJSON(t, handler, http.MethodPost, "/v1/sessions", createSessionRequest{Mode: "DIALECTIC"})
	declined := decode[createSessionResponse](t, rec)

	rec = doJSON(t, handler, http.MethodPost, "/v1/sessions/"+declined.SessionID+"/consent",
		consentRequest{Input: "DECLINE"})
	if rec.Code != http.StatusOK {
		t.Fatalf("decline status = %d, body: %s", rec.Code, rec.Body.String())
	}
	resp := decode[consentResponse](t, rec)
	if resp.State != string(govern.StateEnded) {
		t.Errorf("state after decline = %q, want ENDED", resp.State)
	}
}

func TestConsentWrongPhraseRejected(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions", createSessionRequest{Mode: "SIMULATION"})
	created := decode[createSessionResponse](t, rec)

	rec = doJSON(t, handler, http.MethodPost, "/v1/sessions/"+created.SessionID+"/consent",
		consentRequest{Input: "sure, accept simulation"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestSessionNotFound(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/sessions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	envelope := decode[errorEnvelope](t, rec)
	if envelope.Error.Code != codeNotFound {
		t.Errorf("error code = %q", envelope.Error.Code)
	}
}

// ============================================================================
// Exchanges
// ============================================================================

func TestChatAdmitsAndCharges(t *testing.T) {
	provider := &providers.MockProvider{ProviderName: "mock", Response: &providers.GenerateResponse{Content: "model reply"}}
	srv := newTestServer(t, provider)
	handler := srv.Handler()

	id := createActiveSession(t, handler, "EXPLORATORY", 100)

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/chat",
		chatRequest{Prompt: "first question"})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body: %s", rec.Code, rec.Body.String())
	}

	result := decode[govern.ExchangeResult](t, rec)
	if result.Decision != "ADMIT" {
		t.Errorf("decision = %q", result.Decision)
	}
	if result.Text != "model reply" {
		t.Errorf("text = %q", result.Text)
	}
	if result.ChargedCost != 4 {
		t.Errorf("charged = %v, want 4", result.ChargedCost)
	}
	if result.Balance.Spent != 4 {
		t.Errorf("spent = %v, want 4", result.Balance.Spent)
	}
}

func TestChatRequiresConsent(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions", createSessionRequest{})
	created := decode[createSessionResponse](t, rec)

	rec = doJSON(t, handler, http.MethodPost, "/v1/sessions/"+created.SessionID+"/chat",
		chatRequest{Prompt: "hello"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	envelope := decode[errorEnvelope](t, rec)
	if envelope.Error.Code != codeInvalidState {
		t.Errorf("error code = %q", envelope.Error.Code)
	}
}

func TestChatDenialIsNotAnError(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock", Response: &providers.GenerateResponse{Content: "ok"}})
	handler := srv.Handler()

	// DIAGNOSTIC costs 1 per exchange and never admits partially.
	id := createActiveSession(t, handler, "DIAGNOSTIC", 2)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/chat",
			chatRequest{Prompt: fmt.Sprintf("q%d", i)})
		if rec.Code != http.StatusOK {
			t.Fatalf("chat %d status = %d", i, rec.Code)
		}
	}

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/chat",
		chatRequest{Prompt: "one more"})
	if rec.Code != http.StatusOK {
		t.Fatalf("denied chat status = %d, want 200", rec.Code)
	}
	result := decode[govern.ExchangeResult](t, rec)
	if result.Decision != "DENY_INSUFFICIENT_BUDGET" {
		t.Errorf("decision = %q", result.Decision)
	}
	if result.ChargedCost != 0 {
		t.Errorf("charged = %v, want 0", result.ChargedCost)
	}
}

func TestChatTransportFailureReturns502WithResult(t *testing.T) {
	provider := &providers.MockProvider{
		ProviderName: "mock",
		Err:          &providers.TransportError{Provider: "mock", Message: "upstream down"},
	}
	srv := newTestServer(t, provider)
	handler := srv.Handler()

	id := createActiveSession(t, handler, "EXPLORATORY", 100)

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/chat",
		chatRequest{Prompt: "hello"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	result := decode[govern.ExchangeResult](t, rec)
	if result.TransportError == "" {
		t.Error("missing transport_error in result")
	}
	// The charge stands despite the failed call.
	if result.ChargedCost != 4 {
		t.Errorf("charged = %v, want 4", result.ChargedCost)
	}
}

// ============================================================================
// Mode change, top-up, export, end
// ============================================================================

func TestModeChangeRequiresNewPhrase(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	id := createActiveSession(t, handler, "EXPLORATORY", 100)

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/mode",
		modeChangeRequest{Mode: "SIMULATION", Input: "ACCEPT EXPLORATORY"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("stale phrase status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/mode",
		modeChangeRequest{Mode: "SIMULATION", Input: "ACCEPT SIMULATION"})
	if rec.Code != http.StatusOK {
		t.Fatalf("mode change status = %d, body: %s", rec.Code, rec.Body.String())
	}
	resp := decode[consentResponse](t, rec)
	if resp.Ticket == "" {
		t.Error("mode change returned no ticket")
	}
}

func TestTopUpRestoresSession(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock", Response: &providers.GenerateResponse{Content: "ok"}})
	handler := srv.Handler()

	id := createActiveSession(t, handler, "DIAGNOSTIC", 1)

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/chat", chatRequest{Prompt: "q"})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/topup", topUpRequest{Amount: 10})
	if rec.Code != http.StatusOK {
		t.Fatalf("topup status = %d, body: %s", rec.Code, rec.Body.String())
	}
	resp := decode[topUpResponse](t, rec)
	if resp.Balance.Allocated != 11 {
		t.Errorf("allocated = %v, want 11", resp.Balance.Allocated)
	}
	if resp.State != string(govern.StateActive) {
		t.Errorf("state = %q, want ACTIVE", resp.State)
	}
}

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	id := createActiveSession(t, handler, "EXPLORATORY", 100)

	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/topup", topUpRequest{Amount: -5})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestExportFormats(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock", Response: &providers.GenerateResponse{Content: "ok"}})
	handler := srv.Handler()

	id := createActiveSession(t, handler, "EXPLORATORY", 100)
	doJSON(t, handler, http.MethodPost, "/v1/sessions/"+id+"/chat", chatRequest{Prompt: "q"})

	tests := []struct {
		format      string
		contentType string
	}{
		{"json", "application/json"},
		{"csv", "text/csv"},
		{"markdown", "text/markdown"},
	}

	for _, tt := range tests {
		rec := doJSON(t, handler, http.MethodGet, "/v1/sessions/"+id+"/export?format="+tt.format, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("export %s status = %d", tt.format, rec.Code)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
			t.Errorf("export %s content type = %q, want %q", tt.format, ct, tt.contentType)
		}
		if rec.Body.Len() == 0 {
			t.Errorf("export %s produced empty body", tt.format)
		}
	}

	rec := doJSON(t, handler, http.MethodGet, "/v1/sessions/"+id+"/export?format=pdf", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", rec.Code)
	}
}

func TestEndSession(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	id := createActiveSession(t, handler, "EXPLORATORY", 100)

	rec := doJSON(t, handler, http.MethodDelete, "/v1/sessions/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/v1/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after end = %d, want 404", rec.Code)
	}
}

// ============================================================================
// Middleware
// ============================================================================

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("request ID = %q, want client-supplied-id", got)
	}

	// A missing ID is generated server-side.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("no request ID generated")
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions",
		strings.NewReader(`{"allocation": 100, "bogus": true}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDomainErrorMapping(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", session.NewNotFoundError("x"), http.StatusNotFound, codeNotFound},
		{"limit", &session.LimitError{Limit: 1}, http.StatusTooManyRequests, codeSessionLimit},
		{"state", govern.NewSessionStateError("x", govern.StateEnded, "chat"), http.StatusConflict, codeInvalidState},
		{"consent", govern.NewConsentError("x", "phrase mismatch", nil), http.StatusForbidden, codeConsentRequired},
		{"other", errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.writeDomainError(rec, tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			envelope := decode[errorEnvelope](t, rec)
			if envelope.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", envelope.Error.Code, tt.code)
			}
		})
	}
}

func TestApplyConfigAffectsNewSessionsOnly(t *testing.T) {
	srv := newTestServer(t, &providers.MockProvider{ProviderName: "mock"})
	handler := srv.Handler()

	before := createActiveSession(t, handler, "EXPLORATORY", 0)

	next := config.NewDefault()
	next.Governance.DefaultAllocation = 42
	next.Governance.DefaultMode = "DIAGNOSTIC"
	srv.ApplyConfig(next)

	// The live session keeps its original allocation.
	rec := doJSON(t, handler, http.MethodGet, "/v1/sessions/"+before, nil)
	existing := decode[sessionStatusResponse](t, rec)
	if existing.Balance.Allocated != config.DefaultAllocation {
		t.Errorf("existing allocation = %v, want %v", existing.Balance.Allocated, config.DefaultAllocation)
	}

	// New sessions pick up the reloaded defaults.
	rec = doJSON(t, handler, http.MethodPost, "/v1/sessions", createSessionRequest{})
	created := decode[createSessionResponse](t, rec)
	if created.Balance.Allocated != 42 {
		t.Errorf("new allocation = %v, want 42", created.Balance.Allocated)
	}
	if created.Mode != "DIAGNOSTIC" {
		t.Errorf("new mode = %q, want DIAGNOSTIC", created.Mode)
	}
}
