package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"oecs-hq/lusaka/pkg/audit/export"
	"oecs-hq/lusaka/pkg/govern"
	"oecs-hq/lusaka/pkg/modes"
	"oecs-hq/lusaka/pkg/session"
)

// handleStatus serves GET /.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Service:  "oecs",
		Model:    s.cfg.Provider.Model,
		Sessions: s.manager.Count(),
	})
}

// handleHealthz serves GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateSession serves POST /v1/sessions.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	defaults := s.governanceDefaults()

	allocation := req.Allocation
	if allocation == 0 {
		allocation = defaults.DefaultAllocation
	}
	if allocation < 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "allocation must be positive")
		return
	}

	modeName := req.Mode
	if modeName == "" {
		modeName = defaults.DefaultMode
	}
	mode, err := modes.Parse(modeName)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	sess, contract, err := s.manager.Create(allocation, mode)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	status := sess.Status()
	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: sess.ID(),
		State:     string(status.State),
		Mode:      string(status.Mode),
		Contract:  contract,
		Balance:   status.Balance,
	})
}

// handleSessionStatus serves GET /v1/sessions/{id}.
func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStatusResponse{Status: sess.Status()})
}

// handleConsent serves POST /v1/sessions/{id}/consent.
func (s *Server) handleConsent(w http.ResponseWriter, r *http.Request) {
	var req consentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	sessionID := r.PathValue("id")
	ticket, err := s.manager.Accept(sessionID, req.Input)
	if err != nil {
		// A decline is a legitimate outcome: the session ends and the
		// caller learns the final state.
		var cerr *govern.ConsentError
		if errors.As(err, &cerr) && req.Input == govern.DeclinePhrase {
			writeJSON(w, http.StatusOK, consentResponse{
				SessionID: sessionID,
				State:     string(govern.StateEnded),
			})
			return
		}
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, consentResponse{
		SessionID: sessionID,
		State:     string(govern.StateActive),
		Ticket:    ticket,
	})
}

// handleChat serves POST /v1/sessions/{id}/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "prompt is required")
		return
	}

	result, err := s.manager.Submit(r.Context(), r.PathValue("id"), req.Prompt)
	if err != nil {
		// A transport failure after an admitted exchange still carries
		// a result: the charge stands and the trail records it.
		if result != nil {
			writeJSON(w, http.StatusBadGateway, result)
			return
		}
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleModeChange serves POST /v1/sessions/{id}/mode.
func (s *Server) handleModeChange(w http.ResponseWriter, r *http.Request) {
	var req modeChangeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	mode, err := modes.Parse(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	sessionID := r.PathValue("id")
	ticket, err := s.manager.SetMode(sessionID, mode, req.Input)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, consentResponse{
		SessionID: sessionID,
		State:     string(govern.StateActive),
		Ticket:    ticket,
	})
}

// handleTopUp serves POST /v1/sessions/{id}/topup.
func (s *Server) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "amount must be positive")
		return
	}

	sessionID := r.PathValue("id")
	balance, err := s.manager.TopUp(sessionID, req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	sess, err := s.manager.Get(sessionID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, topUpResponse{
		SessionID: sessionID,
		State:     string(sess.Status().State),
		Balance:   balance,
	})
}

// handleExport serves GET /v1/sessions/{id}/export.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.manager.Export(r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		exporter := export.NewJSONExporter(true)
		if err := exporter.Export(r.Context(), snapshot, w); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		exporter := export.NewCSVExporter(true)
		if err := exporter.Export(r.Context(), snapshot, w); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		}
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown")
		exporter := export.NewMarkdownExporter()
		if err := exporter.Export(r.Context(), snapshot, w); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		}
	default:
		writeError(w, http.StatusBadRequest, codeInvalidRequest,
			fmt.Sprintf("unknown format %q (expected json, csv, or markdown)", format))
	}
}

// handleEndSession serves DELETE /v1/sessions/{id}.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.End(r.PathValue("id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes a JSON request body, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeDomainError maps domain errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var notFound *session.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		return
	}

	var limit *session.LimitError
	if errors.As(err, &limit) {
		writeError(w, http.StatusTooManyRequests, codeSessionLimit, err.Error())
		return
	}

	var state *govern.SessionStateError
	if errors.As(err, &state) {
		writeError(w, http.StatusConflict, codeInvalidState, err.Error())
		return
	}

	var consent *govern.ConsentError
	if errors.As(err, &consent) {
		writeError(w, http.StatusForbidden, codeConsentRequired, err.Error())
		return
	}

	writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
}
