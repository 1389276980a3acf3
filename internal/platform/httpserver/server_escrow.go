package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	escrowhttp "covenant/contexts/finance-core/escrow-service/transport/http"
)

func writeEscrowError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, escrowhttp.ErrorResponse{Code: code, Message: message})
}

func (s *Server) writeEscrowDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrValidation):
		writeEscrowError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domainerrors.ErrForbidden):
		writeEscrowError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrNotFound):
		writeEscrowError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domainerrors.ErrConflict):
		writeEscrowError(w, http.StatusConflict, "conflict", err.Error())
	default:
		s.logger.Error("escrow request failed",
			"event", "escrow_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get("X-Request-Id"),
			"error", err.Error(),
		)
		writeEscrowError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireEscrowAuthorization(w http.ResponseWriter, r *http.Request) bool {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeEscrowError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return false
	}
	return true
}

func requireEscrowRequestID(w http.ResponseWriter, r *http.Request) bool {
	if strings.TrimSpace(r.Header.Get("X-Request-Id")) == "" {
		writeEscrowError(w, http.StatusBadRequest, "missing_request_id", "X-Request-Id header is required")
		return false
	}
	return true
}

func requireEscrowUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeEscrowError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

// authorizeEscrowRequest runs the header checks every escrow route shares.
func authorizeEscrowRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !requireEscrowAuthorization(w, r) || !requireEscrowRequestID(w, r) {
		return "", false
	}
	return requireEscrowUser(w, r)
}

func (s *Server) handleCreateEscrow(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorizeEscrowRequest(w, r)
	if !ok {
		return
	}

	var req escrowhttp.CreateEscrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEscrowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.escrow.Handler.CreateEscrowHandler(r.Context(), userID, r.PathValue("project_id"), req)
	if err != nil {
		s.writeEscrowDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetEscrowByProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorizeEscrowRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.escrow.Handler.GetEscrowByProjectHandler(r.Context(), userID, r.PathValue("project_id"))
	if err != nil {
		s.writeEscrowDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListEscrows(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorizeEscrowRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	resp, err := s.escrow.Handler.ListEscrowsHandler(r.Context(), userID, query.Get("status"), query.Get("role"))
	if err != nil {
		s.writeEscrowDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEscrow(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorizeEscrowRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.escrow.Handler.GetEscrowHandler(r.Context(), userID, r.PathValue("escrow_id"))
	if err != nil {
		s.writeEscrowDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFundMilestone(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorizeEscrowRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.escrow.Handler.FundMilestoneHandler(
		r.Context(),
		userID,
		r.PathValue("escrow_id"),
		r.PathValue("milestone_id"),
	)
	if err != nil {
		s.writeEscrowDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveRelease(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorizeEscrowRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.escrow.Handler.ApproveReleaseHandler(
		r.Context(),
		userID,
		r.PathValue("escrow_id"),
		r.PathValue("milestone_id"),
	)
	if err != nil {
		s.writeEscrowDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRaiseDispute(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorizeEscrowRequest(w, r)
	if !ok {
		return
	}

	var req escrowhttp.RaiseDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEscrowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.escrow.Handler.RaiseDisputeHandler(r.Context(), userID, r.PathValue("escrow_id"), req)
	if err != nil {
		s.writeEscrowDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
