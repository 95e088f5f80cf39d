package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	authsvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/auth"
	matchessvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/matches"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/transport/http/dto"
	httperrors "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/transport/http/errors"
)

type CandidatesHandler struct {
	service *matchessvc.Service
	log     *zap.Logger
}

func NewCandidatesHandler(service *matchessvc.Service, log *zap.Logger) *CandidatesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CandidatesHandler{service: service, log: log}
}

func (h *CandidatesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	result, err := h.service.Candidates(r.Context(), identity.UserID)
	if err != nil {
		h.writeServiceError(w, err, "failed to load candidates")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewCandidatesResponse(result))
}

func (h *CandidatesHandler) Compatibility(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	candidateID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid candidate id")
		return
	}

	explanation, err := h.service.Explain(r.Context(), identity.UserID, candidateID)
	if err != nil {
		h.writeServiceError(w, err, "failed to evaluate compatibility")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewCompatibilityResponse(explanation))
}

func (h *CandidatesHandler) writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, matchessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
	case errors.Is(err, matchessvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "candidate not found")
	case errors.Is(err, matchessvc.ErrRepositoryUnavailable):
		h.log.Warn("candidate repository unavailable", zap.Error(err))
		writeUnavailable(w, "REPOSITORY_UNAVAILABLE", message)
	default:
		h.log.Error("candidate request failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", message)
	}
}
