package handlers

import (
	"net/http"

	"go.uber.org/zap"

	discoverysvc "github.com/unicrossed/backend/internal/services/discovery"
	"github.com/unicrossed/backend/internal/transport/http/dto"
	httperrors "github.com/unicrossed/backend/internal/transport/http/errors"
)

type DiscoveryHandler struct {
	service *discoverysvc.Service
	log     *zap.Logger
}

func NewDiscoveryHandler(service *discoverysvc.Service, log *zap.Logger) *DiscoveryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiscoveryHandler{service: service, log: log}
}

func (h *DiscoveryHandler) NextProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "DISCOVERY_SERVICE_UNAVAILABLE", "discovery service is unavailable")
		return
	}

	candidate, found, err := h.service.NextCandidate(r.Context(), identity.UserID)
	if err != nil {
		h.log.Error("next candidate failed", zap.Int64("user_id", identity.UserID), zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to load next profile")
		return
	}
	if !found {
		httperrors.Write(w, http.StatusOK, dto.NextProfileResponse{
			Status:  dto.StatusNoMoreCandidates,
			Message: "no more candidates",
		})
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NextProfileResponse{
		Status: dto.StatusSuccess,
		Candidate: &dto.CandidateResponse{
			ID:       candidate.ID,
			Username: candidate.Username,
			City:     candidate.City,
			State:    candidate.State,
			Bio:      candidate.Bio,
			Skills:   candidate.Skills,
		},
	})
}
