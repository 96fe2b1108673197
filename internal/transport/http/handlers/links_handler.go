package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	linkssvc "github.com/unicrossed/backend/internal/services/links"
	"github.com/unicrossed/backend/internal/transport/http/dto"
	httperrors "github.com/unicrossed/backend/internal/transport/http/errors"
)

type LinksHandler struct {
	service *linkssvc.Service
	log     *zap.Logger
}

func NewLinksHandler(service *linkssvc.Service, log *zap.Logger) *LinksHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LinksHandler{service: service, log: log}
}

func (h *LinksHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "LINKS_SERVICE_UNAVAILABLE", "links service is unavailable")
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	items, err := h.service.ListForUser(r.Context(), identity.UserID, limit)
	if err != nil {
		if errors.Is(err, linkssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid links request")
			return
		}
		h.log.Error("list links failed", zap.Int64("user_id", identity.UserID), zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to load links")
		return
	}

	resp := dto.LinksResponse{
		Status: dto.StatusSuccess,
		Links:  make([]dto.LinkItem, 0, len(items)),
	}
	for _, item := range items {
		resp.Links = append(resp.Links, dto.LinkItem{
			LinkID: item.LinkID,
			User: dto.LinkedUserResponse{
				ID:       item.User.ID,
				Username: item.User.Username,
				City:     item.User.City,
				State:    item.User.State,
				Bio:      item.User.Bio,
			},
			LinkedAt: item.LinkedAt.UTC(),
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}
