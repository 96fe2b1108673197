package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unicrossed/backend/internal/domain/enums"
	"github.com/unicrossed/backend/internal/domain/rules"
	interactionsvc "github.com/unicrossed/backend/internal/services/interactions"
	"github.com/unicrossed/backend/internal/transport/http/dto"
	httperrors "github.com/unicrossed/backend/internal/transport/http/errors"
)

const TargetIDParam = "user_id"

type InteractionHandler struct {
	service *interactionsvc.Service
	log     *zap.Logger
}

func NewInteractionHandler(service *interactionsvc.Service, log *zap.Logger) *InteractionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InteractionHandler{service: service, log: log}
}

func (h *InteractionHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, enums.InteractionKindLike)
}

func (h *InteractionHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, enums.InteractionKindDislike)
}

func (h *InteractionHandler) Superlike(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, enums.InteractionKindSuperlike)
}

func (h *InteractionHandler) handle(w http.ResponseWriter, r *http.Request, kind enums.InteractionKind) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERACTION_SERVICE_UNAVAILABLE", "interaction service is unavailable")
		return
	}

	targetID, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, TargetIDParam)), 10, 64)
	if err != nil || targetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	var message string
	if kind == enums.InteractionKindSuperlike {
		message = superlikeMessage(r)
	}

	result, err := h.service.Record(r.Context(), identity.UserID, targetID, kind, message)
	if err != nil {
		h.writeRecordError(w, err, identity.UserID, targetID, kind)
		return
	}

	switch result.Outcome {
	case interactionsvc.OutcomeAlreadyInteracted:
		httperrors.Write(w, http.StatusOK, dto.InteractionResponse{
			Status:  dto.StatusInfo,
			Message: "already interacted",
		})
	case interactionsvc.OutcomeLinked:
		resp := dto.InteractionResponse{
			Status:  dto.StatusSuccess,
			Message: "linked",
			Linked:  true,
		}
		if result.Link != nil {
			resp.LinkID = result.Link.ID
		}
		httperrors.Write(w, http.StatusOK, resp)
	default:
		httperrors.Write(w, http.StatusOK, dto.InteractionResponse{
			Status:  dto.StatusSuccess,
			Message: "reaction recorded",
		})
	}
}

// superlikeMessage reads {"message": "..."}. A missing or unreadable body
// counts as an empty message, so the already-interacted check still wins.
func superlikeMessage(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	var req dto.SuperlikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return req.Message
}

func (h *InteractionHandler) writeRecordError(w http.ResponseWriter, err error, userID, targetID int64, kind enums.InteractionKind) {
	if lenErr, ok := interactionsvc.IsInvalidMessageLength(err); ok {
		code, message := "MESSAGE_TOO_SHORT", "superlike message must be at least 10 characters"
		if lenErr.Bound == rules.MessageBoundMax {
			code, message = "MESSAGE_TOO_LONG", "superlike message must be at most 500 characters"
		}
		httperrors.Write(w, http.StatusBadRequest, httperrors.MessageLengthError{
			Status:  httperrors.StatusError,
			Code:    code,
			Message: message,
			Length:  lenErr.Length,
			Min:     lenErr.Min,
			Max:     lenErr.Max,
		})
		return
	}

	switch {
	case errors.Is(err, interactionsvc.ErrSelfInteraction):
		writeBadRequest(w, "SELF_INTERACTION", "you cannot react to yourself")
	case errors.Is(err, interactionsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid interaction request")
	case errors.Is(err, interactionsvc.ErrTargetNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "user not found")
	default:
		h.log.Error("record interaction failed",
			zap.Int64("user_id", userID),
			zap.Int64("target_id", targetID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		writeInternal(w, "INTERNAL_ERROR", "failed to record reaction")
	}
}
