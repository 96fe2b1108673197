package handlers

import (
	"encoding/json"
	"net/http"

	authsvc "github.com/unicrossed/backend/internal/services/auth"
	httperrors "github.com/unicrossed/backend/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// currentIdentity writes 401 and reports false when the request carries no identity.
func currentIdentity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
	}
	return identity, ok
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusBadRequest, code, message)
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusUnauthorized, code, message)
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusNotFound, code, message)
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusInternalServerError, code, message)
}
