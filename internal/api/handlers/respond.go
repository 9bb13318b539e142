package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/idalmas/chatterbox-be/internal/apperrors"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps a classified error to its status and stable message code.
// Dependency failures are logged in full server-side; the client only sees
// the code, with detail echoed when running in development.
func respondError(w http.ResponseWriter, err error, dev bool) {
	ae, ok := apperrors.From(err)
	if !ok {
		ae = apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}

	var status int
	switch ae.Kind {
	case apperrors.Validation, apperrors.Conflict, apperrors.Auth:
		status = http.StatusBadRequest
	case apperrors.NotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}

	body := map[string]string{"message": ae.Code}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("code", ae.Code).Msg("Request failed on a dependency")
		if dev {
			body["detail"] = err.Error()
		}
	}

	respondJSON(w, status, body)
}
