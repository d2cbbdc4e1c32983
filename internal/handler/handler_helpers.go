package handler

import (
	"encoding/json"
	"net/http"

	"hivechat/internal/apperr"
	"hivechat/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto its status class. Internal causes
// never reach the wire; callers get the opaque message only.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.StatusOf(err), map[string]string{"error": err.Error()})
}

// callerExternalID prefers the id the request body/query names, then the
// identity the middleware resolved. The external frontend sends the id
// with every call; the session is the fallback.
func callerExternalID(r *http.Request, fromPayload string) string {
	if fromPayload != "" {
		return fromPayload
	}
	return middleware.IdentityFrom(r).ExternalID
}
