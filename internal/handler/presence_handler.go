package handler

import (
	"net/http"

	"hivechat/internal/realtime"
)

type PresenceHandler struct {
	presence *realtime.PresenceRegistry
}

func NewPresenceHandler(presence *realtime.PresenceRegistry) *PresenceHandler {
	return &PresenceHandler{presence}
}

// ListPresence is the catch-up read for clients that missed the live
// presence:update broadcasts.
func (h *PresenceHandler) ListPresence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presence.Snapshot())
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "hivechat"})
}
