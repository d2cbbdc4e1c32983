package handler

import (
	"encoding/json"
	"net/http"

	"hivechat/internal/apperr"
	"hivechat/internal/middleware"
	"hivechat/internal/service"

	"github.com/gorilla/sessions"
)

type syncUserRequest struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl"`
}

type UserHandler struct {
	store       *sessions.CookieStore
	userService service.UserService
}

func NewUserHandler(userService service.UserService, store *sessions.CookieStore) *UserHandler {
	return &UserHandler{store, userService}
}

// SyncUser upserts the caller's user row from the identity the auth
// provider handed the frontend, and pins the identity into the session
// cookie so later calls can omit it.
func (u *UserHandler) SyncUser(w http.ResponseWriter, r *http.Request) {
	var req syncUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("request body is not valid JSON"))
		return
	}

	user, err := u.userService.SyncUser(req.ExternalID, req.Name, req.ImageURL)
	if err != nil {
		writeError(w, err)
		return
	}

	session, _ := u.store.Get(r, middleware.SessionName)
	session.Values["external_id"] = user.ExternalID
	session.Values["name"] = user.Name
	sessions.Save(r, w)

	writeJSON(w, http.StatusOK, user)
}
