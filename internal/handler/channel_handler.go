package handler

import (
	"encoding/json"
	"net/http"

	"hivechat/internal/apperr"
	"hivechat/internal/service"

	"github.com/gorilla/mux"
)

type createChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ExternalID  string `json:"externalId"`
}

type membershipRequest struct {
	ExternalID string `json:"externalId"`
}

type ChannelHandler struct {
	channelService service.ChannelService
}

func NewChannelHandler(channelService service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService}
}

func (h *ChannelHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	externalID := callerExternalID(r, r.URL.Query().Get("externalId"))

	channels, err := h.channelService.ListChannels(externalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

func (h *ChannelHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req createChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("request body is not valid JSON"))
		return
	}

	channel, err := h.channelService.CreateChannel(callerExternalID(r, req.ExternalID), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, channel)
}

func (h *ChannelHandler) JoinChannel(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.channelService.JoinChannel)
}

func (h *ChannelHandler) LeaveChannel(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.channelService.LeaveChannel)
}

func (h *ChannelHandler) changeMembership(w http.ResponseWriter, r *http.Request, op func(externalID, channelID string) error) {
	channelID := mux.Vars(r)["id"]

	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("request body is not valid JSON"))
		return
	}

	if err := op(callerExternalID(r, req.ExternalID), channelID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
