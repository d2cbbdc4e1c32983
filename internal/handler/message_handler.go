package handler

import (
	"encoding/json"
	"net/http"

	"hivechat/internal/apperr"
	"hivechat/internal/service"

	"github.com/gorilla/mux"
)

type messageRequest struct {
	ExternalID string `json:"externalId"`
	Content    string `json:"content"`
}

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService}
}

func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["id"]
	cursor := r.URL.Query().Get("cursor")

	messages, err := h.messageService.ListMessages(channelID, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["id"]

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("request body is not valid JSON"))
		return
	}

	payload, err := h.messageService.CreateMessage(callerExternalID(r, req.ExternalID), channelID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payload)
}

func (h *MessageHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["id"]

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("request body is not valid JSON"))
		return
	}

	payload, err := h.messageService.EditMessage(callerExternalID(r, req.ExternalID), messageID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["id"]

	// DELETE bodies are optional; a missing one just means "use the session".
	var req messageRequest
	json.NewDecoder(r.Body).Decode(&req)

	payload, err := h.messageService.DeleteMessage(callerExternalID(r, req.ExternalID), messageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
