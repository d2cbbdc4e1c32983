package handler

import (
	"net/http"

	"hivechat/internal/nlog"
	"hivechat/internal/realtime"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub      *realtime.Hub
	logger   nlog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, logger nlog.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  8192,
			WriteBufferSize: 8192,
			// The frontend runs on its own origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and hands the connection to the hub. It
// blocks for the lifetime of the connection.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Logf("Websocket upgrade failed {%v}", err)
		return
	}
	h.hub.HandleConn(conn)
}
