package handlers

import (
	"log/slog"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/webrana/adminmail-backend/internal/api/middleware"
	"github.com/webrana/adminmail-backend/internal/websocket"
)

// WSHandler upgrades mail clients to a websocket connection for live
// mailbox updates
type WSHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *websocket.Hub, upgrader gorillaws.Upgrader, logger *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, upgrader: upgrader, logger: logger}
}

// Connect handles GET /mail/ws. The connection is push-only: new-email and
// unread-count events flow to the client, incoming frames are discarded.
func (h *WSHandler) Connect(c echo.Context) error {
	userID := middleware.CurrentUserID(c)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return nil
	}

	client := websocket.NewClient(h.hub, conn, userID, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	return nil
}
