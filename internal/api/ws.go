package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The chat widget is served from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleChat upgrades the connection and runs the read/reply loop. Frames are
// processed strictly in order: the next read does not start until the reply
// for the previous frame has been written, so a session sees at most one
// in-flight turn.
func handleChat(conv Conversation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := chi.URLParam(r, "clientID")
		if clientID == "" {
			clientID = uuid.New().String()
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "client_id", clientID, "error", err)
			return
		}
		defer conn.Close()

		slog.Info("websocket connected", "client_id", clientID)

		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.Error("websocket read failed", "client_id", clientID, "error", err)
				} else {
					slog.Info("websocket disconnected", "client_id", clientID)
				}
				return
			}

			text := strings.TrimSpace(string(msg))
			if msgType != websocket.TextMessage || text == "" {
				continue
			}

			reply := conv.HandleTurn(r.Context(), clientID, text)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				slog.Error("websocket write failed", "client_id", clientID, "error", err)
				return
			}
		}
	}
}
