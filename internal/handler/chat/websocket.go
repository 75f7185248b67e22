package chat

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const maxFrameSize = 64 << 10

// handleWebSocket serves the relay over a WebSocket. Every text frame is a chat
// request and is answered with one chat response frame.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxFrameSize)
	ctx := r.Context()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		req, err := decodeRequest(bytes.NewReader(data))
		if err != nil {
			if writeErr := conn.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(h.relay(ctx, req)); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				log.Warn().Err(err).Msg("websocket write failed")
			}
			return
		}
	}
}
