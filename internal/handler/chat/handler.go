package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	chatService "github.com/zhouzirui/stylechat/internal/service/chat"
	"github.com/zhouzirui/stylechat/pkg/utils"
)

// Request is the body of POST /chat and of each WebSocket frame.
type Request struct {
	Message   *string `json:"message"`
	SessionID *string `json:"session_id"`
}

// Response carries the model's reply. SessionID is null when the turn failed.
type Response struct {
	Response  string  `json:"response"`
	SessionID *string `json:"session_id"`
}

var errMessageRequired = errors.New("message is required")

// Handler relays chat turns to the session service.
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New creates the chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the relay endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/ws", h.handleWebSocket)
}

// RegisterAPIRoutes registers the session inspection endpoints.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/messages", h.handleTranscript)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r.Body)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.relay(r.Context(), req))
}

// relay runs one turn. Every failure past request validation becomes an
// "Error: ..." reply with a null session id.
func (h *Handler) relay(ctx context.Context, req Request) Response {
	sessionID := ""
	if req.SessionID != nil {
		sessionID = strings.TrimSpace(*req.SessionID)
	}

	reply, session, err := h.chatSvc.Reply(ctx, sessionID, *req.Message)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("chat relay failed")
		return Response{Response: "Error: " + err.Error()}
	}

	id := session.ID
	return Response{Response: reply, SessionID: &id}
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

func decodeRequest(body io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return Request{}, errors.New("invalid request body")
	}
	if req.Message == nil {
		return Request{}, errMessageRequired
	}
	return req, nil
}
