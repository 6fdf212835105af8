package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iammorganparry/companion/internal/chat"
	"github.com/iammorganparry/companion/internal/models"
)

const (
	wsPongWait     = 60 * time.Second
	wsPingInterval = 25 * time.Second
	wsWriteWait    = 10 * time.Second
	wsMaxFrame     = 64 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origins are open like the CORS policy; the bearer key still applies.
	CheckOrigin: func(*http.Request) bool { return true },
}

type ChatHandler struct {
	svc    *chat.Service
	logger *slog.Logger
}

func NewChatHandler(svc *chat.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// Chat handles POST /v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.Turn(r.Context(), turnRequest(userIDFrom(r.Context()), req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func turnRequest(userID string, req models.ChatRequest) chat.TurnRequest {
	return chat.TurnRequest{
		UserID:         userID,
		ConversationID: req.ConversationID,
		CharacterID:    req.CharacterID,
		Message:        req.Message,
	}
}

// wsFrame is one server-to-client WebSocket message.
type wsFrame struct {
	Type  string               `json:"type"` // "reply" or "error"
	Data  *models.ChatResponse `json:"data,omitempty"`
	Error string               `json:"error,omitempty"`
}

// Stream handles GET /v1/chat/ws. Every text frame from the client is one
// ChatRequest and is answered by one wsFrame. A reply without a
// conversation ID continues the conversation of the previous reply.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxFrame)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.heartbeat(conn, done)

	ctx := r.Context()
	var conversationID string
	for {
		var req models.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed", "user_id", userID, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		if req.ConversationID == "" {
			req.ConversationID = conversationID
		}
		frame := wsFrame{Type: "reply"}
		resp, err := h.svc.Turn(ctx, turnRequest(userID, req))
		if err != nil {
			frame = wsFrame{Type: "error", Error: err.Error()}
		} else {
			frame.Data = resp
			conversationID = resp.ConversationID
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(frame); err != nil {
			h.logger.Warn("websocket write failed", "user_id", userID, "error", err)
			return
		}
	}
}

func (h *ChatHandler) heartbeat(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
