package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/internal/service/orchestrator"
	"github.com/sandevgo/caterbot/internal/service/session"
	"github.com/sandevgo/caterbot/pkg/log"
)

const greeting = "Bonjour! Je suis votre assistant HS Traiteur. Comment puis-je vous aider aujourd'hui?"

// inbound is one client message on the chat socket.
type inbound struct {
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
}

// event is the tagged outbound payload. Type mirrors the reply kind, plus
// "error" for rejected input.
type event struct {
	Type         string `json:"type"`
	Content      string `json:"content"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Sender       string `json:"sender"`
	SessionID    string `json:"session_id,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// Handler upgrades chat connections and runs one read loop per client.
// Each message is an independent turn handed to the orchestrator.
type Handler struct {
	orch     *orchestrator.Orchestrator
	sessions *session.Store
}

func NewHandler(orch *orchestrator.Orchestrator, sessions *session.Store) *Handler {
	return &Handler{orch: orch, sessions: sessions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromCtx(ctx)

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to accept websocket")
		return
	}
	defer ws.Close(websocket.StatusNormalClosure, "conversation ended")

	sessionID := h.sessions.Create(r.URL.Query().Get("session_id"))
	logger.Info().Str("session_id", sessionID).Msg("client connected")

	if err := h.writeEvent(ctx, ws, event{
		Type:      string(core.ReplyPlainText),
		Content:   greeting,
		Sender:    core.SenderAssistant,
		SessionID: sessionID,
		Timestamp: time.Now().Format(time.RFC3339),
	}); err != nil {
		logger.Error().Err(err).Msg("failed to send greeting")
		return
	}

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				logger.Info().Str("session_id", sessionID).Msg("client disconnected")
			} else {
				logger.Warn().Err(err).Str("session_id", sessionID).Msg("websocket read error")
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = h.writeEvent(ctx, ws, errorEvent(sessionID, "malformed message"))
			continue
		}
		if msg.SessionID != "" {
			sessionID = msg.SessionID
		}

		decision, err := h.orch.Route(ctx, sessionID, msg.Content)
		if err != nil {
			// Only empty input reaches here; no session state was touched.
			_ = h.writeEvent(ctx, ws, errorEvent(sessionID, "empty message content"))
			continue
		}

		if err := h.writeEvent(ctx, ws, event{
			Type:         string(decision.Kind),
			Content:      decision.Message,
			WhatsAppLink: decision.WhatsAppLink,
			PhoneNumber:  decision.PhoneNumber,
			Sender:       core.SenderAssistant,
			SessionID:    sessionID,
			Timestamp:    time.Now().Format(time.RFC3339),
		}); err != nil {
			logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to send reply")
			return
		}
	}
}

func errorEvent(sessionID, msg string) event {
	return event{
		Type:      "error",
		Content:   msg,
		Sender:    core.SenderAssistant,
		SessionID: sessionID,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (h *Handler) writeEvent(ctx context.Context, ws *websocket.Conn, ev event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
