package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/ai"
	"github.com/GriffinCanCode/DocStudio/backend/internal/shared/id"
)

// DefaultRequestTimeout bounds one assistant request
const DefaultRequestTimeout = 2 * time.Minute

// Message types exchanged with the UI
const (
	TypeAIRequest = "ai_request"
	TypeAIResult  = "ai_result"
	TypePing      = "ping"
	TypePong      = "pong"
	TypeSystem    = "system"
	TypeError     = "error"
)

// inbound is a client message
type inbound struct {
	Type    string            `json:"type"`
	Seq     uint64            `json:"seq,omitempty"`
	Channel string            `json:"channel,omitempty"`
	Action  string            `json:"action,omitempty"`
	Payload assistant.Payload `json:"payload"`
}

// result is the reply to an ai_request. Seq is the server-issued sequence
// number; RequestSeq echoes the client's.
type result struct {
	Type       string           `json:"type"`
	Seq        uint64           `json:"seq"`
	RequestSeq uint64           `json:"requestSeq,omitempty"`
	Channel    string           `json:"channel"`
	Action     string           `json:"action"`
	Result     assistant.Result `json:"result"`
	Timestamp  int64            `json:"timestamp"`
}

type errorMessage struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	RequestSeq uint64 `json:"requestSeq,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Handler serves the /stream endpoint
type Handler struct {
	hub          *Hub
	assistant    assistant.Service
	sequencer    *assistant.Sequencer
	conversation *assistant.Conversation
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	timeout      time.Duration
}

// NewHandler creates a WebSocket handler. Requests on the same channel of
// one connection are ordered by seq, and chat replies are appended to conv.
func NewHandler(hub *Hub, svc assistant.Service, seq *assistant.Sequencer, conv *assistant.Conversation, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		hub:          hub,
		assistant:    svc,
		sequencer:    seq,
		conversation: conv,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		timeout: DefaultRequestTimeout,
	}
}

// HandleConnection upgrades the request and serves the connection until
// the client disconnects
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(conn)
	h.hub.register(cl)
	go cl.writePump(h.logger)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer func() {
		cancel()
		h.sequencer.Forget(scopeChannel(cl.id, ""))
		h.hub.unregister(cl)
	}()

	h.send(cl, TypeSystem, map[string]interface{}{
		"type":      TypeSystem,
		"message":   "Connected to DocStudio",
		"timestamp": time.Now().Unix(),
	})

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg inbound
		if err := api.Unmarshal(data, &msg); err != nil {
			h.sendError(cl, "malformed message", 0)
			continue
		}
		h.hub.record("in", msg.Type)

		switch msg.Type {
		case TypePing:
			h.send(cl, TypePong, map[string]interface{}{"type": TypePong, "timestamp": time.Now().Unix()})
		case TypeAIRequest:
			if reqCtx, req, ok := h.beginAI(ctx, cl, msg); ok {
				go h.runAI(reqCtx, req)
			}
		default:
			h.sendError(cl, "unknown message type: "+msg.Type, msg.Seq)
		}
	}
}

// aiRequest is an ai_request that has been validated and issued a ticket
type aiRequest struct {
	client  *client
	msg     inbound
	action  assistant.Action
	channel string
	payload assistant.Payload
	ticket  assistant.Ticket
}

// beginAI validates msg and takes its ticket. It runs on the read loop so
// tickets follow the order messages arrived in. Channels are scoped to the
// connection.
func (h *Handler) beginAI(ctx context.Context, cl *client, msg inbound) (context.Context, aiRequest, bool) {
	action, err := assistant.ParseAction(msg.Action)
	if err != nil {
		h.sendError(cl, err.Error(), msg.Seq)
		return nil, aiRequest{}, false
	}
	channel := msg.Channel
	if channel == "" {
		channel = string(action)
	}

	payload := msg.Payload
	if action == assistant.ActionChat {
		if payload.Message == "" {
			h.sendError(cl, "chat requires a message", msg.Seq)
			return nil, aiRequest{}, false
		}
		if len(payload.History) == 0 {
			payload.History = h.conversation.History(ai.ChatHistoryLimit)
		}
		h.conversation.Append(assistant.RoleUser, payload.Message)
	}

	reqCtx, ticket := h.sequencer.Begin(ctx, scopeChannel(cl.id, channel))
	return reqCtx, aiRequest{
		client:  cl,
		msg:     msg,
		action:  action,
		channel: channel,
		payload: payload,
		ticket:  ticket,
	}, true
}

func (h *Handler) runAI(ctx context.Context, req aiRequest) {
	if !h.sequencer.Current(req.ticket) {
		h.sequencer.Complete(req.ticket)
		h.logStale(req)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.assistant.Request(ctx, req.action, req.payload)
	if !h.sequencer.Complete(req.ticket) {
		h.logStale(req)
		return
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			h.sendError(req.client, err.Error(), req.msg.Seq)
		}
		return
	}

	if req.action == assistant.ActionChat {
		h.conversation.Append(assistant.RoleAssistant, res.Response)
	}
	h.send(req.client, TypeAIResult, result{
		Type:       TypeAIResult,
		Seq:        req.ticket.Seq,
		RequestSeq: req.msg.Seq,
		Channel:    req.channel,
		Action:     string(req.action),
		Result:     res,
		Timestamp:  time.Now().Unix(),
	})
}

func scopeChannel(clientID, channel string) string {
	return clientID + ":" + channel
}

// BaseChannel strips the connection scope from a sequencer channel
func BaseChannel(scoped string) string {
	if conn, channel, ok := strings.Cut(scoped, ":"); ok && id.HasPrefix(conn, id.ConnectionPrefix) {
		return channel
	}
	return scoped
}

func (h *Handler) logStale(req aiRequest) {
	h.logger.Debug("Dropped stale assistant result",
		zap.String("client", req.client.id),
		zap.String("channel", req.channel),
		zap.Uint64("seq", req.ticket.Seq))
}

func (h *Handler) send(cl *client, msgType string, v interface{}) {
	data, err := api.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}
	if !cl.deliver(data, replyWait) {
		if !cl.closed() {
			h.logger.Warn("Dropped reply for slow client",
				zap.String("client", cl.id),
				zap.String("type", msgType))
		}
		return
	}
	h.hub.record("out", msgType)
}

func (h *Handler) sendError(cl *client, message string, requestSeq uint64) {
	h.send(cl, TypeError, errorMessage{
		Type:       TypeError,
		Message:    message,
		RequestSeq: requestSeq,
		Timestamp:  time.Now().Unix(),
	})
}
