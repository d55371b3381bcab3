package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/ai"
	"github.com/GriffinCanCode/DocStudio/backend/internal/shared/id"
)

// gatedService blocks "slow" chat messages until their context ends
type gatedService struct {
	started chan string
}

func (g *gatedService) Request(ctx context.Context, action assistant.Action, p assistant.Payload) (assistant.Result, error) {
	g.started <- p.Message
	if p.Message == "slow" {
		<-ctx.Done()
		return assistant.Result{}, ctx.Err()
	}
	return assistant.Result{Response: "reply to " + p.Message, Source: "test"}, nil
}

// heldService blocks "held" messages until released, ignoring cancellation
type heldService struct {
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	calls   []string
}

func newHeldService() *heldService {
	return &heldService{release: make(chan struct{})}
}

func (h *heldService) Request(ctx context.Context, action assistant.Action, p assistant.Payload) (assistant.Result, error) {
	h.mu.Lock()
	h.calls = append(h.calls, p.Message)
	h.mu.Unlock()
	if p.Message == "held" {
		<-h.release
	}
	return assistant.Result{Response: "reply to " + p.Message, Source: "test"}, nil
}

func (h *heldService) open() { h.once.Do(func() { close(h.release) }) }

func (h *heldService) called(message string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.calls {
		if c == message {
			return true
		}
	}
	return false
}

type countingMetrics struct {
	mu       sync.Mutex
	open     int
	messages map[string]int
}

func (m *countingMetrics) IncWSConnections() { m.mu.Lock(); m.open++; m.mu.Unlock() }
func (m *countingMetrics) DecWSConnections() { m.mu.Lock(); m.open--; m.mu.Unlock() }
func (m *countingMetrics) RecordWSMessage(direction, msgType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages == nil {
		m.messages = make(map[string]int)
	}
	m.messages[direction+":"+msgType]++
}

type fixture struct {
	hub          *Hub
	conversation *assistant.Conversation
	sequencer    *assistant.Sequencer
	url          string
	conn         *websocket.Conn
}

func setup(t *testing.T, svc assistant.Service, metrics Metrics) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil)
	if metrics != nil {
		hub.WithMetrics(metrics)
	}
	f := &fixture{
		hub:          hub,
		conversation: assistant.NewConversation(),
		sequencer:    assistant.NewSequencer(),
	}
	h := NewHandler(hub, svc, f.sequencer, f.conversation, nil)

	r := gin.New()
	r.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	f.url = "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	f.conn = f.dial(t)
	return f
}

// dial opens another connection and consumes its welcome message
func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	welcome := readFrom(t, conn)
	require.Equal(t, TypeSystem, welcome["type"])
	return conn
}

func (f *fixture) read(t *testing.T) map[string]interface{} {
	t.Helper()
	return readFrom(t, f.conn)
}

func readFrom(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func chat(t *testing.T, conn *websocket.Conn, seq int, message string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    "ai_request",
		"seq":     seq,
		"action":  "chat",
		"payload": map[string]interface{}{"message": message},
	}))
}

func TestPingPong(t *testing.T) {
	f := setup(t, ai.NewAssistant(nil, nil), nil)

	require.NoError(t, f.conn.WriteJSON(map[string]interface{}{"type": "ping"}))
	assert.Equal(t, TypePong, f.read(t)["type"])
}

func TestUnknownMessageType(t *testing.T) {
	f := setup(t, ai.NewAssistant(nil, nil), nil)

	require.NoError(t, f.conn.WriteJSON(map[string]interface{}{"type": "generate_ui", "seq": 3}))
	msg := f.read(t)
	assert.Equal(t, TypeError, msg["type"])
	assert.EqualValues(t, 3, msg["requestSeq"])
}

func TestAIRequestSimulated(t *testing.T) {
	f := setup(t, ai.NewAssistant(nil, nil), nil)

	require.NoError(t, f.conn.WriteJSON(map[string]interface{}{
		"type":    "ai_request",
		"seq":     7,
		"action":  "optimize",
		"payload": map[string]interface{}{"code": "var a = 1"},
	}))

	msg := f.read(t)
	assert.Equal(t, TypeAIResult, msg["type"])
	assert.Equal(t, "optimize", msg["action"])
	assert.Equal(t, "optimize", msg["channel"])
	assert.EqualValues(t, 7, msg["requestSeq"])
	res := msg["result"].(map[string]interface{})
	assert.Equal(t, "const a = 1", res["optimized"])
	assert.Equal(t, ai.SourceSimulation, res["source"])
}

func TestAIRequestUnknownAction(t *testing.T) {
	f := setup(t, ai.NewAssistant(nil, nil), nil)

	require.NoError(t, f.conn.WriteJSON(map[string]interface{}{"type": "ai_request", "action": "translate"}))
	msg := f.read(t)
	assert.Equal(t, TypeError, msg["type"])
	assert.Contains(t, msg["message"], "unknown assistant action")
}

func TestChatAppendsConversation(t *testing.T) {
	svc := &gatedService{started: make(chan string, 4)}
	f := setup(t, svc, nil)

	require.NoError(t, f.conn.WriteJSON(map[string]interface{}{
		"type":    "ai_request",
		"action":  "chat",
		"payload": map[string]interface{}{"message": "hello"},
	}))
	msg := f.read(t)
	require.Equal(t, TypeAIResult, msg["type"])

	entries := f.conversation.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, assistant.RoleUser, entries[0].Role)
	assert.Equal(t, "reply to hello", entries[1].Content)
}

func TestSupersededRequestDropped(t *testing.T) {
	svc := &gatedService{started: make(chan string, 4)}
	f := setup(t, svc, nil)

	send := func(seq int, message string) {
		require.NoError(t, f.conn.WriteJSON(map[string]interface{}{
			"type":    "ai_request",
			"seq":     seq,
			"action":  "chat",
			"payload": map[string]interface{}{"message": message},
		}))
	}

	send(1, "slow")
	require.Equal(t, "slow", <-svc.started)
	send(2, "fast")

	msg := f.read(t)
	assert.Equal(t, TypeAIResult, msg["type"])
	assert.EqualValues(t, 2, msg["requestSeq"])
	assert.Equal(t, "reply to fast", msg["result"].(map[string]interface{})["response"])

	// nothing else arrives for the superseded request
	require.NoError(t, f.conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := f.conn.ReadMessage()
	assert.Error(t, err)

	assert.Eventually(t, func() bool { return f.sequencer.Dropped() == 1 }, time.Second, 10*time.Millisecond)

	// the superseded reply never reaches the conversation
	for _, e := range f.conversation.Entries() {
		assert.NotEqual(t, "reply to slow", e.Content)
	}
}

func TestBackToBackRequestsKeepArrivalOrder(t *testing.T) {
	svc := newHeldService()
	t.Cleanup(svc.open)
	f := setup(t, svc, nil)

	chat(t, f.conn, 1, "held")
	chat(t, f.conn, 2, "quick")

	msg := f.read(t)
	require.Equal(t, TypeAIResult, msg["type"])
	assert.EqualValues(t, 2, msg["requestSeq"])
	assert.Equal(t, "reply to quick", msg["result"].(map[string]interface{})["response"])

	svc.open()
	assert.Eventually(t, func() bool { return f.sequencer.Dropped() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, f.conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := f.conn.ReadMessage()
	assert.Error(t, err, "the earlier request must not answer after the later one")
}

func TestChannelsScopedPerConnection(t *testing.T) {
	svc := newHeldService()
	t.Cleanup(svc.open)
	f := setup(t, svc, nil)
	other := f.dial(t)

	chat(t, f.conn, 1, "held")
	require.Eventually(t, func() bool { return svc.called("held") }, time.Second, 10*time.Millisecond)

	chat(t, other, 1, "quick")
	msg := readFrom(t, other)
	require.Equal(t, TypeAIResult, msg["type"])
	assert.Equal(t, "reply to quick", msg["result"].(map[string]interface{})["response"])

	svc.open()
	msg = f.read(t)
	require.Equal(t, TypeAIResult, msg["type"])
	assert.Equal(t, "chat", msg["channel"])
	assert.Equal(t, "reply to held", msg["result"].(map[string]interface{})["response"])
	assert.Zero(t, f.sequencer.Dropped())
}

func TestDisconnectForgetsChannels(t *testing.T) {
	svc := newHeldService()
	t.Cleanup(svc.open)
	f := setup(t, svc, nil)

	chat(t, f.conn, 1, "held")
	require.Eventually(t, func() bool { return svc.called("held") }, time.Second, 10*time.Millisecond)

	require.NoError(t, f.conn.Close())
	require.Eventually(t, func() bool { return f.hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
	svc.open()
	assert.Eventually(t, func() bool { return f.sequencer.Dropped() == 1 }, time.Second, 10*time.Millisecond)
}

func TestBaseChannel(t *testing.T) {
	conn := id.NewConnectionID().String()
	tests := []struct {
		name   string
		scoped string
		want   string
	}{
		{"scoped", scopeChannel(conn, "chat"), "chat"},
		{"colon in channel", scopeChannel(conn, "tab:3"), "tab:3"},
		{"unscoped", "debug", "debug"},
		{"foreign prefix", "tab:3", "tab:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseChannel(tt.scoped))
		})
	}
}

func TestDeliverWaitsForRoom(t *testing.T) {
	c := newClient(nil)
	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.enqueue([]byte("queued")))
	}
	assert.False(t, c.enqueue([]byte("event")), "broadcasts never wait")

	go func() {
		time.Sleep(50 * time.Millisecond)
		<-c.send
	}()
	assert.True(t, c.deliver([]byte("reply"), time.Second))
	assert.False(t, c.deliver([]byte("late"), 20*time.Millisecond))

	c.close()
	assert.False(t, c.deliver([]byte("closed"), time.Second))
}

func TestBroadcast(t *testing.T) {
	metrics := &countingMetrics{}
	f := setup(t, ai.NewAssistant(nil, nil), metrics)

	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, f.hub.Broadcast("file_changed", map[string]string{"path": "/docs/a.pdf"}))

	msg := f.read(t)
	assert.Equal(t, "file_changed", msg["type"])
	assert.Equal(t, "/docs/a.pdf", msg["data"].(map[string]interface{})["path"])

	metrics.mu.Lock()
	assert.Equal(t, 1, metrics.open)
	assert.Equal(t, 1, metrics.messages["out:file_changed"])
	metrics.mu.Unlock()
}

func TestHubUnregisterOnDisconnect(t *testing.T) {
	f := setup(t, ai.NewAssistant(nil, nil), nil)
	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, f.conn.Close())
	assert.Eventually(t, func() bool { return f.hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, f.hub.Broadcast("autosaved", nil))
}

func TestHubCloseSendsCloseFrame(t *testing.T) {
	f := setup(t, ai.NewAssistant(nil, nil), nil)
	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	f.hub.Close()
	require.NoError(t, f.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := f.conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Eventually(t, func() bool { return f.hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
