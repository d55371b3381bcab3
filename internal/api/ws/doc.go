// Package ws serves the /stream WebSocket used by the UI process.
//
// Message Types (Client → Server):
//   - ai_request: {seq?, channel?, action, payload}; channel defaults to the action
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - ai_result: {seq, requestSeq, channel, action, result}, sent only when the
//     request is still the newest on its channel
//   - file_changed / autosaved: events pushed through the Hub
//   - pong, system, error
//
// Channels belong to one connection. A newer ai_request on a channel
// cancels the one it supersedes, and tickets follow arrival order. A result
// that loses the race is dropped silently. Direct replies wait briefly for
// room in a full send buffer; broadcast events do not.
//
// Example Usage:
//
//	hub := ws.NewHub(logger)
//	handler := ws.NewHandler(hub, assistant, assistant.NewSequencer(), assistant.NewConversation(), logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
