package assistant

import (
	"sync"
	"time"
)

// Entry is a message with the time it was recorded
type Entry struct {
	Message
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the copilot panel's chat log
type Conversation struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewConversation creates an empty conversation
func NewConversation() *Conversation {
	return &Conversation{now: func() time.Time { return time.Now().UTC() }}
}

// Append records a message
func (c *Conversation) Append(role Role, content string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := Entry{Message: Message{Role: role, Content: content}, Timestamp: c.now()}
	c.entries = append(c.entries, e)
	return e
}

// Entries returns every recorded message in order
func (c *Conversation) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// History returns the last n messages without timestamps. n <= 0 returns all.
func (c *Conversation) History(n int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := 0
	if n > 0 && len(c.entries) > n {
		start = len(c.entries) - n
	}
	out := make([]Message, 0, len(c.entries)-start)
	for _, e := range c.entries[start:] {
		out = append(out, e.Message)
	}
	return out
}

// Len returns the number of messages
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every message
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}
