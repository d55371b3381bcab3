package assistant

import (
	"context"
	"strings"
	"sync"
)

// Ticket identifies one in-flight request on a channel
type Ticket struct {
	Channel string
	Seq     uint64
}

// Sequencer orders assistant requests per channel. Starting a request on a
// channel cancels the one it supersedes, and only the latest request's
// result is reported as current.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	latest  map[string]uint64
	cancels map[string]context.CancelFunc
	dropped uint64
	onStale func(channel string)
}

// NewSequencer creates an empty sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{
		latest:  make(map[string]uint64),
		cancels: make(map[string]context.CancelFunc),
	}
}

// OnStale registers a hook run for every dropped result
func (s *Sequencer) OnStale(fn func(channel string)) *Sequencer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStale = fn
	return s
}

// Begin issues the next sequence number for channel and returns a context
// that is cancelled when a newer request starts on the same channel.
func (s *Sequencer) Begin(ctx context.Context, channel string) (context.Context, Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.cancels[channel]; ok {
		cancel()
	}

	s.next++
	reqCtx, cancel := context.WithCancel(ctx)
	s.latest[channel] = s.next
	s.cancels[channel] = cancel
	return reqCtx, Ticket{Channel: channel, Seq: s.next}
}

// Complete reports whether t is still the newest request on its channel.
// Completing the current ticket releases its context.
func (s *Sequencer) Complete(t Ticket) bool {
	s.mu.Lock()

	if s.latest[t.Channel] != t.Seq {
		s.dropped++
		hook := s.onStale
		s.mu.Unlock()
		if hook != nil {
			hook(t.Channel)
		}
		return false
	}

	if cancel, ok := s.cancels[t.Channel]; ok {
		cancel()
		delete(s.cancels, t.Channel)
	}
	s.mu.Unlock()
	return true
}

// Current reports whether t is the newest ticket without completing it
func (s *Sequencer) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[t.Channel] == t.Seq
}

// Forget cancels and removes every channel starting with prefix. Results
// still in flight on those channels are dropped as stale.
func (s *Sequencer) Forget(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for channel, cancel := range s.cancels {
		if strings.HasPrefix(channel, prefix) {
			cancel()
			delete(s.cancels, channel)
		}
	}
	for channel := range s.latest {
		if strings.HasPrefix(channel, prefix) {
			delete(s.latest, channel)
		}
	}
}

// Dropped returns how many stale results were discarded
func (s *Sequencer) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
