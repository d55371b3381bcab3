package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State of a circuit breaker
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	}
	return "unknown"
}

// Settings configures a breaker. Zero values take defaults.
type Settings struct {
	// MaxRequests admitted while half-open; that many successes close it
	MaxRequests uint32
	// Interval after which closed-state counts reset
	Interval time.Duration
	// Cooldown spent open before probing again
	Cooldown time.Duration
	// ShouldTrip decides, after a failure, whether to open
	ShouldTrip func(Counts) bool
	// OnStateChange observes transitions
	OnStateChange func(name string, from, to State)
}

// Counts are the statistics of the current window
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// FailureRatio is failures over requests, 0 with no requests
func (c Counts) FailureRatio() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

// Breaker stops calling a dependency that keeps failing
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	deadline   time.Time
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 1
	}
	if settings.Interval <= 0 {
		settings.Interval = time.Minute
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = time.Minute
	}
	if settings.ShouldTrip == nil {
		settings.ShouldTrip = func(c Counts) bool { return c.ConsecutiveFailures > 5 }
	}

	b := &Breaker{name: name, settings: settings, now: time.Now}
	b.deadline = b.now().Add(settings.Interval)
	return b
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, advancing expired windows
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance(b.now())
	return b.state
}

// Counts returns a copy of the current window's counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Allow reports whether a call would currently be admitted without
// reserving a slot
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance(b.now())
	return b.admissible()
}

// Execute runs fn when the breaker admits it and records the outcome
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return Call(b, fn)
}

// Call runs fn through b with a typed result
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T

	gen, err := b.begin()
	if err != nil {
		return zero, err
	}

	done := false
	defer func() {
		if !done {
			b.finish(gen, false)
		}
	}()

	result, err := fn()
	done = true
	b.finish(gen, err == nil)
	return result, err
}

func (b *Breaker) begin() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.now())
	if err := b.admissible(); err != nil {
		return b.generation, err
	}
	b.counts.Requests++
	return b.generation, nil
}

func (b *Breaker) admissible() error {
	switch {
	case b.state == StateOpen:
		return ErrCircuitOpen
	case b.state == StateHalfOpen && b.counts.Requests >= b.settings.MaxRequests:
		return ErrTooManyRequests
	}
	return nil
}

func (b *Breaker) finish(gen uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.advance(now)
	if gen != b.generation {
		return
	}

	if ok {
		b.counts.TotalSuccesses++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.MaxRequests {
			b.transition(StateClosed, now)
		}
		return
	}

	b.counts.TotalFailures++
	b.counts.ConsecutiveFailures++
	b.counts.ConsecutiveSuccesses = 0
	if b.state == StateHalfOpen || b.settings.ShouldTrip(b.counts) {
		b.transition(StateOpen, now)
	}
}

// advance must be called with mu held
func (b *Breaker) advance(now time.Time) {
	switch b.state {
	case StateClosed:
		if now.After(b.deadline) {
			b.newWindow(now.Add(b.settings.Interval))
		}
	case StateOpen:
		if now.After(b.deadline) {
			b.transition(StateHalfOpen, now)
		}
	}
}

func (b *Breaker) transition(to State, now time.Time) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to

	switch to {
	case StateClosed:
		b.newWindow(now.Add(b.settings.Interval))
	case StateOpen:
		b.newWindow(now.Add(b.settings.Cooldown))
	case StateHalfOpen:
		b.newWindow(time.Time{})
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

func (b *Breaker) newWindow(deadline time.Time) {
	b.generation++
	b.counts = Counts{}
	b.deadline = deadline
}
