// Package id provides centralized ID generation for the host.
//
// IDs are prefixed ULIDs:
//   - Lexicographic sortability: creation order survives string sorting
//   - Prefixed types: ann_*, sess_*, req_*, conn_* make logs readable
//   - Timestamp plus entropy: unique across the process lifetime
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// AnnotationID identifies a single annotation
type AnnotationID string

// SessionID identifies a saved workspace snapshot
type SessionID string

// RequestID identifies an API request
type RequestID string

// ConnectionID identifies one WebSocket connection
type ConnectionID string

// ============================================================================
// ID Prefixes
// ============================================================================

const (
	AnnotationPrefix = "ann"
	SessionPrefix    = "sess"
	RequestPrefix    = "req"
	ConnectionPrefix = "conn"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by monotonic crypto entropy, so
// IDs minted within the same millisecond still sort in creation order.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// ============================================================================
// Typed ID Generators
// ============================================================================

// NewAnnotationID generates a new annotation ID
func NewAnnotationID() AnnotationID {
	return AnnotationID(Default().GenerateWithPrefix(AnnotationPrefix))
}

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewConnectionID generates a new connection ID
func NewConnectionID() ConnectionID {
	return ConnectionID(Default().GenerateWithPrefix(ConnectionPrefix))
}

func (id AnnotationID) String() string { return string(id) }
func (id SessionID) String() string    { return string(id) }
func (id RequestID) String() string    { return string(id) }
func (id ConnectionID) String() string { return string(id) }

// ============================================================================
// Parsing and Validation
// ============================================================================

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// HasPrefix reports whether id is a well-formed prefixed ULID for prefix
func HasPrefix(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix+"_")
	return ok && IsValid(rest)
}

// Timestamp extracts the creation time from a plain or prefixed ULID
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
