package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var (
	ErrUnknownAction = errors.New("unknown assistant action")
	ErrStale         = errors.New("superseded by a newer request")
)

// Action names an assistant operation
type Action string

const (
	ActionCodeComplete Action = "code_complete"
	ActionExplain      Action = "explain"
	ActionOptimize     Action = "optimize"
	ActionDebug        Action = "debug"
	ActionChat         Action = "chat"
)

// Actions lists every supported action
var Actions = []Action{ActionCodeComplete, ActionExplain, ActionOptimize, ActionDebug, ActionChat}

// ParseAction validates an action name
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Role of a chat message author
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Payload is the action input
type Payload struct {
	Code     string    `json:"code,omitempty"`
	Language string    `json:"language,omitempty"`
	Message  string    `json:"message,omitempty"`
	Context  string    `json:"context,omitempty"`
	History  []Message `json:"history,omitempty"`
}

// Suggestion is one code completion candidate
type Suggestion struct {
	Text        string  `json:"text"`
	Description string  `json:"description"`
	Score       float64 `json:"score,omitempty"`
}

// Severity of a debug finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Issue is one debug finding
type Issue struct {
	Line       int      `json:"line"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
}

// Result is the union of every action's output; only the fields for the
// requested action are set
type Result struct {
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
	Optimized   string       `json:"optimized,omitempty"`
	Notes       []string     `json:"-"`
	Issues      []Issue      `json:"issues,omitempty"`
	Response    string       `json:"response,omitempty"`
	Source      string       `json:"source"`
}

// MarshalJSON writes optimize notes under "suggestions" as plain strings
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	if len(r.Notes) == 0 {
		return sonic.ConfigStd.Marshal(plain(r))
	}
	return sonic.ConfigStd.Marshal(struct {
		plain
		Suggestions []string `json:"suggestions"`
	}{plain(r), r.Notes})
}

// Service answers assistant requests
type Service interface {
	Request(ctx context.Context, action Action, payload Payload) (Result, error)
}
