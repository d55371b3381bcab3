package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
)

// Observer records assistant outcomes
type Observer interface {
	ObserveAIRequest(action, source string, fallback bool, d time.Duration)
}

// Assistant answers requests with a provider and falls back to the
// simulation whenever the provider fails or replies with something
// unusable
type Assistant struct {
	completer Completer
	simulator *Simulator
	logger    *zap.Logger
	observer  Observer
}

// NewAssistant creates an assistant. A nil completer means simulation only.
func NewAssistant(completer Completer, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{completer: completer, simulator: NewSimulator(), logger: logger}
}

// WithObserver adds metrics tracking
func (a *Assistant) WithObserver(o Observer) *Assistant {
	a.observer = o
	return a
}

// UsesRealAI reports whether a provider is configured
func (a *Assistant) UsesRealAI() bool {
	return a.completer != nil
}

// Provider returns the provider name and model, or the simulation
func (a *Assistant) Provider() (name, model string) {
	if a.completer == nil {
		return SourceSimulation, ""
	}
	return a.completer.Name(), a.completer.Model()
}

// Request implements assistant.Service
func (a *Assistant) Request(ctx context.Context, action assistant.Action, p assistant.Payload) (assistant.Result, error) {
	if _, err := assistant.ParseAction(string(action)); err != nil {
		return assistant.Result{}, err
	}
	start := time.Now()

	if a.completer != nil {
		r, err := a.real(ctx, action, p)
		if err == nil {
			r.Source = a.completer.Name()
			a.observe(action, r.Source, false, start)
			return r, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return assistant.Result{}, ctxErr
		}
		a.logger.Warn("AI provider failed, falling back to simulation",
			zap.String("provider", a.completer.Name()),
			zap.String("action", string(action)),
			zap.Error(err))
	}

	r, err := a.simulator.Respond(action, p)
	if err != nil {
		return assistant.Result{}, err
	}
	a.observe(action, r.Source, a.completer != nil, start)
	return r, nil
}

func (a *Assistant) observe(action assistant.Action, source string, fallback bool, start time.Time) {
	if a.observer != nil {
		a.observer.ObserveAIRequest(string(action), source, fallback, time.Since(start))
	}
}

var errUnparsable = errors.New("unparsable provider reply")

func (a *Assistant) real(ctx context.Context, action assistant.Action, p assistant.Payload) (assistant.Result, error) {
	switch action {
	case assistant.ActionCodeComplete:
		reply, err := a.completer.Complete(ctx, completionMessages(p.Code), DefaultMaxTokens)
		if err != nil {
			return assistant.Result{}, err
		}
		var parsed struct {
			Suggestions []assistant.Suggestion `json:"suggestions"`
		}
		if err := api.UnmarshalFromString(stripFences(reply), &parsed); err != nil || len(parsed.Suggestions) == 0 {
			return assistant.Result{}, fmt.Errorf("%w: %v", errUnparsable, err)
		}
		return assistant.Result{Suggestions: parsed.Suggestions}, nil

	case assistant.ActionExplain:
		reply, err := a.completer.Complete(ctx, explainMessages(p.Code), DefaultMaxTokens)
		if err != nil {
			return assistant.Result{}, err
		}
		return assistant.Result{Explanation: reply}, nil

	case assistant.ActionOptimize:
		reply, err := a.completer.Complete(ctx, optimizeMessages(p.Code), OptimizeMaxTokens)
		if err != nil {
			return assistant.Result{}, err
		}
		return assistant.Result{
			Optimized: extractCode(reply, p.Code),
			Notes:     []string{"Optimizations found by the AI:", prose(reply)},
		}, nil

	case assistant.ActionDebug:
		reply, err := a.completer.Complete(ctx, debugMessages(p.Code), DefaultMaxTokens)
		if err != nil {
			return assistant.Result{}, err
		}
		var parsed struct {
			Issues []assistant.Issue `json:"issues"`
		}
		if err := api.UnmarshalFromString(stripFences(reply), &parsed); err != nil {
			return assistant.Result{Issues: []assistant.Issue{{
				Line:       1,
				Severity:   assistant.SeverityInfo,
				Message:    "AI analysis complete",
				Suggestion: reply,
			}}}, nil
		}
		if parsed.Issues == nil {
			parsed.Issues = []assistant.Issue{}
		}
		return assistant.Result{Issues: parsed.Issues}, nil

	case assistant.ActionChat:
		reply, err := a.completer.Complete(ctx, chatMessages(p), ChatMaxTokens)
		if err != nil {
			return assistant.Result{}, err
		}
		return assistant.Result{Response: reply}, nil
	}
	return assistant.Result{}, fmt.Errorf("%w: %q", assistant.ErrUnknownAction, action)
}
