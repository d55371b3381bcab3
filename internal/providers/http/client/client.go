// Package client is the outbound HTTP client shared by the AI providers and
// the web metadata fetcher.
//
// Requests go through a rate limiter and a circuit breaker, then resty over a
// go-retryablehttp transport. Responses with a status of 400 or above are
// returned as *StatusError and count as breaker failures.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/DocStudio/backend/internal/infrastructure/resilience"
)

// UserAgent sent on every request
const UserAgent = "DocStudio/1.0"

var ErrUnavailable = errors.New("external service unavailable")

// StatusError is a non-success HTTP response
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("http status %d: %s", e.Code, body)
}

// Options configures a client. Zero values take defaults.
type Options struct {
	Name       string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
	// RPS limits outbound requests per second; 0 is unlimited
	RPS float64
	// OnStateChange observes breaker transitions
	OnStateChange func(name string, from, to resilience.State)
}

// DefaultOptions returns production settings
func DefaultOptions(name string) Options {
	return Options{
		Name:       name,
		Timeout:    60 * time.Second,
		MaxRetries: 2,
		MinWait:    time.Second,
		MaxWait:    10 * time.Second,
	}
}

// Client wraps resty with rate limiting and a circuit breaker
type Client struct {
	resty   *resty.Client
	breaker *resilience.Breaker
	logger  *zap.Logger

	mu      sync.RWMutex
	limiter *rate.Limiter
}

// New creates a client
func New(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Name == "" {
		opts.Name = "http-external"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = opts.MaxRetries
	if opts.MinWait > 0 {
		retry.RetryWaitMin = opts.MinWait
	}
	if opts.MaxWait > 0 {
		retry.RetryWaitMax = opts.MaxWait
	}
	retry.Logger = leveled{logger.Named("retry").Sugar()}
	retry.ErrorHandler = retryablehttp.PassthroughErrorHandler

	r := resty.NewWithClient(retry.StandardClient()).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", UserAgent).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if opts.BaseURL != "" {
		r.SetBaseURL(opts.BaseURL)
	}

	breaker := resilience.New(opts.Name, resilience.Settings{
		MaxRequests: 3,
		Interval:    time.Minute,
		Cooldown:    30 * time.Second,
		ShouldTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5 || (c.Requests >= 20 && c.FailureRatio() > 0.7)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
			if opts.OnStateChange != nil {
				opts.OnStateChange(name, from, to)
			}
		},
	})

	c := &Client{resty: r, breaker: breaker, logger: logger}
	c.SetRateLimit(opts.RPS)
	return c
}

// SetRateLimit changes the request rate; rps <= 0 removes the limit
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request returns a new request bound to ctx once the limiter admits it
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if err := c.breaker.Allow(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return c.resty.R().SetContext(ctx), nil
}

// Do builds a request with build and sends it through the breaker
func (c *Client) Do(ctx context.Context, build func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	req, err := c.Request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := resilience.Call(c.breaker, func() (*resty.Response, error) {
		resp, err := build(req)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return resp, &StatusError{Code: resp.StatusCode(), Body: resp.String()}
		}
		return resp, nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, err
}

// BreakerState returns the circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// leveled adapts zap to retryablehttp.LeveledLogger
type leveled struct{ s *zap.SugaredLogger }

func (l leveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveled) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
