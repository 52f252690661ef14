// Package session runs chat turns against a chat-completion endpoint.
//
// A Controller owns the conversation and the editable configuration of one
// UI session. A turn moves it from Idle to AwaitingReply and back; the user
// message is recorded when the turn begins and the assistant message only
// when a reply was extracted successfully.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evallife/llm-playground/internal/api"
	"github.com/evallife/llm-playground/internal/conversation"
	"github.com/evallife/llm-playground/internal/types"
)

var (
	ErrBusy        = errors.New("a request is already in progress")
	ErrEmptyPrompt = errors.New("prompt is empty")
	ErrNoTurn      = errors.New("no turn is awaiting a reply")

	errEmptyResponse = errors.New("empty response")
)

const ThinkingText = "Thinking..."

type State int

const (
	Idle State = iota
	AwaitingReply
)

func (s State) String() string {
	if s == AwaitingReply {
		return "awaiting_reply"
	}
	return "idle"
}

type StatusKind int

const (
	StatusThinking StatusKind = iota
	StatusReply
	StatusError
	StatusCleared
)

// Status is pushed to the status func. StatusThinking is provisional and is
// always followed by exactly one StatusReply or StatusError.
type Status struct {
	Kind StatusKind
	Text string
	Err  error
}

// Outcome is the resolution of a turn. Err is an *api.TransportError or an
// *api.MalformedResponseError when the turn failed.
type Outcome struct {
	Reply string
	Err   error
}

// ErrorText is the text shown in place of a reply for a failed turn.
func ErrorText(err error) string {
	return "Request failed: " + err.Error()
}

type Transport interface {
	Send(ctx context.Context, cfg types.Config, body api.ChatRequest) (*api.Response, error)
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStatusFunc registers fn for status changes. fn is called without the
// controller lock held, from whichever goroutine drives the turn.
func WithStatusFunc(fn func(Status)) Option {
	return func(c *Controller) {
		c.onStatus = fn
	}
}

type Controller struct {
	mu        sync.Mutex
	id        string
	cfg       types.Config
	store     *conversation.Store
	state     State
	turnID    string
	sending   bool
	started   time.Time
	transport Transport
	logger    *zap.Logger
	onStatus  func(Status)
}

func NewController(cfg types.Config, transport Transport, opts ...Option) *Controller {
	c := &Controller{
		id:        uuid.New().String(),
		cfg:       cfg.Clamped(),
		store:     conversation.New(),
		state:     Idle,
		transport: transport,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(
		zap.String("component", "session"),
		zap.String("session", c.id),
	)
	return c
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Messages() []types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.All()
}

func (c *Controller) Config() types.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// SetConfig replaces the configuration. Values are clamped into range. It is
// allowed mid-turn; the request of a turn reads the configuration once.
func (c *Controller) SetConfig(cfg types.Config) {
	c.mu.Lock()
	c.cfg = cfg.Clamped()
	c.mu.Unlock()
	c.logger.Debug("configuration updated",
		zap.String("endpoint", cfg.EndpointURL),
		zap.String("model", cfg.Model),
	)
}

// Begin records the user's prompt and enters AwaitingReply.
func (c *Controller) Begin(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.store.Append(types.Message{Role: types.RoleUser, Content: prompt}); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = AwaitingReply
	c.turnID = uuid.New().String()
	c.started = time.Now()
	turnID := c.turnID
	c.mu.Unlock()

	c.logger.Info("turn started", zap.String("turn", turnID))
	c.emit(Status{Kind: StatusThinking, Text: ThinkingText})
	return nil
}

// Resolve sends the pending turn and blocks until it resolves. It always
// returns the controller to Idle. Only one caller sends a given turn; a
// second concurrent caller gets ErrBusy and changes nothing.
func (c *Controller) Resolve(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.state != AwaitingReply {
		c.mu.Unlock()
		return Outcome{Err: ErrNoTurn}
	}
	if c.sending {
		c.mu.Unlock()
		return Outcome{Err: ErrBusy}
	}
	c.sending = true
	cfg := c.cfg
	req := api.BuildRequest(cfg, c.store.All())
	turnID := c.turnID
	c.mu.Unlock()

	reply, err := c.exchange(ctx, cfg, req)

	c.mu.Lock()
	if err == nil {
		// Assistant messages are never system messages; Append cannot fail here.
		_ = c.store.Append(types.Message{Role: types.RoleAssistant, Content: reply})
	}
	c.state = Idle
	c.sending = false
	elapsed := time.Since(c.started)
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("turn failed",
			zap.String("turn", turnID),
			zap.String("status", "error"),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		c.emit(Status{Kind: StatusError, Text: ErrorText(err), Err: err})
		return Outcome{Err: err}
	}

	c.logger.Info("turn completed",
		zap.String("turn", turnID),
		zap.String("status", "ok"),
		zap.Duration("duration", elapsed),
		zap.Int("reply_chars", len(reply)),
	)
	c.emit(Status{Kind: StatusReply, Text: reply})
	return Outcome{Reply: reply}
}

// Submit runs a whole turn. Errors from Begin are returned before anything
// is recorded; errors from the exchange leave the user message in place.
func (c *Controller) Submit(ctx context.Context, prompt string) (string, error) {
	if err := c.Begin(prompt); err != nil {
		return "", err
	}
	out := c.Resolve(ctx)
	return out.Reply, out.Err
}

func (c *Controller) Clear() error {
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return ErrBusy
	}
	dropped := c.store.Len()
	c.store.Clear()
	c.mu.Unlock()

	c.logger.Info("conversation cleared", zap.Int("dropped", dropped))
	c.emit(Status{Kind: StatusCleared})
	return nil
}

func (c *Controller) exchange(ctx context.Context, cfg types.Config, req api.ChatRequest) (string, error) {
	resp, err := c.transport.Send(ctx, cfg, req)
	if err != nil {
		if !api.IsTransportError(err) && !api.IsMalformedResponse(err) {
			err = &api.TransportError{Err: err}
		}
		return "", err
	}
	if resp == nil {
		return "", &api.TransportError{Err: errEmptyResponse}
	}
	return api.ParseReply(resp.Body)
}

func (c *Controller) emit(s Status) {
	if c.onStatus != nil {
		c.onStatus(s)
	}
}
