// Package session holds the chat session controller: the append-only message
// log, the input value, the loading flag, and the submission cycle that
// moves the session between Idle and Awaiting.
//
// A submission is split in two halves so that it fits an event loop:
// Submit commits the user message synchronously and returns a Pending
// ticket, the caller dispatches the request however it likes, and Resolve
// commits the bot reply. Exchange runs both halves inline.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"mealchat/internal/mealapi"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FallbackText is the bot message appended when a request fails for any reason.
const FallbackText = "Sorry, something went wrong. Please try again."

var (
	// ErrEmptyInput is returned by Submit when the trimmed input is empty.
	ErrEmptyInput = errors.New("empty input")
	// ErrBusy is returned by Submit while a request is outstanding.
	ErrBusy = errors.New("request already in flight")
	// ErrNotAwaiting is returned by Resolve for a ticket that is not the
	// outstanding one.
	ErrNotAwaiting = errors.New("no matching request in flight")
)

// Requester performs the outbound chat call. *mealapi.Client satisfies it.
type Requester interface {
	Chat(ctx context.Context, message string) (mealapi.Suggestion, error)
}

// Listener is notified after every commit to the log or the loading flag.
type Listener func(State)

// Pending identifies the request started by a successful Submit.
type Pending struct {
	Seq     uint64
	Message string
}

// Controller owns the session state. All methods are safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	id        string
	state     State
	revision  uint64
	seq       uint64
	inflight  uint64 // seq of the outstanding request, 0 when idle
	listeners map[int]Listener
	nextLID   int

	requester Requester
	logger    *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for diagnostics. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.id = id
		}
	}
}

// New creates an idle controller with an empty log.
func New(requester Requester, opts ...Option) *Controller {
	c := &Controller{
		id:        uuid.NewString(),
		state:     State{Messages: []Message{}},
		listeners: make(map[int]Listener),
		requester: requester,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("session", c.id))
	return c
}

// ID returns the session identifier used in logs.
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Revision increases by one on every committed change to the log or the
// loading flag. Input edits do not bump it.
func (c *Controller) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

// Awaiting reports whether a request is outstanding.
func (c *Controller) Awaiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.IsLoading
}

// SetInput mirrors the text field. It is ignored while awaiting.
func (c *Controller) SetInput(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.IsLoading {
		return
	}
	c.state.InputValue = v
}

// Subscribe registers l and returns a function that removes it.
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextLID
	c.nextLID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Submit starts a submission cycle. The user message is appended, the input
// cleared and the loading flag raised before Submit returns; the caller then
// dispatches p and hands the outcome to Resolve.
func (c *Controller) Submit(raw string) (Pending, error) {
	text := strings.TrimSpace(raw)

	c.mu.Lock()
	if c.state.IsLoading {
		c.mu.Unlock()
		return Pending{}, ErrBusy
	}
	if text == "" {
		c.mu.Unlock()
		return Pending{}, ErrEmptyInput
	}

	c.seq++
	p := Pending{Seq: c.seq, Message: text}
	c.inflight = p.Seq
	c.state.Messages = append(c.state.Messages, Message{Text: text, Sender: SenderUser})
	c.state.InputValue = ""
	c.state.IsLoading = true
	snap, listeners := c.commitLocked()
	c.mu.Unlock()

	c.logger.Debug("submitted", zap.Uint64("seq", p.Seq), zap.Int("chars", len(text)))
	notify(listeners, snap)
	return p, nil
}

// Dispatch performs the outbound call for p and folds the result into an
// Outcome. It does not touch session state.
func (c *Controller) Dispatch(ctx context.Context, p Pending) Outcome {
	if c.requester == nil {
		return Failed(errors.New("no requester configured"))
	}
	s, err := c.requester.Chat(ctx, p.Message)
	if err != nil {
		return Failed(err)
	}
	return Succeeded(s)
}

// Resolve completes the cycle started by p: exactly one bot message is
// appended and the loading flag lowered. A stale or repeated ticket returns
// ErrNotAwaiting and leaves the state alone.
func (c *Controller) Resolve(p Pending, out Outcome) error {
	c.mu.Lock()
	if !c.state.IsLoading || p.Seq == 0 || p.Seq != c.inflight {
		c.mu.Unlock()
		return ErrNotAwaiting
	}

	c.inflight = 0
	c.state.Messages = append(c.state.Messages, Message{Text: out.BotText(), Sender: SenderBot})
	c.state.IsLoading = false
	snap, listeners := c.commitLocked()
	c.mu.Unlock()

	if out.Err != nil {
		c.logger.Error("failed to fetch response",
			zap.Uint64("seq", p.Seq),
			zap.String("kind", mealapi.Kind(out.Err)),
			zap.Error(out.Err))
	} else {
		c.logger.Debug("resolved", zap.Uint64("seq", p.Seq), zap.String("meal", out.Suggestion.MealName))
	}
	notify(listeners, snap)
	return nil
}

// Exchange runs a full submission cycle inline. It returns ErrEmptyInput or
// ErrBusy if nothing was submitted, and otherwise the request error (nil on
// success); the log holds the bot reply either way.
func (c *Controller) Exchange(ctx context.Context, raw string) error {
	p, err := c.Submit(raw)
	if err != nil {
		return err
	}
	out := c.Dispatch(ctx, p)
	if err := c.Resolve(p, out); err != nil {
		return err
	}
	return out.Err
}

// commitLocked bumps the revision and captures what listeners need.
// Callers must hold c.mu.
func (c *Controller) commitLocked() (State, []Listener) {
	c.revision++
	ls := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	return c.state.clone(), ls
}

func notify(ls []Listener, s State) {
	for _, l := range ls {
		l(s)
	}
}
