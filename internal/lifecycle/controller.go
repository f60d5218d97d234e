// Package lifecycle owns the remote-access service slot and moves it between
// Uninitialized, Active and Suspended in response to host notifications.
//
// The host delivers notifications one at a time (see host.Bus); the
// controller relies on that ordering and does not serialize transitions
// itself. The mutex only protects readers on other goroutines (status
// endpoints, metrics).
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/launcher"
)

// State of the service slot.
type State string

const (
	Uninitialized State = "uninitialized"
	Active        State = "active"
	Suspended     State = "suspended"
)

var (
	// ErrNoLiveService is the fatal assertion raised when the host suspends
	// a process whose slot is already empty.
	ErrNoLiveService = errors.New("lifecycle: suspend with no live service")
	// ErrAlreadyBooted is raised when Boot runs a second time.
	ErrAlreadyBooted = errors.New("lifecycle: already booted")
)

// Service is the long-lived object whose lifetime the controller manages.
type Service interface {
	Initialize() error
	Dispose() error
}

// Factory builds a fresh service bound to the selected launcher.
type Factory func(launcher.Launcher) Service

// Controller holds at most one live Service.
type Controller struct {
	launcher  launcher.Launcher
	factory   Factory
	logger    *zap.Logger
	observers []Observer
	now       func() time.Time

	mu         sync.RWMutex
	state      State
	slot       Service
	generation uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithObserver adds an observer notified after each transition.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}

// New creates a controller in the Uninitialized state.
func New(l launcher.Launcher, factory Factory, opts ...Option) *Controller {
	c := &Controller{
		launcher: l,
		factory:  factory,
		logger:   zap.NewNop(),
		now:      time.Now,
		state:    Uninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to the host's suspend notifications and boots the first
// service. Errors from the service's Initialize are returned unchanged; the
// subscriptions are in place either way.
func (c *Controller) Start(events host.EventSource) ([]*host.Subscription, error) {
	subs := []*host.Subscription{
		events.Subscribe(host.Suspend, func(host.Event) {
			if err := c.Suspend(); err != nil {
				c.logger.Error("Service dispose failed", zap.Error(err))
			}
		}),
		events.Subscribe(host.SuspendCanceled, func(host.Event) {
			if err := c.SuspendCanceled(); err != nil {
				c.logger.Error("Service initialize failed", zap.Error(err))
			}
		}),
	}
	return subs, c.Boot()
}

// Boot creates and initializes the first service. It panics if called twice.
func (c *Controller) Boot() error {
	c.mu.Lock()
	if c.state != Uninitialized {
		c.mu.Unlock()
		panic(ErrAlreadyBooted)
	}
	c.mu.Unlock()

	return c.activate(TransitionBoot, Uninitialized)
}

// Suspend disposes the live service and empties the slot. Calling it with an
// empty slot means the host broke its suspend/resume pairing: it panics with
// ErrNoLiveService.
//
// The slot is cleared even when Dispose fails so that the next resume never
// sees two instances.
func (c *Controller) Suspend() error {
	c.mu.RLock()
	svc, from, gen := c.slot, c.state, c.generation
	c.mu.RUnlock()

	if svc == nil {
		panic(fmt.Errorf("%w (state %s)", ErrNoLiveService, from))
	}

	c.logger.Info("Disposing service", zap.Uint64("generation", gen))
	err := svc.Dispose()

	c.mu.Lock()
	c.slot = nil
	c.state = Suspended
	c.mu.Unlock()

	c.notify(Transition{Kind: TransitionSuspend, From: from, To: Suspended, Generation: gen, Err: err, At: c.now()})
	return err
}

// SuspendCanceled creates and initializes a fresh service after a suspend.
// Outside the Suspended state the notification is ignored: the host pairs
// suspend and resume, so a stray resume is not a transition.
func (c *Controller) SuspendCanceled() error {
	c.mu.RLock()
	from := c.state
	c.mu.RUnlock()

	if from != Suspended {
		c.logger.Warn("Ignoring resume outside suspended state", zap.String("state", string(from)))
		return nil
	}
	return c.activate(TransitionResume, Suspended)
}

func (c *Controller) activate(kind TransitionKind, from State) error {
	svc := c.factory(c.launcher)

	c.mu.Lock()
	c.slot = svc
	c.state = Active
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.logger.Info("Initializing service", zap.String("transition", string(kind)), zap.Uint64("generation", gen))
	err := svc.Initialize()

	c.notify(Transition{Kind: kind, From: from, To: Active, Generation: gen, Err: err, At: c.now()})
	return err
}

func (c *Controller) notify(t Transition) {
	for _, o := range c.observers {
		o.ObserveTransition(t)
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Current returns the live service, or nil while suspended.
func (c *Controller) Current() Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slot
}

// Generation counts the services created so far.
func (c *Controller) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Launcher returns the launcher every service is bound to.
func (c *Controller) Launcher() launcher.Launcher {
	return c.launcher
}
