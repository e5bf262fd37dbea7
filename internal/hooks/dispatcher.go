// SPDX-License-Identifier: MPL-2.0

package hooks

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/scripthook/scripthook/pkg/hook"
)

const (
	// FaultIsolate invokes every hook in a bucket, logging and collecting faults.
	FaultIsolate FaultPolicy = "isolate"
	// FaultFailFast stops a bucket at its first fault.
	FaultFailFast FaultPolicy = "fail-fast"
)

const (
	// StateConstructed is a dispatcher that has not yet received Init.
	StateConstructed State = iota
	// StateActive is a dispatcher firing lifecycle events.
	StateActive
	// StateDestroyed is a dispatcher that ignores every event.
	StateDestroyed
)

var (
	// ErrHookFault is wrapped by every InvocationError.
	ErrHookFault = errors.New("hook invocation failed")
	// ErrInvalidFaultPolicy is returned when a FaultPolicy value is not recognized.
	ErrInvalidFaultPolicy = errors.New("invalid fault policy")
)

type (
	// FaultPolicy decides what a dispatcher does when a hook fails.
	FaultPolicy string

	// InvalidFaultPolicyError is returned when a FaultPolicy value is not recognized.
	// It wraps ErrInvalidFaultPolicy for errors.Is() compatibility.
	InvalidFaultPolicyError struct {
		Value FaultPolicy
	}

	// State is a dispatcher's lifecycle state.
	State int

	// InvocationError reports a hook that returned an error or panicked.
	InvocationError struct {
		hook.Descriptor
		Owner string
		Name  string
		Cause error
	}

	// Observer is notified after every hook invocation.
	Observer interface {
		HookInvoked(d hook.Descriptor, owner, name string, elapsed time.Duration, err error)
	}

	// Dispatcher fires the hooks of one scene category in lifecycle order.
	// The host creates one per scene category it enters and forwards its
	// lifecycle callbacks. A Dispatcher is driven from a single goroutine.
	Dispatcher struct {
		scene     hook.SceneCategory
		registry  *Registry
		hostScene func() hook.HostScene
		policy    FaultPolicy
		logger    *log.Logger
		observer  Observer
		state     State
	}

	// Option configures a Dispatcher.
	Option func(*Dispatcher)
)

// WithHostScene sets the function reporting the host's current scene. It is
// consulted once, during Init.
func WithHostScene(fn func() hook.HostScene) Option {
	return func(d *Dispatcher) { d.hostScene = fn }
}

// WithFaultPolicy sets the fault policy. The default is FaultIsolate.
func WithFaultPolicy(p FaultPolicy) Option {
	return func(d *Dispatcher) { d.policy = p }
}

// WithLogger sets the logger faults are reported to.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithObserver sets an observer notified after every invocation.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// NewDispatcher binds a dispatcher to scene for its whole life.
func NewDispatcher(scene hook.SceneCategory, registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		scene:     scene,
		registry:  registry,
		hostScene: func() hook.HostScene { return "" },
		policy:    FaultIsolate,
		state:     StateConstructed,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	return d
}

// Scene returns the category the dispatcher is bound to.
func (d *Dispatcher) Scene() hook.SceneCategory { return d.scene }

// State returns the current lifecycle state.
func (d *Dispatcher) State() State { return d.state }

// Init activates the dispatcher and fires init hooks. An every-scene
// dispatcher created during a bootstrap context destroys itself instead and
// fires nothing, now or later.
func (d *Dispatcher) Init() error {
	if d.state != StateConstructed {
		return nil
	}
	if d.scene == hook.SceneEveryScene {
		if hs := d.hostScene(); hs.Bootstrapping() {
			d.state = StateDestroyed
			d.logger.Debug("dispatcher destroyed in bootstrap context", "scene", d.scene, "host_scene", hs)
			return nil
		}
	}
	d.state = StateActive
	return d.fire(hook.EventInit)
}

// Start fires start hooks.
func (d *Dispatcher) Start() error { return d.fireActive(hook.EventStart) }

// Update fires update hooks.
func (d *Dispatcher) Update() error { return d.fireActive(hook.EventUpdate) }

// FixedUpdate fires fixed-update hooks.
func (d *Dispatcher) FixedUpdate() error { return d.fireActive(hook.EventFixedUpdate) }

// LateUpdate fires late-update hooks.
func (d *Dispatcher) LateUpdate() error { return d.fireActive(hook.EventLateUpdate) }

// RenderOverlay fires render-overlay hooks.
func (d *Dispatcher) RenderOverlay() error { return d.fireActive(hook.EventRenderOverlay) }

// Teardown fires teardown hooks and destroys the dispatcher. A dispatcher
// that never became active is destroyed silently.
func (d *Dispatcher) Teardown() error {
	if d.state != StateActive {
		d.state = StateDestroyed
		return nil
	}
	d.state = StateDestroyed
	return d.fire(hook.EventTeardown)
}

// Fire delivers event through the matching lifecycle method.
func (d *Dispatcher) Fire(event hook.LifecycleEvent) error {
	switch event {
	case hook.EventInit:
		return d.Init()
	case hook.EventTeardown:
		return d.Teardown()
	case hook.EventStart, hook.EventUpdate, hook.EventFixedUpdate, hook.EventLateUpdate, hook.EventRenderOverlay:
		return d.fireActive(event)
	default:
		return &hook.InvalidLifecycleEventError{Value: event}
	}
}

func (d *Dispatcher) fireActive(event hook.LifecycleEvent) error {
	if d.state != StateActive {
		return nil
	}
	return d.fire(event)
}

// fire invokes the bucket for event in registration order.
func (d *Dispatcher) fire(event hook.LifecycleEvent) error {
	desc := hook.Descriptor{Scene: d.scene, Event: event}

	var faults []error
	for _, e := range d.registry.Lookup(d.scene, event) {
		err := d.invoke(desc, e)
		if err == nil {
			continue
		}
		d.logger.Error("hook failed", "hook", e.QualifiedName(), "event", desc.String(), "err", err)
		if d.policy == FaultFailFast {
			return err
		}
		faults = append(faults, err)
	}
	return errors.Join(faults...)
}

func (d *Dispatcher) invoke(desc hook.Descriptor, e Entry) (err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			err = &InvocationError{Descriptor: desc, Owner: e.Owner, Name: e.Name, Cause: err}
		}
		if d.observer != nil {
			d.observer.HookInvoked(desc, e.Owner, e.Name, time.Since(start), err)
		}
	}()
	return e.Func()
}

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateActive:
		return "active"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Error implements the error interface for InvocationError.
func (e *InvocationError) Error() string {
	name := e.Name
	if e.Owner != "" {
		name = e.Owner + "." + e.Name
	}
	return fmt.Sprintf("hook %s for %s: %v", name, e.Descriptor, e.Cause)
}

// Unwrap exposes both ErrHookFault and the cause to errors.Is and errors.As.
func (e *InvocationError) Unwrap() []error { return []error{ErrHookFault, e.Cause} }

// String returns the string representation of the FaultPolicy.
func (p FaultPolicy) String() string { return string(p) }

// IsValid returns whether the FaultPolicy is one of the defined policies,
// and a list of validation errors if it is not.
func (p FaultPolicy) IsValid() (bool, []error) {
	switch p {
	case FaultIsolate, FaultFailFast:
		return true, nil
	default:
		return false, []error{&InvalidFaultPolicyError{Value: p}}
	}
}

// Error implements the error interface for InvalidFaultPolicyError.
func (e *InvalidFaultPolicyError) Error() string {
	return fmt.Sprintf("invalid fault policy %q (valid: isolate, fail-fast)", e.Value)
}

// Unwrap returns ErrInvalidFaultPolicy for errors.Is() compatibility.
func (e *InvalidFaultPolicyError) Unwrap() error { return ErrInvalidFaultPolicy }
