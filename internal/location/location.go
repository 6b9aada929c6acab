// Package location runs the one-shot "where is the user" flow against a platform
// geolocation capability and turns its failures into fixed user-facing messages.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State of a Flow. A flow moves idle -> requesting -> one terminal state.
type State string

const (
	StateIdle        State = "idle"
	StateRequesting  State = "requesting"
	StateResolved    State = "resolved"
	StateDenied      State = "denied"
	StateUnavailable State = "unavailable"
	StateTimedOut    State = "timed_out"
	StateUnsupported State = "unsupported"
	StateFailed      State = "failed"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s != StateIdle && s != StateRequesting
}

var (
	ErrLocationUnsupported      = errors.New("geolocation not supported")
	ErrLocationPermissionDenied = errors.New("geolocation permission denied")
	ErrLocationUnavailable      = errors.New("position unavailable")
	ErrLocationTimeout          = errors.New("position request timed out")
	ErrLocationUnknown          = errors.New("unknown geolocation error")
)

// Coordinates in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PositionOptions mirrors the platform's request options.
type PositionOptions struct {
	EnableHighAccuracy bool          `json:"enableHighAccuracy"`
	Timeout            time.Duration `json:"-"`
	MaximumAge         time.Duration `json:"-"`
}

// TimeoutMillis and MaximumAgeMillis are the values handed to the platform API.
func (o PositionOptions) TimeoutMillis() int64 { return o.Timeout.Milliseconds() }
func (o PositionOptions) MaximumAgeMillis() int64 { return o.MaximumAge.Milliseconds() }

// DefaultOptions: high accuracy, five second bound, never reuse a cached fix.
var DefaultOptions = PositionOptions{
	EnableHighAccuracy: true,
	Timeout:            5 * time.Second,
	MaximumAge:         0,
}

// ErrorCode is the platform's numeric position error code.
type ErrorCode int

const (
	CodePermissionDenied    ErrorCode = 1
	CodePositionUnavailable ErrorCode = 2
	CodeTimeout             ErrorCode = 3
)

// PositionError is a coded failure reported by the platform.
type PositionError struct {
	Code    ErrorCode
	Message string
}

func (e *PositionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("position error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("position error %d", e.Code)
}

// LocationProvider is the platform geolocation capability.
type LocationProvider interface {
	// Supported reports whether the platform exposes geolocation at all.
	Supported() bool
	// CurrentPosition requests one position fix.
	CurrentPosition(ctx context.Context, opts PositionOptions) (Coordinates, error)
}

// Result is the outcome of a flow.
type Result struct {
	State       State
	Coordinates Coordinates
	Err         error
}

// Flow issues at most one position request. It is safe for concurrent use; later
// Acquire calls return the first result without asking the provider again.
type Flow struct {
	provider     LocationProvider
	opts         PositionOptions
	onTransition func(from, to State)

	mu     sync.Mutex
	state  State
	result Result
	done   chan struct{}
}

// NewFlow returns an idle flow. onTransition may be nil.
func NewFlow(provider LocationProvider, opts PositionOptions, onTransition func(from, to State)) *Flow {
	return &Flow{
		provider:     provider,
		opts:         opts,
		onTransition: onTransition,
		state:        StateIdle,
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Acquire runs the flow. The provider call is bounded by opts.Timeout; a provider that
// does not answer in time leaves the flow in StateTimedOut.
func (f *Flow) Acquire(ctx context.Context) Result {
	f.mu.Lock()
	if f.state != StateIdle {
		done := f.done
		f.mu.Unlock()
		if done != nil {
			<-done
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.result
	}
	f.done = make(chan struct{})
	defer close(f.done)

	if f.provider == nil || !f.provider.Supported() {
		res := Result{State: StateUnsupported, Err: ErrLocationUnsupported}
		f.finishLocked(res)
		f.mu.Unlock()
		return res
	}
	f.transitionLocked(StateRequesting)
	f.mu.Unlock()

	res := f.request(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.finishLocked(res)
	return f.result
}

func (f *Flow) request(ctx context.Context) Result {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	type answer struct {
		coords Coordinates
		err    error
	}
	ch := make(chan answer, 1)
	go func() {
		c, err := f.provider.CurrentPosition(ctx, f.opts)
		ch <- answer{c, err}
	}()

	select {
	case a := <-ch:
		if a.err != nil {
			return classify(a.err)
		}
		return Result{State: StateResolved, Coordinates: a.coords}
	case <-ctx.Done():
		return Result{State: StateTimedOut, Err: fmt.Errorf("%w: %w", ErrLocationTimeout, ctx.Err())}
	}
}

func (f *Flow) finishLocked(res Result) {
	f.transitionLocked(res.State)
	f.result = res
}

func (f *Flow) transitionLocked(to State) {
	from := f.state
	f.state = to
	if f.onTransition != nil && from != to {
		f.onTransition(from, to)
	}
}

// classify maps a provider error to a terminal result.
func classify(err error) Result {
	var pe *PositionError
	if errors.As(err, &pe) {
		switch pe.Code {
		case CodePermissionDenied:
			return Result{State: StateDenied, Err: fmt.Errorf("%w: %w", ErrLocationPermissionDenied, err)}
		case CodePositionUnavailable:
			return Result{State: StateUnavailable, Err: fmt.Errorf("%w: %w", ErrLocationUnavailable, err)}
		case CodeTimeout:
			return Result{State: StateTimedOut, Err: fmt.Errorf("%w: %w", ErrLocationTimeout, err)}
		}
	}
	switch {
	case errors.Is(err, ErrLocationUnsupported):
		return Result{State: StateUnsupported, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return Result{State: StateTimedOut, Err: fmt.Errorf("%w: %w", ErrLocationTimeout, err)}
	}
	return Result{State: StateFailed, Err: fmt.Errorf("%w: %w", ErrLocationUnknown, err)}
}

// Acquire runs a fresh flow once with opts.
func Acquire(ctx context.Context, provider LocationProvider, opts PositionOptions) Result {
	return NewFlow(provider, opts, nil).Acquire(ctx)
}
