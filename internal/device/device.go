// Package device acquires the "current location" of the machine running the
// locator: an IP geolocation lookup, a configured fixed position, or nothing.
package device

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/directory-locator/internal/geo"
)

// Kind classifies device location failures.
type Kind int

const (
	// Unavailable means no position could be determined.
	Unavailable Kind = iota
	// PermissionDenied means location lookups are disabled.
	PermissionDenied
	// Timeout means the provider did not answer within Options.Timeout.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case Timeout:
		return "timeout"
	default:
		return "unavailable"
	}
}

// Error is the only error type returned by Locator.Acquire.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "device location: " + e.Kind.String()
	}
	return "device location: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a device Error of kind k.
func IsKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}

// Options are passed to the provider unchanged.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaxAge is how old a cached fix may be and still be returned. Zero
	// demands a fresh fix.
	MaxAge time.Duration
}

// Provider is the device location collaborator.
type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (geo.Coordinate, error)
}

// Locator wraps a Provider with timeout enforcement and error normalization.
type Locator struct {
	provider Provider
	opts     Options
}

// NewLocator creates a Locator.
func NewLocator(p Provider, opts Options) *Locator {
	return &Locator{provider: p, opts: opts}
}

// Options returns the options passed to the provider.
func (l *Locator) Options() Options { return l.opts }

// Acquire asks the provider for the current position. Every failure comes back
// as *Error; a provider that outlives Options.Timeout yields a Timeout error.
func (l *Locator) Acquire(ctx context.Context) (geo.Coordinate, error) {
	if l.provider == nil {
		return geo.Coordinate{}, &Error{Kind: Unavailable}
	}

	callCtx := ctx
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	type answer struct {
		c   geo.Coordinate
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		c, err := l.provider.CurrentPosition(callCtx, l.opts)
		ch <- answer{c, err}
	}()

	select {
	case a := <-ch:
		if a.err != nil {
			return geo.Coordinate{}, l.classify(callCtx, a.err)
		}
		if !a.c.Valid() {
			return geo.Coordinate{}, &Error{Kind: Unavailable, Err: errors.New("provider returned an invalid coordinate")}
		}
		return a.c, nil
	case <-callCtx.Done():
		return geo.Coordinate{}, l.classify(callCtx, callCtx.Err())
	}
}

func (l *Locator) classify(ctx context.Context, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: Timeout, Err: err}
	}
	return &Error{Kind: Unavailable, Err: err}
}
