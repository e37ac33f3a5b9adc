// Package userview implements the user view component: one fetch per mount,
// a Loading/Loaded/Empty/Failed lifecycle, and a null-safe render.
package userview

import (
	"context"

	domain "user-view/internal/domain/user"
)

// Loader loads the user record for a mount. A nil user with a nil error
// means the upstream had no usable value.
type Loader interface {
	LoadUser(ctx context.Context) (*domain.User, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(ctx context.Context) (*domain.User, error)

// LoadUser calls f(ctx).
func (f LoaderFunc) LoadUser(ctx context.Context) (*domain.User, error) {
	return f(ctx)
}

// Kind names a lifecycle state.
type Kind string

const (
	KindLoading Kind = "loading"
	KindLoaded  Kind = "loaded"
	KindEmpty   Kind = "empty"
	KindFailed  Kind = "failed"
)

// State is the view lifecycle. Exactly one of Loading, Loaded, Empty or
// Failed; the unexported method closes the set.
type State interface {
	Kind() Kind
	isState()
}

// Loading is the initial state of every mount.
type Loading struct{}

// Loaded holds a non-nil user.
type Loaded struct {
	User *domain.User
}

// Empty means the fetch completed without a usable value.
type Empty struct{}

// Failed carries the transport, decode or schema error that ended the fetch.
type Failed struct {
	Reason error
}

func (Loading) Kind() Kind { return KindLoading }
func (Loaded) Kind() Kind  { return KindLoaded }
func (Empty) Kind() Kind   { return KindEmpty }
func (Failed) Kind() Kind  { return KindFailed }

func (Loading) isState() {}
func (Loaded) isState()  {}
func (Empty) isState()   {}
func (Failed) isState()  {}

// Settled reports whether s is terminal for its mount.
func Settled(s State) bool {
	_, loading := s.(Loading)
	return !loading
}

// Result is the outcome of the single fetch issued by a mount.
type Result struct {
	User *domain.User
	Err  error
}

// Transition returns the state that follows s once r arrives.
// Only Loading moves; settled states ignore further results.
func Transition(s State, r Result) State {
	if Settled(s) {
		return s
	}
	switch {
	case r.Err != nil:
		return Failed{Reason: r.Err}
	case r.User == nil:
		return Empty{}
	default:
		return Loaded{User: r.User}
	}
}
