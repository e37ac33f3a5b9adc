package userview

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	pkgerrors "user-view/pkg/errors"
	"user-view/pkg/logger"
)

// Instance is one mount of the view outside a Bubble Tea program.
// The fetch runs on its own goroutine; its result is applied under mu and
// only while the instance is alive.
type Instance struct {
	id     string
	log    *zap.Logger
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	alive   bool
	updates chan State
	settled chan struct{}
	gone    chan struct{}
	done    chan struct{}
}

// Mount enters Loading and issues the single fetch for this mount.
// Cancelling ctx cancels the fetch; Unmount does the same and also
// discards whatever the fetch returns afterwards.
func Mount(ctx context.Context, loader Loader, log *zap.Logger) *Instance {
	id := uuid.New().String()
	ctx, cancel := context.WithCancel(logger.WithMountID(ctx, id))

	i := &Instance{
		id:      id,
		log:     logger.WithContext(ctx, log),
		cancel:  cancel,
		state:   Loading{},
		alive:   true,
		updates: make(chan State, 2), // Loading plus the settled state
		settled: make(chan struct{}),
		gone:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	i.updates <- Loading{}

	i.log.Debug("view mounted")
	go i.fetch(ctx, loader)

	return i
}

// ID returns the mount ID.
func (i *Instance) ID() string {
	return i.id
}

// State returns the current lifecycle state.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Render returns the display lines for the current state. It never fetches.
func (i *Instance) Render() []string {
	return Lines(i.State())
}

// Updates yields Loading and then the settled state. The channel is closed
// once the instance settles or unmounts.
func (i *Instance) Updates() <-chan State {
	return i.updates
}

// Settled is closed once the fetch result has been applied.
func (i *Instance) Settled() <-chan struct{} {
	return i.settled
}

// Done is closed once the fetch goroutine has returned, whether or not
// its result was applied.
func (i *Instance) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until the instance settles, unmounts or ctx is done.
func (i *Instance) Wait(ctx context.Context) (State, error) {
	select {
	case <-i.settled:
		return i.State(), nil
	case <-i.gone:
		select {
		case <-i.settled:
			return i.State(), nil
		default:
		}
		return i.State(), pkgerrors.ErrUnmounted
	case <-ctx.Done():
		return i.State(), ctx.Err()
	}
}

// Unmount cancels the in-flight fetch. Results arriving later are dropped.
// It is safe to call more than once.
func (i *Instance) Unmount() {
	i.mu.Lock()
	if !i.alive {
		i.mu.Unlock()
		return
	}
	i.alive = false
	if !Settled(i.state) {
		close(i.updates)
	}
	close(i.gone)
	i.mu.Unlock()

	i.cancel()
	i.log.Debug("view unmounted")
}

func (i *Instance) fetch(ctx context.Context, loader Loader) {
	defer close(i.done)

	var r Result
	defer func() {
		if p := recover(); p != nil {
			i.log.Error("panic while loading user", zap.Any("panic", p), zap.Stack("stack"))
			r = Result{Err: pkgerrors.NewInternalError("panic while loading user", fmt.Errorf("%v", p))}
		}
		i.apply(r)
	}()

	u, err := loader.LoadUser(ctx)
	r = Result{User: u, Err: err}
}

// apply is the liveness guard: a dead or already settled instance keeps its state.
func (i *Instance) apply(r Result) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.alive {
		i.log.Debug("dropping user result for unmounted view", zap.Bool("has_error", r.Err != nil))
		return
	}
	if Settled(i.state) {
		return
	}

	i.state = Transition(i.state, r)
	i.log.Info("view settled", zap.String("state", string(i.state.Kind())))

	// Nothing is logged once waiters are released.
	i.updates <- i.state
	close(i.updates)
	close(i.settled)
}
