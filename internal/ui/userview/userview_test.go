package userview

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-view/internal/domain/user"
	pkgerrors "user-view/pkg/errors"
)

// gatedLoader blocks every call until release is closed, then returns user/err.
type gatedLoader struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
	calls   atomic.Int32
	user    *domain.User
	err     error
	sawCtx  chan context.Context
}

func newGatedLoader(u *domain.User, err error) *gatedLoader {
	return &gatedLoader{
		release: make(chan struct{}),
		started: make(chan struct{}),
		sawCtx:  make(chan context.Context, 1),
		user:    u,
		err:     err,
	}
}

func (l *gatedLoader) LoadUser(ctx context.Context) (*domain.User, error) {
	l.calls.Add(1)
	l.once.Do(func() { close(l.started) })
	select {
	case l.sawCtx <- ctx:
	default:
	}
	<-l.release
	return l.user, l.err
}

func (l *gatedLoader) open() { close(l.release) }

// immediate returns a loader that answers at once and counts calls.
func immediate(u *domain.User, err error) (Loader, *atomic.Int32) {
	var calls atomic.Int32
	return LoaderFunc(func(ctx context.Context) (*domain.User, error) {
		calls.Add(1)
		return u, err
	}), &calls
}

// mountView mounts with a test logger. Cleanup unmounts and waits for the
// fetch goroutine so nothing logs after the test returns.
func mountView(t *testing.T, ctx context.Context, loader Loader) *Instance {
	t.Helper()
	i := Mount(ctx, loader, zaptest.NewLogger(t))
	t.Cleanup(func() {
		i.Unmount()
		select {
		case <-i.Done():
		case <-time.After(5 * time.Second):
			t.Error("fetch goroutine did not return")
		}
	})
	return i
}

func waitSettled(t *testing.T, i *Instance) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := i.Wait(ctx)
	require.NoError(t, err)
	return s
}

func randomUser(street string) *domain.User {
	return &domain.User{
		ID:        strconv.Itoa(randomdata.Number(1, 1000000)),
		FirstName: randomdata.FirstName(randomdata.RandomGender),
		LastName:  randomdata.LastName(),
		Address: &domain.Address{
			Street: street,
			City:   randomdata.City(),
			State:  randomdata.State(randomdata.Large),
			Zip:    randomdata.PostalCode("US"),
		},
	}
}

func TestMount_RendersLoadingBeforeResolve(t *testing.T) {
	loader := newGatedLoader(&domain.User{ID: "1"}, nil)
	i := mountView(t, context.Background(), loader)
	defer loader.open()

	<-loader.started

	assert.Equal(t, []string{LoadingText}, i.Render())
	assert.Equal(t, KindLoading, i.State().Kind())
	select {
	case <-i.Settled():
		t.Fatal("settled before the fetch resolved")
	default:
	}
}

func TestMount_NullPayloadRendersEmpty(t *testing.T) {
	loader, _ := immediate(nil, nil)

	i := mountView(t, context.Background(), loader)

	s := waitSettled(t, i)
	assert.Equal(t, Empty{}, s)
	assert.Equal(t, []string{NotFoundText}, i.Render())
}

func TestMount_TruthyPayloadRendersFieldsVerbatim(t *testing.T) {
	for n := 0; n < 25; n++ {
		u := randomUser("")
		loader, _ := immediate(u, nil)

		i := mountView(t, context.Background(), loader)
		waitSettled(t, i)

		lines := i.Render()
		require.Len(t, lines, 3)
		assert.Equal(t, "ID: "+u.ID, lines[0])
		assert.Equal(t, "Name: "+u.FirstName, lines[1])
		assert.Equal(t, "Name: "+u.LastName, lines[2])
		i.Unmount()
	}
}

func TestMount_StreetLineOnlyWhenPresent(t *testing.T) {
	withStreet := randomUser(randomdata.Street())
	noStreet := randomUser("")
	noAddress := &domain.User{ID: "9", FirstName: "Alan", LastName: "Turing"}

	tests := []struct {
		name   string
		user   *domain.User
		street string
	}{
		{"street present", withStreet, withStreet.Address.Street},
		{"street empty", noStreet, ""},
		{"address absent", noAddress, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := immediate(tt.user, nil)
			i := mountView(t, context.Background(), loader)
			waitSettled(t, i)

			lines := i.Render()
			if tt.street == "" {
				assert.Len(t, lines, 3)
				for _, line := range lines {
					assert.NotContains(t, line, "Address:")
				}
				return
			}
			require.Len(t, lines, 4)
			assert.Equal(t, "Address: "+tt.street, lines[3])
		})
	}
}

func TestMount_ExactlyOneFetchRegardlessOfRenders(t *testing.T) {
	loader := newGatedLoader(&domain.User{ID: "1"}, nil)
	i := mountView(t, context.Background(), loader)

	<-loader.started
	for n := 0; n < 100; n++ {
		_ = i.Render()
		_ = i.State()
	}
	loader.open()
	waitSettled(t, i)
	for n := 0; n < 100; n++ {
		_ = i.Render()
	}

	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestMount_EachMountFetchesOnce(t *testing.T) {
	loader, calls := immediate(&domain.User{ID: "1"}, nil)

	for n := 0; n < 3; n++ {
		i := mountView(t, context.Background(), loader)
		waitSettled(t, i)
		i.Unmount()
	}

	assert.Equal(t, int32(3), calls.Load())
}

func TestMount_UpdatesYieldLoadingThenSettled(t *testing.T) {
	loader, _ := immediate(&domain.User{ID: "7", FirstName: "Ada"}, nil)
	i := mountView(t, context.Background(), loader)

	var kinds []Kind
	for s := range i.Updates() {
		kinds = append(kinds, s.Kind())
	}

	assert.Equal(t, []Kind{KindLoading, KindLoaded}, kinds)
}

func TestMount_FailureBecomesFailedState(t *testing.T) {
	upstream := pkgerrors.NewStatusError(500, "boom")
	loader, _ := immediate(nil, upstream)

	i := mountView(t, context.Background(), loader)

	s := waitSettled(t, i)
	failed, ok := s.(Failed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Reason, upstream)
	assert.Equal(t, []string{"Failed to load user: unexpected status 500: boom"}, i.Render())
}

func TestMount_LoaderPanicBecomesFailedState(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context) (*domain.User, error) {
		panic("loader exploded")
	})

	i := mountView(t, context.Background(), loader)

	s := waitSettled(t, i)
	require.Equal(t, KindFailed, s.Kind())
	assert.Contains(t, i.Render()[0], "loader exploded")
}

func TestUnmount_DropsLateResult(t *testing.T) {
	loader := newGatedLoader(&domain.User{ID: "1", FirstName: "Late"}, nil)
	i := mountView(t, context.Background(), loader)

	<-loader.started
	fetchCtx := <-loader.sawCtx

	i.Unmount()
	assert.ErrorIs(t, fetchCtx.Err(), context.Canceled)

	loader.open()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := i.Wait(ctx)
	assert.ErrorIs(t, err, pkgerrors.ErrUnmounted)
	assert.Equal(t, Loading{}, s)

	<-i.Done()
	assert.Equal(t, Loading{}, i.State())

	var kinds []Kind
	for s := range i.Updates() {
		kinds = append(kinds, s.Kind())
	}
	assert.Equal(t, []Kind{KindLoading}, kinds)
}

func TestUnmount_Twice(t *testing.T) {
	loader, _ := immediate(nil, nil)
	i := mountView(t, context.Background(), loader)
	waitSettled(t, i)

	i.Unmount()
	assert.NotPanics(t, i.Unmount)

	s, err := i.Wait(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, Empty{}, s)
}

func TestWait_ContextDone(t *testing.T) {
	loader := newGatedLoader(nil, nil)
	i := mountView(t, context.Background(), loader)
	defer loader.open()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := i.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Loading{}, s)
}

func TestMount_ParentCancelFailsFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loader := LoaderFunc(func(ctx context.Context) (*domain.User, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	i := mountView(t, ctx, loader)
	cancel()

	s := waitSettled(t, i)
	failed, ok := s.(Failed)
	require.True(t, ok)
	assert.True(t, errors.Is(failed.Reason, context.Canceled))
}

func TestMount_IDsAreUnique(t *testing.T) {
	loader, _ := immediate(nil, nil)
	a := mountView(t, context.Background(), loader)
	b := mountView(t, context.Background(), loader)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestUnmount_FetchGoroutineExitsWithoutApplying(t *testing.T) {
	loader := newGatedLoader(&domain.User{ID: "1"}, nil)
	i := mountView(t, context.Background(), loader)
	<-loader.started

	i.Unmount()
	select {
	case <-i.Done():
		t.Fatal("fetch goroutine returned while the loader was still blocked")
	default:
	}

	loader.open()
	select {
	case <-i.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("fetch goroutine did not return")
	}

	assert.Equal(t, Loading{}, i.State())
	select {
	case <-i.Settled():
		t.Fatal("unmounted view settled")
	default:
	}
}
