package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DipamJha/foodPro/internal/domain/product"
	"github.com/DipamJha/foodPro/internal/domain/scan"
)

type notFoundFetcher struct{}

func (notFoundFetcher) Lookup(context.Context, string) (*product.Record, error) {
	return nil, product.ErrNotFound
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestSessions(cfg Config) (*Sessions, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg.Now = clock.Now
	return NewSessions(cfg, scan.Options{Fetcher: notFoundFetcher{}}), clock
}

func TestSessions_MountGetUnmount(t *testing.T) {
	s, _ := newTestSessions(Config{})

	sess, err := s.Mount()
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID())
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, s.Unmount(sess.ID()))
	assert.Equal(t, 0, s.Len())

	_, err = s.Get(sess.ID())
	require.ErrorIs(t, err, scan.ErrSessionNotFound)
	require.ErrorIs(t, s.Unmount(sess.ID()), scan.ErrSessionNotFound)
}

func TestSessions_FreshStatePerMount(t *testing.T) {
	s, _ := newTestSessions(Config{})

	a, err := s.Mount()
	require.NoError(t, err)
	a.Scan(context.Background(), "123")

	b, err := s.Mount()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, scan.State{}, b.State())
	assert.Equal(t, "123", a.State().Barcode)
}

func TestSessions_Capacity(t *testing.T) {
	s, _ := newTestSessions(Config{Max: 2})

	first, err := s.Mount()
	require.NoError(t, err)
	_, err = s.Mount()
	require.NoError(t, err)

	_, err = s.Mount()
	require.ErrorIs(t, err, scan.ErrRegistryFull)

	require.NoError(t, s.Unmount(first.ID()))
	_, err = s.Mount()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Max())
}

func TestSessions_CapacityReclaimsExpired(t *testing.T) {
	s, clock := newTestSessions(Config{Max: 2, TTL: time.Minute})

	stale, err := s.Mount()
	require.NoError(t, err)
	clock.now = clock.now.Add(50 * time.Second)
	fresh, err := s.Mount()
	require.NoError(t, err)

	// Only stale is past its TTL; no sweep has run yet.
	clock.now = clock.now.Add(20 * time.Second)
	third, err := s.Mount()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	_, err = s.Get(stale.ID())
	require.ErrorIs(t, err, scan.ErrSessionNotFound)
	for _, id := range []string{fresh.ID(), third.ID()} {
		_, err = s.Get(id)
		require.NoError(t, err)
	}

	_, err = s.Mount()
	require.ErrorIs(t, err, scan.ErrRegistryFull)
}

func TestSessions_Expiry(t *testing.T) {
	s, clock := newTestSessions(Config{TTL: time.Minute})

	idle, err := s.Mount()
	require.NoError(t, err)
	active, err := s.Mount()
	require.NoError(t, err)

	clock.now = clock.now.Add(40 * time.Second)
	_, err = s.Get(active.ID())
	require.NoError(t, err)

	clock.now = clock.now.Add(30 * time.Second)

	// Idle for 70s: not visible even before a sweep.
	_, err = s.Get(idle.ID())
	require.ErrorIs(t, err, scan.ErrSessionNotFound)

	assert.Equal(t, 1, s.Sweep(clock.now))
	assert.Equal(t, 1, s.Len())

	_, err = s.Get(active.ID())
	require.NoError(t, err)
}

func TestSessions_NoTTL(t *testing.T) {
	s, clock := newTestSessions(Config{})

	sess, err := s.Mount()
	require.NoError(t, err)

	clock.now = clock.now.Add(24 * time.Hour)
	assert.Equal(t, 0, s.Sweep(clock.now))
	_, err = s.Get(sess.ID())
	require.NoError(t, err)
}

func TestSessions_Sweeper(t *testing.T) {
	s := NewSessions(Config{TTL: time.Millisecond}, scan.Options{Fetcher: notFoundFetcher{}})
	_, err := s.Mount()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	swept := make(chan int, 1)
	s.StartSweeper(ctx, 5*time.Millisecond, func(n int) {
		select {
		case swept <- n:
		default:
		}
	})

	select {
	case n := <-swept:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not run")
	}
	assert.Equal(t, 0, s.Len())
}
