package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(_ context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func pollN(p *probe, n int) {
	for range n {
		p.poll(context.Background())
	}
}

func serve(t *testing.T, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	return w
}

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, passing)
	h.AddLivenessCheck("gc", time.Second, passing)

	w := serve(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLiveEndpoint_NoChecks(t *testing.T) {
	w := serve(t, New().LiveEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLiveEndpoint_Failing(t *testing.T) {
	h := New()
	h.AddLivenessCheck("upstream", time.Second, failing("connection refused"))
	pollN(h.live[0], failureThreshold)

	w := serve(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"upstream":"connection refused"}}`, w.Body.String())
}

func TestLiveEndpoint_BelowThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("flaky", time.Second, failing("temporary"))
	pollN(h.live[0], failureThreshold-1)

	w := serve(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.AddReadinessCheck("sessions", time.Second, passing)

	w := serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"_readiness":"service is not ready"}}`, w.Body.String())

	h.SetReady(true)
	w = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)

	h.SetReady(false)
	w = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyEndpoint_OneFailing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("upstream", time.Second, passing)
	h.AddReadinessCheck("sessions", time.Second, failing("at capacity"))
	h.SetReady(true)
	pollN(h.ready[1], failureThreshold)

	w := serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"sessions":"at capacity"}}`, w.Body.String())
	assert.False(t, h.IsReady())
}

func TestIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("sessions", time.Second, passing)

	assert.False(t, h.IsReady())
	h.SetReady(true)
	assert.True(t, h.IsReady())
	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestProbe_Recovery(t *testing.T) {
	down := true
	p := newProbe("flaky", time.Second, func(_ context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	})

	pollN(p, failureThreshold)
	assert.False(t, p.healthy.Load())

	down = false
	pollN(p, successThreshold)
	assert.True(t, p.healthy.Load())
}

func TestProbe_LastError(t *testing.T) {
	p := newProbe("upstream", time.Second, failing("timeout"))
	assert.Nil(t, p.err())

	p.poll(context.Background())
	assert.EqualError(t, p.err(), "timeout")
}

func TestProbe_Timeout(t *testing.T) {
	p := newProbe("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	p.poll(context.Background())
	require.ErrorIs(t, p.err(), context.DeadlineExceeded)
}

func TestStartStop(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, passing)

	h.Start(context.Background(), 100*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.AddLivenessCheck("live", time.Second, failing("err"))
	h.AddReadinessCheck("ready", time.Second, passing)
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, 5*time.Millisecond)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				h.IsReady()
				h.LiveEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/livez", nil))
				h.ReadyEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}

func TestCapacityCheck(t *testing.T) {
	n := 0
	used := func() int { return n }

	check := CapacityCheck(used, 2)
	assert.NoError(t, check(context.Background()))

	n = 2
	err := check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2")

	assert.NoError(t, CapacityCheck(used, 0)(context.Background()), "unbounded")
}
