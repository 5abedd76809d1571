// Package memory keeps mounted scan sessions in process memory. Nothing is
// persisted; a session lives until it is unmounted or sits idle past its TTL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DipamJha/foodPro/internal/domain/scan"
)

var _ scan.Registry = (*Sessions)(nil)

// Config bounds the registry.
type Config struct {
	// TTL is the idle time after which a session is swept. Zero disables
	// expiry.
	TTL time.Duration
	// Max is the maximum number of live sessions. Zero means unbounded.
	Max int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Sessions is an in-memory scan.Registry.
type Sessions struct {
	cfg     Config
	options scan.Options

	mu    sync.RWMutex
	items map[string]*scan.Session
}

// NewSessions returns an empty registry. Every mounted session is built from
// opts.
func NewSessions(cfg Config, opts scan.Options) *Sessions {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if opts.Now == nil {
		opts.Now = cfg.Now
	}
	return &Sessions{
		cfg:     cfg,
		options: opts,
		items:   make(map[string]*scan.Session),
	}
}

// Mount creates a fresh session. Expired sessions are pruned before the
// capacity check; it returns scan.ErrRegistryFull when the registry is still
// at capacity.
func (s *Sessions) Mount() (*scan.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Max > 0 && len(s.items) >= s.cfg.Max {
		s.sweepLocked(s.cfg.Now())
		if len(s.items) >= s.cfg.Max {
			return nil, scan.ErrRegistryFull
		}
	}
	sess := scan.NewSession(uuid.New().String(), s.options)
	s.items[sess.ID()] = sess
	return sess, nil
}

// Get returns the session with the given id and records activity on it.
func (s *Sessions) Get(id string) (*scan.Session, error) {
	s.mu.RLock()
	sess, ok := s.items[id]
	s.mu.RUnlock()

	if !ok || s.expired(sess, s.cfg.Now()) {
		return nil, scan.ErrSessionNotFound
	}
	sess.Touch()
	return sess, nil
}

// Unmount discards the session.
func (s *Sessions) Unmount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return scan.ErrSessionNotFound
	}
	delete(s.items, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Max returns the configured capacity, zero when unbounded.
func (s *Sessions) Max() int {
	return s.cfg.Max
}

func (s *Sessions) expired(sess *scan.Session, now time.Time) bool {
	return s.cfg.TTL > 0 && now.Sub(sess.Touched()) >= s.cfg.TTL
}

// Sweep removes sessions idle past the TTL and returns how many were removed.
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

func (s *Sessions) sweepLocked(now time.Time) int {
	removed := 0
	for id, sess := range s.items {
		if s.expired(sess, now) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled. onSweep, if
// not nil, is called with the number of removed sessions after each pass that
// removed any.
func (s *Sessions) StartSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if s.cfg.TTL <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := s.Sweep(now); n > 0 && onSweep != nil {
					onSweep(n)
				}
			}
		}
	}()
}
