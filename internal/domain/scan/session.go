// Package scan models a single product-lookup screen: the barcode intake, the
// product fetch that follows each scan, the two-panel presentation, and the
// hand-off of a loaded product to the analysis view.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/DipamJha/foodPro/internal/domain/product"
)

// DefaultAnalyzeRoute is the downstream route that receives a hand-off.
const DefaultAnalyzeRoute = "/chatbot"

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRegistryFull is returned when no more sessions can be mounted.
	ErrRegistryFull = errors.New("session registry is full")
)

// State is a snapshot of what the screen currently describes.
//
// Product and Error are never both set: a successful fetch clears Error and
// every failure clears Product.
type State struct {
	Barcode string
	Product *product.Record
	Error   string
}

// Options configures a Session.
type Options struct {
	Fetcher product.Fetcher
	// AnalyzeRoute defaults to DefaultAnalyzeRoute.
	AnalyzeRoute string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Session holds the state of one mounted screen. It is safe for concurrent
// use.
type Session struct {
	id           string
	fetcher      product.Fetcher
	analyzeRoute string
	now          func() time.Time

	mu      sync.Mutex
	state   State
	seq     uint64
	touched time.Time
}

// NewSession mounts a fresh session with empty state.
func NewSession(id string, opts Options) *Session {
	if opts.AnalyzeRoute == "" {
		opts.AnalyzeRoute = DefaultAnalyzeRoute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		id:           id,
		fetcher:      opts.Fetcher,
		analyzeRoute: opts.AnalyzeRoute,
		now:          opts.Now,
		touched:      opts.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.touched = s.now()
	s.mu.Unlock()
}

// Touched returns the time of the last activity.
func (s *Session) Touched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Scan records barcode as the scanned barcode and fetches its product. The
// barcode is forwarded to the fetcher unvalidated.
//
// Overlapping scans are allowed. Each scan takes a token; when the fetch
// settles its outcome is applied only if no newer scan was dispatched in the
// meantime, so a slow response never overwrites a newer one.
//
// Fetch failures are converted into display messages and never returned.
// A fetch that fails because ctx itself ended leaves the product and message
// untouched.
func (s *Session) Scan(ctx context.Context, barcode string) State {
	s.mu.Lock()
	s.seq++
	token := s.seq
	s.state.Barcode = barcode
	s.touched = s.now()
	s.mu.Unlock()

	rec, err := s.fetcher.Lookup(ctx, barcode)

	lg := zctx.From(ctx).With(
		zap.String("session", s.id),
		zap.String("barcode", barcode),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.seq {
		lg.Debug("Discarding stale fetch result",
			zap.Uint64("token", token),
			zap.Uint64("latest", s.seq),
		)
		return s.state
	}
	if err != nil && ctx.Err() != nil {
		// The caller went away; nobody saw this fetch fail.
		lg.Debug("Scan abandoned by caller", zap.Error(err))
		return s.state
	}

	switch {
	case err == nil && rec != nil:
		s.state.Product = rec
		s.state.Error = ""
	case err == nil:
		s.state.Product = nil
		s.state.Error = MessageNotFound
	default:
		if !errors.Is(err, product.ErrNotFound) {
			lg.Warn("Product fetch failed",
				zap.Stringer("reason", product.ReasonOf(err)),
				zap.Error(err),
			)
		}
		s.state.Product = nil
		s.state.Error = ErrorMessage(err)
	}
	s.touched = s.now()
	return s.state
}

// Navigation is the transient payload passed to the analysis view.
type Navigation struct {
	Route   string
	Product *product.Record
}

// Navigator transitions to a downstream view.
type Navigator interface {
	Navigate(ctx context.Context, nav Navigation) error
}

// Analyze hands the loaded product over to the analysis view. When no product
// is loaded it does nothing and reports false.
func (s *Session) Analyze(ctx context.Context, nav Navigator) (bool, error) {
	s.mu.Lock()
	rec := s.state.Product
	s.touched = s.now()
	s.mu.Unlock()

	if rec == nil {
		return false, nil
	}
	if err := nav.Navigate(ctx, Navigation{Route: s.analyzeRoute, Product: rec}); err != nil {
		return false, errors.Wrap(err, "navigate")
	}
	return true, nil
}

// Registry keeps mounted sessions for the lifetime of their views.
type Registry interface {
	Mount() (*Session, error)
	Get(id string) (*Session, error)
	Unmount(id string) error
}
