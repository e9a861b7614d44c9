package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storefront/models"
)

// SessionAPI is the slice of the shop client the store needs.
type SessionAPI interface {
	CurrentMember(ctx context.Context) (*models.Member, error)
	SignOut(ctx context.Context) error
	SessionToken() string
}

// Store is the single source of truth for the current member and for
// whether that question has been answered yet. Constructed once at
// application start and injected into everything that needs it.
type Store struct {
	mu       sync.RWMutex
	member   *models.Member
	resolved bool

	probeOnce sync.Once
	api       SessionAPI
	logger    *zap.Logger
}

func NewStore(api SessionAPI, logger *zap.Logger) *Store {
	return &Store{
		api:    api,
		logger: logger,
	}
}

// Resolve runs the session probe. The probe happens exactly once per
// process lifetime; any failure, including "not authenticated", still
// resolves the store with no member. Safe to call from every request
// path: callers after the first just wait for the same answer.
func (s *Store) Resolve(ctx context.Context) {
	s.probeOnce.Do(func() {
		member, err := s.api.CurrentMember(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()

		// A sign-in can land while the probe is still in flight. The
		// fresher answer wins; a late probe result must not overwrite it.
		if s.resolved {
			return
		}
		s.resolved = true

		if err != nil {
			s.member = nil
			s.logger.Info("Session probe resolved without member", zap.Error(err))
			return
		}

		s.member = member
		s.logger.Info("Session probe resolved",
			zap.Int64("member_id", member.ID),
			zap.String("authority", string(member.Authority)),
		)
	})
}

// Resolved reports whether the probe has completed. It transitions
// false to true once and never reverts.
func (s *Store) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

// Member returns the current member, or nil when signed out.
func (s *Store) Member() *models.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.member
}

// SetMember records the member after sign-in or registration.
func (s *Store) SetMember(m *models.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.member = m
	s.resolved = true

	if exp, err := TokenExpiry(s.api.SessionToken()); err == nil {
		s.logger.Info("Session established",
			zap.Int64("member_id", m.ID),
			zap.Time("token_expires", exp),
		)
	} else {
		s.logger.Info("Session established", zap.Int64("member_id", m.ID))
	}
}

// Clear drops the local member without touching the remote session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.member = nil
}

// SignOut invalidates the remote session best-effort and always
// clears local state.
func (s *Store) SignOut(ctx context.Context) {
	if err := s.api.SignOut(ctx); err != nil {
		s.logger.Warn("Remote sign-out failed, clearing local session anyway", zap.Error(err))
	}
	s.Clear()
}
