package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/api/metrics"
	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

const loginFailedMessage = "Login failed"

type sessionState struct {
	mu       sync.Mutex
	restored bool
	user     *domain.CurrentUser
}

// SessionService owns the signed-in user of every browser session.
// A session is authenticated if and only if a profile has been loaded.
type SessionService struct {
	jars          ports.JarProvider
	auth          ports.AuthBackend
	poller        ports.PollScheduler
	notifications ports.NotificationService
	log           zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// NewSessionService wires the session context. poller and notifications may
// be nil when background alerts are not wanted.
func NewSessionService(
	jars ports.JarProvider,
	auth ports.AuthBackend,
	poller ports.PollScheduler,
	notifications ports.NotificationService,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		jars:          jars,
		auth:          auth,
		poller:        poller,
		notifications: notifications,
		log:           log.With().Str("component", "session").Logger(),
		sessions:      make(map[string]*sessionState),
	}
}

func (s *SessionService) state(sessionID string) *sessionState {
	s.mu.RLock()
	st, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok = s.sessions[sessionID]; !ok {
		st = &sessionState{}
		s.sessions[sessionID] = st
	}
	return st
}

// lock returns the session's state, locked, making sure it is still the one
// held in the map. An unauthenticated state is dropped on release, so a
// caller may have raced with its removal.
func (s *SessionService) lock(sessionID string) *sessionState {
	for {
		st := s.state(sessionID)
		st.mu.Lock()
		s.mu.RLock()
		current := s.sessions[sessionID] == st
		s.mu.RUnlock()
		if current {
			return st
		}
		st.mu.Unlock()
	}
}

// release unlocks st and, when it carries no user, drops it so anonymous
// and signed-out sessions are not retained.
func (s *SessionService) release(sessionID string, st *sessionState) {
	if st.user == nil {
		s.mu.Lock()
		if s.sessions[sessionID] == st {
			delete(s.sessions, sessionID)
		}
		s.mu.Unlock()
	}
	st.mu.Unlock()
}

// tracked reports how many sessions hold in-memory state.
func (s *SessionService) tracked() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Restore loads the profile for a persisted access token. It runs once per
// authenticated session; later calls return the in-memory state. A rejected
// or unreadable token clears the store and leaves the session
// unauthenticated. Unauthenticated sessions keep no state, so their next
// request looks at the store again and finds it empty.
func (s *SessionService) Restore(ctx context.Context, sessionID string) *domain.Session {
	st := s.lock(sessionID)
	defer s.release(sessionID, st)

	if !st.restored {
		st.restored = true
		st.user = s.restore(ctx, sessionID)
		if st.user != nil {
			s.watch(sessionID)
		}
	}
	return &domain.Session{ID: sessionID, User: st.user}
}

func (s *SessionService) restore(ctx context.Context, sessionID string) *domain.CurrentUser {
	jar := s.jars.Jar(sessionID)
	access, err := jar.AccessToken(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("read access token during restore")
		return nil
	}
	if access == "" {
		return nil
	}

	user, err := s.auth.Me(ctx, access)
	if err != nil {
		s.log.Info().Err(err).Msg("stored access token rejected, clearing session")
		if cerr := jar.Clear(ctx); cerr != nil {
			s.log.Error().Err(cerr).Msg("clear tokens after failed restore")
		}
		return nil
	}

	s.log.Debug().Str("username", user.Username).Msg("session restored")
	return user
}

// Login exchanges credentials, persists both tokens and loads the profile.
// It never returns a Go error; failures are reported in the result.
func (s *SessionService) Login(ctx context.Context, sessionID, username, password string) domain.LoginResult {
	st := s.lock(sessionID)
	defer s.release(sessionID, st)
	st.restored = true

	jar := s.jars.Jar(sessionID)
	user, err := s.login(ctx, jar, username, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.log.Info().Err(err).Str("username", username).Msg("login failed")
		return domain.LoginResult{Error: loginMessage(err)}
	}

	st.user = user
	s.watch(sessionID)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("login succeeded")
	return domain.LoginResult{Success: true, User: user}
}

func (s *SessionService) login(ctx context.Context, jar ports.TokenJar, username, password string) (*domain.CurrentUser, error) {
	pair, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := jar.StorePair(ctx, pair); err != nil {
		return nil, err
	}
	if claims, err := InspectToken(pair.Access); err == nil && claims.ExpiresAt != nil {
		s.log.Debug().Time("access_expires_at", *claims.ExpiresAt).Msg("access token issued")
	}

	user, err := s.auth.Me(ctx, pair.Access)
	if err != nil {
		if cerr := jar.Clear(ctx); cerr != nil {
			s.log.Error().Err(cerr).Msg("clear tokens after failed profile fetch")
		}
		return nil, err
	}
	return user, nil
}

func loginMessage(err error) string {
	var de *domain.DetailError
	if errors.As(err, &de) && de.Detail != "" {
		return de.Detail
	}
	return loginFailedMessage
}

// Logout clears both tokens and the in-memory profile. The backend is not
// contacted.
func (s *SessionService) Logout(ctx context.Context, sessionID string) {
	s.teardown(ctx, sessionID)
	s.log.Info().Msg("logged out")
}

// Expire is the teardown run after the backend rejected the refresh token.
func (s *SessionService) Expire(ctx context.Context, sessionID string) {
	s.teardown(ctx, sessionID)
	metrics.SessionsExpiredTotal.Inc()
	s.log.Info().Msg("session expired")
}

func (s *SessionService) teardown(ctx context.Context, sessionID string) {
	if err := s.jars.Jar(sessionID).Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("clear tokens")
	}

	st := s.lock(sessionID)
	st.restored = true
	st.user = nil
	s.release(sessionID, st)

	if s.poller != nil {
		s.poller.Unwatch(sessionID)
	}
	if s.notifications != nil {
		s.notifications.Forget(sessionID)
	}
}

func (s *SessionService) watch(sessionID string) {
	if s.poller != nil {
		s.poller.Watch(sessionID)
	}
}

func (s *SessionService) Current(sessionID string) *domain.CurrentUser {
	s.mu.RLock()
	st, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.user
}

func (s *SessionService) IsAuthenticated(sessionID string) bool {
	return s.Current(sessionID) != nil
}

// Status reports the session's user and, when readable, when its access token
// expires.
func (s *SessionService) Status(ctx context.Context, sessionID string) domain.SessionStatus {
	user := s.Current(sessionID)
	status := domain.SessionStatus{Authenticated: user != nil, User: user}
	if user == nil {
		return status
	}
	access, err := s.jars.Jar(sessionID).AccessToken(ctx)
	if err != nil || access == "" {
		return status
	}
	if claims, err := InspectToken(access); err == nil {
		status.AccessExpiresAt = claims.ExpiresAt
	}
	return status
}
