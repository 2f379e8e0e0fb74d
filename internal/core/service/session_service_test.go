package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

var alice = &domain.CurrentUser{ID: 1, Username: "alice", Role: domain.RoleStaff, IsActive: true}

func newTestSessionService(store *stubStore, auth *stubAuth, poller *stubPoller) (*SessionService, *NotificationService) {
	notifications := NewNotificationService(stubFactory{client: &stubClient{}}, zerolog.Nop())
	return NewSessionService(NewTokenJars(store), auth, poller, notifications, zerolog.Nop()), notifications
}

func acceptToken(valid string) func(string) (*domain.CurrentUser, error) {
	return func(access string) (*domain.CurrentUser, error) {
		if access != valid {
			return nil, domain.ErrNotAuthenticated
		}
		return alice, nil
	}
}

func TestRestore_WithValidToken(t *testing.T) {
	store := newStubStore()
	_ = store.Set(context.Background(), "s1", domain.AccessTokenKey, "A")
	auth := &stubAuth{meFn: acceptToken("A")}
	poller := newStubPoller()
	svc, _ := newTestSessionService(store, auth, poller)

	sess := svc.Restore(context.Background(), "s1")
	if !sess.Authenticated() || sess.User.Username != "alice" {
		t.Fatalf("expected alice to be restored, got %+v", sess.User)
	}
	if !poller.isWatching("s1") {
		t.Fatal("expected polling to start after restore")
	}
}

func TestRestore_RunsOnce(t *testing.T) {
	store := newStubStore()
	_ = store.Set(context.Background(), "s1", domain.AccessTokenKey, "A")
	auth := &stubAuth{meFn: acceptToken("A")}
	svc, _ := newTestSessionService(store, auth, newStubPoller())

	for i := 0; i < 3; i++ {
		svc.Restore(context.Background(), "s1")
	}
	if auth.meCalls != 1 {
		t.Fatalf("expected one profile fetch, got %d", auth.meCalls)
	}
}

func TestRestore_WithoutToken(t *testing.T) {
	auth := &stubAuth{meFn: acceptToken("A")}
	svc, _ := newTestSessionService(newStubStore(), auth, newStubPoller())

	if svc.Restore(context.Background(), "s1").Authenticated() {
		t.Fatal("expected unauthenticated session")
	}
	if auth.meCalls != 0 {
		t.Fatalf("expected no profile fetch, got %d", auth.meCalls)
	}
}

func TestRestore_RejectedTokenClearsStore(t *testing.T) {
	store := newStubStore()
	_ = store.Set(context.Background(), "s1", domain.AccessTokenKey, "stale")
	_ = store.Set(context.Background(), "s1", domain.RefreshTokenKey, "R")
	svc, _ := newTestSessionService(store, &stubAuth{meFn: acceptToken("A")}, newStubPoller())

	if svc.Restore(context.Background(), "s1").Authenticated() {
		t.Fatal("expected unauthenticated session")
	}
	if access, _ := store.Get(context.Background(), "s1", domain.AccessTokenKey); access != "" {
		t.Fatalf("expected access token cleared, got %q", access)
	}
	if refresh, _ := store.Get(context.Background(), "s1", domain.RefreshTokenKey); refresh != "" {
		t.Fatalf("expected refresh token cleared, got %q", refresh)
	}
}

func TestLogin_Success(t *testing.T) {
	store := newStubStore()
	auth := &stubAuth{
		loginFn: func(u, p string) (domain.TokenPair, error) {
			return domain.TokenPair{Access: "A", Refresh: "R"}, nil
		},
		meFn: acceptToken("A"),
	}
	poller := newStubPoller()
	svc, _ := newTestSessionService(store, auth, poller)

	res := svc.Login(context.Background(), "s1", "alice", "pw")
	if !res.Success || res.Error != "" {
		t.Fatalf("expected success, got %+v", res)
	}
	if !svc.IsAuthenticated("s1") {
		t.Fatal("expected session to be authenticated")
	}
	if access, _ := store.Get(context.Background(), "s1", domain.AccessTokenKey); access != "A" {
		t.Fatalf("expected access token A, got %q", access)
	}
	if refresh, _ := store.Get(context.Background(), "s1", domain.RefreshTokenKey); refresh != "R" {
		t.Fatalf("expected refresh token R, got %q", refresh)
	}
	if !poller.isWatching("s1") {
		t.Fatal("expected polling to start after login")
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "backend detail",
			err:     &domain.DetailError{Detail: "No active account found with the given credentials", Err: domain.ErrInvalidCredentials},
			wantMsg: "No active account found with the given credentials",
		},
		{
			name:    "no detail",
			err:     errors.New("connection refused"),
			wantMsg: "Login failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStubStore()
			auth := &stubAuth{
				loginFn: func(string, string) (domain.TokenPair, error) { return domain.TokenPair{}, tt.err },
				meFn:    acceptToken("A"),
			}
			svc, _ := newTestSessionService(store, auth, newStubPoller())

			res := svc.Login(context.Background(), "s1", "alice", "wrong")
			if res.Success {
				t.Fatal("expected failure")
			}
			if res.Error != tt.wantMsg {
				t.Fatalf("expected %q, got %q", tt.wantMsg, res.Error)
			}
			if svc.IsAuthenticated("s1") {
				t.Fatal("expected session to stay unauthenticated")
			}
			if access, _ := store.Get(context.Background(), "s1", domain.AccessTokenKey); access != "" {
				t.Fatalf("expected no stored token, got %q", access)
			}
		})
	}
}

func TestLogin_ProfileFailureClearsTokens(t *testing.T) {
	store := newStubStore()
	auth := &stubAuth{
		loginFn: func(string, string) (domain.TokenPair, error) {
			return domain.TokenPair{Access: "A", Refresh: "R"}, nil
		},
		meFn: func(string) (*domain.CurrentUser, error) { return nil, errors.New("boom") },
	}
	svc, _ := newTestSessionService(store, auth, newStubPoller())

	res := svc.Login(context.Background(), "s1", "alice", "pw")
	if res.Success || res.Error != "Login failed" {
		t.Fatalf("expected generic failure, got %+v", res)
	}
	if access, _ := store.Get(context.Background(), "s1", domain.AccessTokenKey); access != "" {
		t.Fatalf("expected tokens cleared, got %q", access)
	}
}

func TestLogout(t *testing.T) {
	store := newStubStore()
	auth := &stubAuth{
		loginFn: func(string, string) (domain.TokenPair, error) {
			return domain.TokenPair{Access: "A", Refresh: "R"}, nil
		},
		meFn: acceptToken("A"),
	}
	poller := newStubPoller()
	svc, notifications := newTestSessionService(store, auth, poller)

	svc.Login(context.Background(), "s1", "alice", "pw")
	notifications.Add("s1", domain.Notification{Title: "Order confirmed"})

	svc.Logout(context.Background(), "s1")

	if svc.IsAuthenticated("s1") || svc.Current("s1") != nil {
		t.Fatal("expected no current user after logout")
	}
	if access, _ := store.Get(context.Background(), "s1", domain.AccessTokenKey); access != "" {
		t.Fatalf("expected access token cleared, got %q", access)
	}
	if refresh, _ := store.Get(context.Background(), "s1", domain.RefreshTokenKey); refresh != "" {
		t.Fatalf("expected refresh token cleared, got %q", refresh)
	}
	if poller.isWatching("s1") {
		t.Fatal("expected polling to stop after logout")
	}
	if n := len(notifications.List("s1")); n != 0 {
		t.Fatalf("expected notifications dropped, got %d", n)
	}

	// A later request must not resurrect the session from storage.
	if svc.Restore(context.Background(), "s1").Authenticated() {
		t.Fatal("expected session to stay logged out")
	}
}

func TestExpire(t *testing.T) {
	store := newStubStore()
	_ = store.Set(context.Background(), "s1", domain.AccessTokenKey, "A")
	poller := newStubPoller()
	svc, _ := newTestSessionService(store, &stubAuth{meFn: acceptToken("A")}, poller)
	svc.Restore(context.Background(), "s1")

	svc.Expire(context.Background(), "s1")

	if svc.IsAuthenticated("s1") {
		t.Fatal("expected session expired")
	}
	if store.cleared != 1 {
		t.Fatalf("expected store cleared once, got %d", store.cleared)
	}
	if poller.unwatches != 1 {
		t.Fatalf("expected one unwatch, got %d", poller.unwatches)
	}
}

func TestSessionState_AnonymousTrafficIsNotRetained(t *testing.T) {
	svc, _ := newTestSessionService(newStubStore(), &stubAuth{meFn: acceptToken("A")}, newStubPoller())

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("anon-%d", i)
		svc.Restore(context.Background(), sid)
		svc.Logout(context.Background(), sid)
	}
	if n := svc.tracked(); n != 0 {
		t.Fatalf("expected no retained sessions, got %d", n)
	}
}

func TestSessionState_DroppedOnTeardownKeptWhileSignedIn(t *testing.T) {
	store := newStubStore()
	_ = store.Set(context.Background(), "s1", domain.AccessTokenKey, "A")
	_ = store.Set(context.Background(), "s2", domain.AccessTokenKey, "stale")
	auth := &stubAuth{meFn: acceptToken("A")}
	svc, _ := newTestSessionService(store, auth, newStubPoller())

	svc.Restore(context.Background(), "s1")
	svc.Restore(context.Background(), "s2")
	if n := svc.tracked(); n != 1 {
		t.Fatalf("expected only the signed-in session tracked, got %d", n)
	}

	svc.Restore(context.Background(), "s1")
	if auth.meCalls != 2 {
		t.Fatalf("expected the signed-in session to restore once, got %d profile fetches", auth.meCalls)
	}

	svc.Expire(context.Background(), "s1")
	if n := svc.tracked(); n != 0 {
		t.Fatalf("expected state dropped after expiry, got %d", n)
	}
	if svc.Restore(context.Background(), "s1").Authenticated() {
		t.Fatal("expected expired session to stay signed out")
	}
}

func TestSessionState_LoginAfterAnonymousRestore(t *testing.T) {
	auth := &stubAuth{
		loginFn: func(string, string) (domain.TokenPair, error) {
			return domain.TokenPair{Access: "A", Refresh: "R"}, nil
		},
		meFn: acceptToken("A"),
	}
	svc, _ := newTestSessionService(newStubStore(), auth, newStubPoller())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Restore(context.Background(), "s1")
		}()
	}
	res := svc.Login(context.Background(), "s1", "alice", "pw")
	wg.Wait()

	if !res.Success || !svc.IsAuthenticated("s1") {
		t.Fatalf("expected login to stick, got %+v", res)
	}
}

func TestStatus_ReportsAccessExpiry(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":     exp.Unix(),
		"user_id": 1,
	}).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	store := newStubStore()
	_ = store.Set(context.Background(), "s1", domain.AccessTokenKey, token)
	svc, _ := newTestSessionService(store, &stubAuth{meFn: acceptToken(token)}, newStubPoller())
	svc.Restore(context.Background(), "s1")

	status := svc.Status(context.Background(), "s1")
	if !status.Authenticated {
		t.Fatal("expected authenticated status")
	}
	if status.AccessExpiresAt == nil || !status.AccessExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, status.AccessExpiresAt)
	}
}

func TestStatus_Anonymous(t *testing.T) {
	svc, _ := newTestSessionService(newStubStore(), &stubAuth{}, newStubPoller())

	status := svc.Status(context.Background(), "nobody")
	if status.Authenticated || status.User != nil || status.AccessExpiresAt != nil {
		t.Fatalf("expected empty status, got %+v", status)
	}
}
