package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/api/metrics"
	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// attemptState tracks where one Gateway.Do call is in the refresh protocol.
type attemptState int

const (
	stateInitial attemptState = iota
	stateRefreshing
	stateRetried
)

func (s attemptState) String() string {
	switch s {
	case stateInitial:
		return "initial"
	case stateRefreshing:
		return "refreshing"
	case stateRetried:
		return "retried"
	}
	return "unknown"
}

// ErrNoRefreshToken is returned by the refresh step when the jar has none.
var ErrNoRefreshToken = errors.New("no refresh token")

type refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Gateway sends requests on behalf of one session. It attaches the access
// token, and on a 401 refreshes it once and replays the request once.
type Gateway struct {
	transport *Transport
	auth      refresher
	jar       ports.TokenJar
	onExpire  func(ctx context.Context)
	log       zerolog.Logger
}

func NewGateway(t *Transport, auth refresher, jar ports.TokenJar, onExpire func(ctx context.Context), log zerolog.Logger) *Gateway {
	if onExpire == nil {
		onExpire = func(context.Context) {}
	}
	return &Gateway{
		transport: t,
		auth:      auth,
		jar:       jar,
		onExpire:  onExpire,
		log:       log,
	}
}

// Do sends req. If the backend answers 401 and the refresh token is accepted,
// the request is replayed with the new access token. If the refresh fails the
// jar is cleared, the expiry hook runs and the returned error satisfies
// errors.Is(err, domain.ErrSessionExpired).
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	c, err := req.prepare()
	if err != nil {
		return nil, err
	}

	state := stateInitial
	for {
		access, err := g.jar.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("read access token: %w", err)
		}

		resp, err := g.transport.send(ctx, c, access)
		if err == nil {
			return resp, nil
		}
		if state != stateInitial || !IsStatus(err, http.StatusUnauthorized) {
			return nil, err
		}

		state = stateRefreshing
		g.log.Debug().
			Str("method", c.method).
			Str("path", c.path).
			Str("state", state.String()).
			Msg("access token rejected, refreshing")

		if rerr := g.refresh(ctx); rerr != nil {
			metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
			g.log.Info().Err(rerr).Msg("token refresh failed, ending session")
			if cerr := g.jar.Clear(ctx); cerr != nil {
				g.log.Error().Err(cerr).Msg("clear tokens after failed refresh")
			}
			g.onExpire(ctx)
			return nil, fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
		}
		metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
		state = stateRetried
	}
}

func (g *Gateway) refresh(ctx context.Context) error {
	refresh, err := g.jar.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("read refresh token: %w", err)
	}
	if refresh == "" {
		return ErrNoRefreshToken
	}
	access, err := g.auth.Refresh(ctx, refresh)
	if err != nil {
		return err
	}
	return g.jar.StoreAccess(ctx, access)
}
