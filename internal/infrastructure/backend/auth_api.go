package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

const (
	loginPath   = "/api/v1/auth/login/"
	refreshPath = "/api/v1/auth/refresh/"
	mePath      = "/api/v1/auth/me/"
)

// AuthAPI calls the auth endpoints. None of them go through the refresh
// protocol: a rejected refresh or profile call is final.
type AuthAPI struct {
	t *Transport
}

func NewAuthAPI(t *Transport) *AuthAPI {
	return &AuthAPI{t: t}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair. When the backend explains the
// rejection, the error is a *domain.DetailError carrying that text.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	resp, err := a.t.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Body:   loginRequest{Username: username, Password: password},
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if detail := apiErr.Detail(); detail != "" {
				return domain.TokenPair{}, &domain.DetailError{Detail: detail, Err: err}
			}
			if apiErr.StatusCode == http.StatusUnauthorized {
				return domain.TokenPair{}, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
			}
		}
		return domain.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	var pair domain.TokenPair
	if err := resp.Decode(&pair); err != nil {
		return domain.TokenPair{}, fmt.Errorf("login: %w", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		return domain.TokenPair{}, errors.New("login: backend returned an incomplete token pair")
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := a.t.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   refreshPath,
		Body:   map[string]string{"refresh": refreshToken},
	})
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}

	var body struct {
		Access string `json:"access"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	if body.Access == "" {
		return "", errors.New("refresh: backend returned no access token")
	}
	return body.Access, nil
}

// Me fetches the profile of the bearer of accessToken.
func (a *AuthAPI) Me(ctx context.Context, accessToken string) (*domain.CurrentUser, error) {
	c, err := Request{Method: http.MethodGet, Path: mePath}.prepare()
	if err != nil {
		return nil, err
	}
	resp, err := a.t.send(ctx, c, accessToken)
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("me: %w: %w", domain.ErrNotAuthenticated, err)
		}
		return nil, fmt.Errorf("me: %w", err)
	}

	var user domain.CurrentUser
	if err := resp.Decode(&user); err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return &user, nil
}
