package backend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// stubJar is an in-memory TokenJar.
type stubJar struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared int
}

func (j *stubJar) AccessToken(context.Context) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.access, nil
}

func (j *stubJar) RefreshToken(context.Context) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.refresh, nil
}

func (j *stubJar) StoreAccess(_ context.Context, access string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.access = access
	return nil
}

func (j *stubJar) StorePair(_ context.Context, pair domain.TokenPair) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.access, j.refresh = pair.Access, pair.Refresh
	return nil
}

func (j *stubJar) Clear(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.access, j.refresh = "", ""
	j.cleared++
	return nil
}

type stubJars map[string]*stubJar

func (s stubJars) Jar(sessionID string) ports.TokenJar {
	return s[sessionID]
}

func newTestTransport(t *testing.T, baseURL string) *Transport {
	t.Helper()
	tr, err := NewTransport(TransportConfig{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		RetryDelay: time.Millisecond,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return tr
}
