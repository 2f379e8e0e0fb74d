package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/api/metrics"
)

const defaultInterval = 5 * time.Minute

// PollFunc refreshes one session. It is called from that session's worker.
type PollFunc func(ctx context.Context, sessionID string)

// Poller runs one worker goroutine per watched session. Each worker polls
// immediately and then every interval until it is unwatched or the poller
// stops.
type Poller struct {
	interval time.Duration
	poll     PollFunc
	log      zerolog.Logger

	mu      sync.Mutex
	parent  context.Context
	workers map[string]context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
}

// NewPoller creates a Poller. If interval <= 0, defaultInterval is used.
func NewPoller(interval time.Duration, poll PollFunc, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		interval: interval,
		poll:     poll,
		log:      log.With().Str("component", "poller").Logger(),
		parent:   context.Background(),
		workers:  make(map[string]context.CancelFunc),
	}
}

// Start binds all workers to ctx. Workers started before Start keep running
// on the background context.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	p.parent = ctx
	p.mu.Unlock()
}

// Watch starts polling sessionID. Watching an already watched session is a
// no-op.
func (p *Poller) Watch(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	if _, ok := p.workers[sessionID]; ok {
		return
	}

	ctx, cancel := context.WithCancel(p.parent)
	p.workers[sessionID] = cancel
	metrics.PolledSessions.Inc()

	p.wg.Add(1)
	go p.runWorker(ctx, sessionID)
}

// Unwatch stops polling sessionID. It does not wait for an in-flight poll, so
// it is safe to call from inside one.
func (p *Poller) Unwatch(sessionID string) {
	p.mu.Lock()
	cancel, ok := p.workers[sessionID]
	if ok {
		delete(p.workers, sessionID)
		metrics.PolledSessions.Dec()
	}
	p.mu.Unlock()
	if ok {
		cancel()
	}
}

// Watching reports whether sessionID has a running worker.
func (p *Poller) Watching(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.workers[sessionID]
	return ok
}

// Stop cancels every worker and waits for them to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	for id, cancel := range p.workers {
		cancel()
		delete(p.workers, id)
		metrics.PolledSessions.Dec()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Poller) runWorker(ctx context.Context, sessionID string) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx, sessionID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, sessionID)
		}
	}
}

func (p *Poller) tick(ctx context.Context, sessionID string) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Interface("panic", r).
				Msg("notification poll panicked")
		}
	}()
	p.poll(ctx, sessionID)
}
