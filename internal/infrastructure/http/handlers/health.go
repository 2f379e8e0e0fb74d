package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const defaultProbeTimeout = 3 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probes serves the liveness and readiness endpoints of the portal.
type Probes struct {
	deps    map[string]Pinger
	timeout time.Duration
	started time.Time
}

// NewProbes checks deps on every readiness request. Typical entries are the
// session store and the ERP backend.
func NewProbes(deps map[string]Pinger) *Probes {
	return &Probes{deps: deps, timeout: defaultProbeTimeout, started: time.Now()}
}

type livenessResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Liveness answers as long as the process can serve HTTP.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  livenessResponse
// @Router       /health [get]
func (p *Probes) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, livenessResponse{
		Status: "ok",
		Uptime: time.Since(p.started).Round(time.Second).String(),
	})
}

type dependencyStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness pings every dependency in parallel and reports 503 if any of them
// is down.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (p *Probes) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), p.timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		deps = make(map[string]dependencyStatus, len(p.deps))
	)
	for name, dep := range p.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := probe(ctx, dep)
			mu.Lock()
			deps[name] = st
			mu.Unlock()
		}()
	}
	wg.Wait()

	resp := readinessResponse{Status: "ok", Dependencies: deps}
	code := http.StatusOK
	for _, st := range deps {
		if st.Status != "ok" {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}
	return c.JSON(code, resp)
}

func probe(ctx context.Context, dep Pinger) dependencyStatus {
	start := time.Now()
	err := dep.Ping(ctx)
	st := dependencyStatus{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		st.Status = "unhealthy"
		st.Error = err.Error()
	}
	return st
}
