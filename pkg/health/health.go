// Package health serves the /livez and /readyz endpoints.
//
// Registered checks run on their own tickers in the background; the HTTP
// endpoints only read the latest observed result. A check flips to unhealthy
// after three consecutive failures and recovers on the first success, so one
// slow database ping does not pull the service from rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc observes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// failsBeforeUnhealthy is the number of consecutive failures that flips a
// check to unhealthy.
const failsBeforeUnhealthy = 3

// probe is one registered check plus its latest observed state.
//
// observe is only ever called from the probe's own goroutine, so the
// consecutive-failure counter needs no locking. healthy and lastErr are read
// by the HTTP endpoints from other goroutines and use atomics.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]
	fails   int
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	p := &probe{name: name, timeout: timeout, check: check}
	// Healthy until observed otherwise, so a slow first check cannot fail
	// the service right after startup.
	p.healthy.Store(true)
	return p
}

func (p *probe) observe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(ctx)
	p.lastErr.Store(&err)

	if err == nil {
		p.fails = 0
		p.healthy.Store(true)
		return
	}
	p.fails++
	if p.fails >= failsBeforeUnhealthy {
		p.healthy.Store(false)
	}
}

// failure returns the message to report when the probe is unhealthy.
func (p *probe) failure() (string, bool) {
	if p.healthy.Load() {
		return "", false
	}
	if errp := p.lastErr.Load(); errp != nil && *errp != nil {
		return (*errp).Error(), true
	}
	return "check is unhealthy", true
}

func (p *probe) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.observe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.observe(ctx)
		}
	}
}

// Health owns the registered checks and the manual readiness gate.
type Health struct {
	ready atomic.Bool

	// mu guards the probe slices and cancel. The endpoints snapshot the
	// slices under RLock; probe state itself is read through atomics.
	mu        sync.RWMutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New creates a Health service. It starts not ready; call SetReady(true)
// once wiring is complete.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check for /livez. A liveness failure means
// the process itself is wedged and should be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a check for /readyz. A readiness failure
// pulls the service from rotation without restarting it.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newProbe(name, timeout, check))
}

// Start launches one goroutine per registered check, re-running it at the
// given interval. Register every check before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, 0, len(h.liveness)+len(h.readiness))
	probes = append(probes, h.liveness...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go p.loop(ctx, interval)
	}
}

// SetReady flips the manual readiness gate. Graceful shutdown lowers it
// first so load balancers drain traffic before the listener stops.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Stop cancels every check goroutine. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// report is the JSON body of both endpoints.
type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while every liveness check is healthy,
// 503 listing the failing checks otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	probes := append([]*probe(nil), h.liveness...)
	h.mu.RUnlock()

	writeReport(w, failures(probes))
}

// ReadyEndpoint serves /readyz: 200 once SetReady(true) has been called and
// every readiness check is healthy.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	probes := append([]*probe(nil), h.readiness...)
	h.mu.RUnlock()

	fs := failures(probes)
	if !h.ready.Load() {
		fs["ready"] = "service is not ready"
	}
	writeReport(w, fs)
}

func failures(probes []*probe) map[string]string {
	fs := make(map[string]string)
	for _, p := range probes {
		if msg, failed := p.failure(); failed {
			fs[p.name] = msg
		}
	}
	return fs
}

func writeReport(w http.ResponseWriter, fs map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	rep := report{Status: "ok"}
	code := http.StatusOK
	if len(fs) > 0 {
		rep.Status = "unhealthy"
		rep.Checks = fs
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(rep)
}
