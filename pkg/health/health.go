// Package health aggregates component health checks behind one JSON endpoint.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ComponentHealth is the result of one check.
type ComponentHealth struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Message     string        `json:"message,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// SystemHealth is the overall report.
type SystemHealth struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     time.Duration              `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
}

// Checker probes one component.
type Checker interface {
	Name() string
	Check(ctx context.Context) ComponentHealth
}

// CheckFunc adapts a function to Checker.
type CheckFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) ComponentHealth
}

func (c CheckFunc) Name() string                              { return c.ComponentName }
func (c CheckFunc) Check(ctx context.Context) ComponentHealth { return c.Fn(ctx) }

// Manager runs registered checks on demand.
type Manager struct {
	mu       sync.RWMutex
	checkers []Checker
	started  time.Time
	timeout  time.Duration
}

func NewManager(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Manager{started: time.Now(), timeout: timeout}
}

func (m *Manager) Register(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, c)
}

// Check runs all checks and aggregates: any unhealthy component makes the
// system unhealthy, otherwise any degraded one makes it degraded.
func (m *Manager) Check(ctx context.Context) SystemHealth {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.RLock()
	checkers := make([]Checker, len(m.checkers))
	copy(checkers, m.checkers)
	m.mu.RUnlock()

	sys := SystemHealth{
		Status:     StatusHealthy,
		Timestamp:  time.Now(),
		Uptime:     time.Since(m.started),
		Components: make(map[string]ComponentHealth, len(checkers)),
	}
	for _, c := range checkers {
		start := time.Now()
		ch := c.Check(ctx)
		ch.Name = c.Name()
		ch.LastChecked = time.Now()
		ch.Duration = time.Since(start)
		sys.Components[c.Name()] = ch

		switch ch.Status {
		case StatusUnhealthy:
			sys.Status = StatusUnhealthy
		case StatusDegraded:
			if sys.Status == StatusHealthy {
				sys.Status = StatusDegraded
			}
		}
	}
	return sys
}

// Handler serves the aggregated report; non-healthy maps to 503.
func (m *Manager) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sys := m.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if sys.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(sys)
	})
}
