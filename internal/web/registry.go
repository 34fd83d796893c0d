// Package web exposes the widget over HTTP for browser-embedded hosts: one
// session per mounted widget, plus a stateless one-shot lookup endpoint.
package web

import (
	"sync"
	"time"

	"address-autocomplete/internal/search"
	"address-autocomplete/pkg/logging"
	"address-autocomplete/pkg/metrics"
)

// Session ties one orchestrator to one widget instance on a page.
type Session struct {
	ID       string
	UserID   string
	Language string
	Orch     *search.Orchestrator

	lastSeen time.Time
}

// Registry tracks live sessions and reaps the ones idle past the TTL.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idleTTL  time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	log      *logging.ComponentLogger
	gauge    *metrics.Gauge
	reaped   *metrics.Counter
}

func NewRegistry(idleTTL time.Duration, log *logging.Logger, reg *metrics.Registry) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		stop:     make(chan struct{}),
	}
	if log != nil {
		r.log = log.WithComponent("sessions")
	}
	if reg != nil {
		r.gauge = reg.Gauge("sessions_active", "Currently registered widget sessions")
		r.reaped = reg.Counter("sessions_reaped_total", "Sessions removed by the idle janitor")
	}
	return r
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	s.lastSeen = time.Now()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()
	if r.gauge != nil {
		r.gauge.Set(float64(n))
	}
}

// Get returns the session and refreshes its idle clock.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = time.Now()
	}
	return s, ok
}

// Remove drops the session and releases its orchestrator.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.Orch.Close()
	if r.gauge != nil {
		r.gauge.Set(float64(n))
	}
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StartJanitor reaps idle sessions every interval until Stop.
func (r *Registry) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.reapIdle()
			case <-r.stop:
				return
			}
		}
	}()
}

func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Registry) reapIdle() {
	cutoff := time.Now().Add(-r.idleTTL)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			expired = append(expired, s)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.Orch.Close()
		if r.log != nil {
			r.log.Debug("session reaped", logging.Session(s.ID))
		}
	}
	if len(expired) > 0 {
		if r.reaped != nil {
			r.reaped.Inc(int64(len(expired)))
		}
		if r.gauge != nil {
			r.gauge.Set(float64(n))
		}
	}
}
