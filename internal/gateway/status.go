package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Health values of a backend.
const (
	StatusUnknown   = "unknown"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// ServiceStatus is the last observed state of one backend.
type ServiceStatus struct {
	Name        string    `json:"name"`
	BaseURL     string    `json:"base_url"`
	Prefixes    []string  `json:"prefixes"`
	Status      string    `json:"status"`
	Breaker     string    `json:"breaker"`
	LatencyMS   int64     `json:"latency_ms"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// Snapshot is an immutable set of statuses keyed by service name.
type Snapshot map[string]ServiceStatus

// List returns the statuses ordered by name.
func (s Snapshot) List() []ServiceStatus {
	out := make([]ServiceStatus, 0, len(s))
	for _, st := range s {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Healthy reports whether every backend passed its last health check.
func (s Snapshot) Healthy() bool {
	for _, st := range s {
		if st.Status != StatusHealthy {
			return false
		}
	}
	return true
}

// StatusBoard publishes health snapshots. Readers load the current snapshot
// without locking; the health worker is the only writer.
type StatusBoard struct {
	current atomic.Pointer[Snapshot]

	mu   sync.Mutex
	subs map[chan Snapshot]struct{}
}

// NewStatusBoard seeds the board with every service in the table as unknown.
func NewStatusBoard(table *Table) *StatusBoard {
	snap := make(Snapshot, len(table.names))
	for _, svc := range table.Services() {
		snap[svc.Name] = ServiceStatus{
			Name:     svc.Name,
			BaseURL:  svc.BaseURL,
			Prefixes: table.Prefixes(svc.Name),
			Status:   StatusUnknown,
			Breaker:  BreakerClosed,
		}
	}
	b := &StatusBoard{subs: make(map[chan Snapshot]struct{})}
	b.current.Store(&snap)
	return b
}

// Snapshot returns the current statuses.
func (b *StatusBoard) Snapshot() Snapshot {
	return *b.current.Load()
}

// Publish replaces the snapshot and notifies subscribers. Slow subscribers
// miss intermediate snapshots instead of blocking the publisher.
func (b *StatusBoard) Publish(snap Snapshot) {
	b.current.Store(&snap)

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Subscribe returns a channel of future snapshots and a cancel func.
func (b *StatusBoard) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
		})
	}
}

// Checker calls backend health endpoints.
type Checker struct {
	client *http.Client
}

// NewChecker creates a Checker whose requests give up after timeout.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{client: &http.Client{Timeout: timeout}}
}

// Check calls the service's health endpoint. Only a 200 counts as healthy.
func (c *Checker) Check(ctx context.Context, svc Service) ServiceStatus {
	st := ServiceStatus{
		Name:        svc.Name,
		BaseURL:     svc.BaseURL,
		Status:      StatusUnhealthy,
		LastChecked: time.Now().UTC(),
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.HealthURL(), nil)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	resp, err := c.client.Do(req)
	st.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		st.Error = err.Error()
		return st
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		st.Error = fmt.Sprintf("health returned %d", resp.StatusCode)
		return st
	}
	st.Status = StatusHealthy
	return st
}
