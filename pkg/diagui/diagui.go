// Package diagui serves a small read-only HTTP introspection endpoint
// reporting live session state, mirroring the teacher's pkg/server
// health/ready/metrics handlers: plain net/http, JSON bodies, no
// framework on top.
package diagui

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// SessionSnapshot is the subset of session state worth exposing to an
// operator without reaching into pkg/debugger's internals directly.
type SessionSnapshot struct {
	Connected bool   `json:"connected"`
	Mode      string `json:"mode"`
	RemoteID  string `json:"remote_id"`
}

// Registry tracks the snapshots handlers serve. Sessions register
// themselves on accept and deregister on close.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]SessionSnapshot
	started  time.Time
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]SessionSnapshot),
		started:  time.Now(),
	}
}

// Put records or updates the snapshot for id.
func (r *Registry) Put(id string, snap SessionSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = snap
}

// Remove drops id's snapshot, e.g. on disconnect.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) snapshotAll() map[string]SessionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]SessionSnapshot, len(r.sessions))
	for k, v := range r.sessions {
		out[k] = v
	}
	return out
}

// HealthHandler reports process liveness, independent of session state.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
}

// SessionsHandler reports every currently tracked session's snapshot.
func (r *Registry) SessionsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(r.snapshotAll())
	})
}

// UptimeHandler reports how long the registry (and by extension the
// server) has been running.
func (r *Registry) UptimeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"uptime": time.Since(r.started).String(),
		})
	})
}

// Mount registers every handler on mux under its conventional path.
func (r *Registry) Mount(mux *http.ServeMux) {
	mux.Handle("/health", HealthHandler())
	mux.Handle("/sessions", r.SessionsHandler())
	mux.Handle("/uptime", r.UptimeHandler())
}
