package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe checks one dependency within the given timeout.
type Probe func(ctx context.Context, timeout time.Duration) error

// Handler exposes HTTP handlers for liveness and readiness.
type Handler struct {
	DB           Probe
	Redis        Probe
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes. An unconfigured probe
// counts as unavailable: a service with no database cannot price anything.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := map[string]string{
		"db":    h.run(ctx, h.DB, h.timeout(h.DBTimeout, 500*time.Millisecond)),
		"redis": h.run(ctx, h.Redis, h.timeout(h.RedisTimeout, 300*time.Millisecond)),
	}
	code := http.StatusOK
	for _, s := range status {
		if s != "ok" {
			code = http.StatusServiceUnavailable
			break
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) run(ctx context.Context, probe Probe, timeout time.Duration) string {
	if probe == nil {
		return "not configured"
	}
	if err := probe(ctx, timeout); err != nil {
		return err.Error()
	}
	return "ok"
}

func (h Handler) timeout(configured, fallback time.Duration) time.Duration {
	if configured <= 0 {
		return fallback
	}
	return configured
}
