// Package health serves liveness and readiness probes on the operational
// HTTP listener.
//
//   - /healthz always answers 200: the process is up and serving HTTP.
//   - /readyz answers 200 only when every registered probe passes, 503
//     otherwise. Bodies are JSON with a "status" field and a per-probe
//     "checks" map.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// probeTimeout bounds a single readiness probe.
const probeTimeout = 3 * time.Second

// Probe reports whether a dependency is usable. It must honour ctx.
type Probe func(ctx context.Context) error

// Handler answers liveness and readiness requests. The probe set is fixed at
// construction, so a Handler is safe for concurrent use.
type Handler struct {
	probes map[string]Probe
}

// New builds a Handler evaluating the given named probes on each /readyz
// request.
func New(probes map[string]Probe) *Handler {
	m := make(map[string]Probe, len(probes))
	for name, p := range probes {
		m[name] = p
	}
	return &Handler{probes: m}
}

// Register mounts the probe routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /readyz", h.readyz)
}

type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, http.StatusOK, report{Status: "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	rep := report{Status: "ok", Checks: make(map[string]string, len(h.probes))}
	status := http.StatusOK

	for name, probe := range h.probes {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := probe(ctx)
		cancel()

		if err != nil {
			rep.Checks[name] = "fail: " + err.Error()
			rep.Status = "fail"
			status = http.StatusServiceUnavailable
		} else {
			rep.Checks[name] = "ok"
		}
	}

	writeReport(w, status, rep)
}

func writeReport(w http.ResponseWriter, status int, rep report) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
