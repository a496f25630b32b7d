package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/metinatakli/showtime-booking-engine/api"
	"github.com/metinatakli/showtime-booking-engine/internal/config"
	"github.com/metinatakli/showtime-booking-engine/internal/jsonutil"
	"github.com/metinatakli/showtime-booking-engine/internal/vcs"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"

	checkTimeout = 2 * time.Second
)

// Dependency is a backing service the engine cannot serve bookings without.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthcheckHandler struct {
	cfg          config.Config
	version      string
	dependencies []Dependency
}

func NewHealthcheckHandler(cfg config.Config, dependencies ...Dependency) *HealthcheckHandler {
	return &HealthcheckHandler{
		cfg:          cfg,
		version:      vcs.Version(),
		dependencies: dependencies,
	}
}

// GetHealth pings every dependency and reports 503 when any of them is down.
func (h *HealthcheckHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := api.HealthcheckResponse{
		Status: StatusUp,
		SystemInfo: api.SystemInfo{
			Version:     h.version,
			Environment: h.cfg.Env,
		},
	}

	if len(h.dependencies) > 0 {
		resp.Dependencies = make(map[string]string, len(h.dependencies))
	}

	for _, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			resp.Status = StatusDown
			resp.Dependencies[dep.Name] = StatusDown
			continue
		}

		resp.Dependencies[dep.Name] = StatusUp
	}

	status := http.StatusOK
	if resp.Status == StatusDown {
		status = http.StatusServiceUnavailable
	}

	jsonutil.WriteJSON(w, status, resp, nil)
}
