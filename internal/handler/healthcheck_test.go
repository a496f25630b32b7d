package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/metinatakli/showtime-booking-engine/api"
	"github.com/metinatakli/showtime-booking-engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name             string
		dependencies     []Dependency
		wantStatus       int
		wantHealth       string
		wantDependencies map[string]string
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantHealth: StatusUp,
		},
		{
			name: "all dependencies reachable",
			dependencies: []Dependency{
				{Name: "postgres", Ping: up},
				{Name: "redis", Ping: up},
			},
			wantStatus:       http.StatusOK,
			wantHealth:       StatusUp,
			wantDependencies: map[string]string{"postgres": StatusUp, "redis": StatusUp},
		},
		{
			name: "redis unreachable",
			dependencies: []Dependency{
				{Name: "postgres", Ping: up},
				{Name: "redis", Ping: down},
			},
			wantStatus:       http.StatusServiceUnavailable,
			wantHealth:       StatusDown,
			wantDependencies: map[string]string{"postgres": StatusUp, "redis": StatusDown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthcheckHandler(config.Config{Env: "staging"}, tt.dependencies...)

			w := httptest.NewRecorder()
			h.GetHealth(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

			var resp api.HealthcheckResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantHealth, resp.Status)
			assert.Equal(t, tt.wantDependencies, resp.Dependencies)
			assert.Equal(t, "staging", resp.SystemInfo.Environment)
			assert.NotEmpty(t, resp.SystemInfo.Version)
		})
	}
}
