package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/metinatakli/showtime-booking-engine/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
)

type failingHandler struct {
	slog.Handler
}

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("exporter down")
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var debug, info bytes.Buffer

	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)).With("request_id", "req-1").WithGroup("booking")

	logger.Debug("resolving seats", "showtime_id", 1)
	logger.Info("booking created", "booking_id", 11)

	assert.Contains(t, debug.String(), "resolving seats")
	assert.Contains(t, debug.String(), "booking.booking_id=11")
	assert.NotContains(t, info.String(), "resolving seats")
	assert.Contains(t, info.String(), "request_id=req-1")
	assert.Equal(t, 1, strings.Count(info.String(), "\n"))
}

func TestMultiHandler_KeepsGoingWhenOneHandlerFails(t *testing.T) {
	var out bytes.Buffer

	handler := NewMultiHandler(failingHandler{}, slog.NewTextHandler(&out, nil))

	err := handler.Handle(context.Background(), slog.NewRecord(testutil.Now, slog.LevelWarn, "hold denied", 0))
	require.EqualError(t, err, "exporter down")
	assert.Contains(t, out.String(), "hold denied")
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, trace.AlwaysSample().Description(), samplerFor("dev").Description())
	assert.Contains(t, samplerFor("prod").Description(), "ParentBased")
}
