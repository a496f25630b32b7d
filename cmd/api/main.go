package main

import (
	"log/slog"
	"os"

	"github.com/metinatakli/showtime-booking-engine/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("application stopped", "error", err)
		os.Exit(1)
	}
}
