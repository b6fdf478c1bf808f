// Command stratashare runs the team file sharing and performance sync
// service.
//
// All lifecycle wiring lives in the bootstrap package; app.Run drives it
// through config loading, DB connection, schema setup, startup work, and
// the HTTP server with graceful shutdown.
package main

import (
	"context"
	"os"

	"github.com/dalemusser/stratashare/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		// Error already logged by waffle.
		os.Exit(1)
	}
}
