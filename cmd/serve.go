package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spins/internal/server"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web dashboard until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	logger := shared.WithLogger(r.logger, "component", "web")

	handlers, err := web.New(r.history, r.overview, r.insights, logger)
	if err != nil {
		return fmt.Errorf("failed to build dashboard: %w", err)
	}

	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(addr, handlers.Router(), logger)
	r.writePlain("→ Dashboard at http://%s (Ctrl+C to stop)\n", addr)
	return srv.Run(ctx)
}
