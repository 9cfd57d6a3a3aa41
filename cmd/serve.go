package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/yttransfer/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve starts the web interface over the same engine the CLI uses.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.transferEngine(ctx)
	if err != nil {
		return err
	}

	runs, closer, err := r.openRuns()
	if err != nil {
		r.logger.Warn("run history unavailable, /history disabled", "error", err)
		runs = nil
	} else {
		defer closer()
	}

	app := web.NewApp(r.source, r.target, engine, runs, r.logger)

	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{Addr: addr, Handler: app.Router()}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("web interface listening at http://%v", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		r.logger.Info("shutting down web interface")
		return httpServer.Shutdown(context.Background())
	}
}

// serveCommand starts the web interface.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind host (default: config server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Bind port (default: config server.port)",
			},
		},
		Action: r.Serve,
	}
}
