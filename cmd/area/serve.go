package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/area/internal/config"
	"github.com/vango-dev/area/internal/errors"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		addr    string
		flags   map[string]string
		preload bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the router with the devtools API",
		Long: `Run the router described by the route manifest and serve the
devtools API for inspecting and driving its areas.

Examples:
  area serve
  area serve --addr=:8080
  area serve --flag logged-in=true --preload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}
			return runServe(cmd.Context(), cfg, flags, preload)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from area.yaml)")
	cmd.Flags().StringToStringVar(&flags, "flag", nil, "Set guard flags, e.g. --flag logged-in=true")
	cmd.Flags().BoolVar(&preload, "preload", false, "Load every lazy component at startup")

	return cmd
}

func runServe(parent context.Context, cfg *config.Config, flags map[string]string, preload bool) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := cfg.Log.Logger(os.Stderr)

	a, err := newApp(cfg, logger, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	for name, raw := range flags {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("A061").WithDetailf("flag %s: %q is not a boolean", name, raw)
		}
		a.flags.Set(name, v)
	}
	if preload {
		a.preload()
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.mountDefaults(ctx)

	handler, stopTools := a.handler()
	defer stopTools()

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	success("Listening on %s", cfg.Server.Address)
	if cfg.DevtoolsEnabled() {
		info("Devtools at http://%s%s", cfg.Server.Address, cfg.Server.Devtools)
	}

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Println("\n  Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
