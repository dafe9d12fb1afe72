package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/internal/server"
)

const serveShortDesc string = "Run the HTTP API"

const serveLongDesc string = `Run the footagents HTTP API.

Routes:
  GET    /characters                  List legend ids
  GET    /characters/{id}             Legend profile
  GET    /characters/{id}/usage       Conversations started with a legend
  POST   /chat                        Send a message
  GET    /conversations/{id}          Stored conversation
  DELETE /conversations/{id}          Deactivate a conversation
  GET    /runs/{runID}/events         Engine events of a turn
  GET    /metrics                     Prometheus metrics`

type serveCommander struct {
	flags  *globalFlags
	listen string
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	cmder := &serveCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides server.addr)")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	cfg, logger, err := c.flags.load(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if c.listen != "" {
		cfg.Server.Addr = c.listen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing dependencies", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.New(server.Deps{
			Service: a.service,
			Events:  a.events,
			Metrics: a.registry,
			Logger:  logger,
		}, server.Options{RequestTimeout: cfg.Server.RequestTimeout}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting api server", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("api server: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
