package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shift-tracker/internal/config"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the change feed and the background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := setupLogger(cfg.Env)
	log.Info("starting shift tracker", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage))

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start", slog.String("error", err.Error()))
		return err
	}
	defer a.Close()

	jobs, err := a.scheduleJobs()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(a),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	if a.bus != nil {
		g.Go(func() error {
			return a.bus.Run(gCtx)
		})
	}
	g.Go(func() error {
		jobs.Start()
		<-gCtx.Done()
		<-jobs.Stop().Done()
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", slog.String("error", err.Error()))
		return err
	}
	log.Info("server stopped")
	return nil
}
