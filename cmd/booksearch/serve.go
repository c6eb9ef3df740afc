package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/searchforge/booksearch/internal/api"
	"github.com/searchforge/booksearch/obs"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve searches over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ctrl, logger, closer, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		shutdown, err := obs.InitTracer("booksearch")
		if err != nil {
			logger.Warn().Err(err).Msg("Tracer setup failed")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn().Err(err).Msg("Tracer shutdown failed")
			}
		}()

		router, err := api.NewRouter(ctrl, api.Options{
			Settings:    cfg.Settings,
			CORSOrigins: cfg.CORSOrigins,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		router.Handle("/metrics", promhttp.Handler())

		root := chi.NewRouter()
		root.Mount("/", router)

		server := &http.Server{
			Addr:         ":" + strconv.Itoa(cfg.Port),
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: cfg.Timeout + 5*time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info().
				Int("port", cfg.Port).
				Str("api_url", cfg.Settings.APIURL).
				Bool("use_proxy", cfg.Settings.UseProxy).
				Msg("booksearch listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-stop:
		case err := <-errCh:
			if err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Shutdown error")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from PORT or 7070)")
	rootCmd.AddCommand(serveCmd)
}
