package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httptransport "github.com/example/internlog/internal/http"
)

const shutdownTimeout = 10 * time.Second

func (a *App) serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Example: `  internlog serve
  internlog serve --port 9090
  INTERNLOG_STORAGE_DRIVER=mongo INTERNLOG_MONGO_URI=mongodb://localhost:27017 internlog serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				a.cfg.HTTP.Port = port
			}
			return a.withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				return a.serve(ctx, a.newServer(svc))
			})
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides http.port)")

	return cmd
}

func (a *App) newServer(svc services) *http.Server {
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Tasks:   httptransport.NewTaskHandler(svc.tasks, a.logger),
		Profile: httptransport.NewProfileHandler(svc.profiles, a.logger),
		Reports: httptransport.NewReportHandler(svc.reports, a.logger),
		Health:  httptransport.NewHealthHandler(svc.store, a.logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(a.logger),
			httptransport.Recoverer(a.logger),
		},
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.HTTP.ReadTimeout.Std(),
		WriteTimeout:      a.cfg.HTTP.WriteTimeout.Std(),
		IdleTimeout:       60 * time.Second,
	}
}

// serve blocks until ctx is cancelled or the listener fails, then shuts the
// server down gracefully.
func (a *App) serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("internlog API listening", "addr", server.Addr, "storage", a.cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	a.logger.Info("internlog API stopped")
	return nil
}
