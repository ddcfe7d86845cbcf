package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/recipebox/internal/handlers"
	"github.com/lehigh-university-libraries/recipebox/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the recipe capture API",
		Long: `Starts the Recipebox HTTP API on the specified port.

The API accepts text, dictated audio and recipe photos at /api/magic-add,
holds the extracted draft for review, and serves recipes, the shared pantry
and shopping lists. The acting user is read from the X-User-ID header.`,
		Example: `  # Start server on default port 8888
  recipebox serve

  # Start server on custom port
  recipebox serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("port") {
				port = a.cfg.Server.Port
			}

			handler := handlers.New(a.store, a.pipeline, storage.NewDraftStore(), handlers.Limits{
				MaxAudioBytes: a.cfg.Transcription.MaxAudioBytes,
				MaxImageBytes: a.cfg.Storage.MaxImageBytes,
			})

			mux := http.NewServeMux()
			handler.Register(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Recipebox API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
