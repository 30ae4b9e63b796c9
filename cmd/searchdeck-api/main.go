// Command searchdeck-api serves the demo search backend
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"searchdeck/internal/mockapi"
)

func main() {
	var (
		addr    string
		latency time.Duration
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "searchdeck-api",
		Short: "Demo search backend for searchdeck",
		Long: `searchdeck-api answers GET /api/search from a small canned corpus.
Queries starting with "` + mockapi.FailPrefix + `" get a 502 so error handling can be tried out.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()

			srv := &http.Server{
				Addr:              addr,
				Handler:           mockapi.New(mockapi.Options{Latency: latency}, log).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Msg("http server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			log.Info().Msg("shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("server forced to shutdown")
			}
			log.Info().Msg("server exited")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	cmd.Flags().DurationVar(&latency, "latency", 0, "artificial delay added to every search")
	cmd.Flags().BoolVar(&debug, "debug", false, "log every request")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
