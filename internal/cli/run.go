package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"searchdeck/internal/config"
	"searchdeck/internal/domain"
	"searchdeck/internal/eventbus"
	"searchdeck/internal/location"
	"searchdeck/internal/logging"
	"searchdeck/internal/metrics"
	"searchdeck/internal/searchapi"
	"searchdeck/internal/storage"
	"searchdeck/internal/ui"
	"searchdeck/internal/ui/services/query"
	"searchdeck/internal/ui/services/recent"
	"searchdeck/internal/ui/services/results"
)

// runTUI wires the services and runs the console until the user quits
func runTUI(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}

	logger, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()

	ctx, cancel := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bus := eventbus.New(logger)
	defer bus.Close()

	met := metrics.New()
	defer met.Subscribe(bus)()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := met.Serve(ctx, cfg.Metrics.Listen, logger); err != nil {
				logger.Error().Err(err).Str("addr", cfg.Metrics.Listen).Msg("metrics listener stopped")
			}
		}()
	}

	store := openStore(cfg, logger)
	defer store.Close()

	loc := location.NewFile(cfg.Location.File)
	if len(args) == 1 {
		values, err := location.ParseLink(args[0])
		if err != nil {
			return fmt.Errorf("invalid link: %w", err)
		}
		if err := loc.Replace(values); err != nil {
			return fmt.Errorf("failed to store link: %w", err)
		}
	}

	rec := recent.Load(store, bus, logger)
	client := searchapi.NewClient(cfg.Endpoint, cfg.Search.Timeout.Duration, logger)
	cache := results.New(
		client,
		results.Options{
			TTL:     cfg.Cache.TTL.Duration,
			Size:    cfg.Cache.Size,
			Timeout: cfg.Search.Timeout.Duration,
		},
		bus, logger)
	q := query.NewService(query.Options{
		Mode:     domain.ParseMode(cfg.DefaultMode),
		Debounce: query.NewDebouncer(cfg.Search.Debounce.Duration),
		Location: loc,
		Recents:  rec,
		Resolver: cache,
		Bus:      bus,
	}, logger)

	model := ui.NewModel(ui.Dependencies{
		Config:  cfg,
		Bus:     bus,
		Query:   q,
		Recent:  rec,
		Results: cache,
		Metrics: met,
		Opener:  ui.NewSystemOpener(),
		Logger:  logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	if cfg.Location.Watch {
		go func() {
			err := loc.Watch(ctx, logger, func(url.Values) { p.Send(ui.LocationChangedMsg{}) })
			if err != nil {
				logger.Warn().Err(err).Str("file", loc.Path()).Msg("location watcher stopped")
			}
		}()
	}

	go func() {
		p.Send(checkBackend(ctx, client))
	}()

	logger.Info().Str("endpoint", client.Endpoint()).Str("mode", cfg.DefaultMode).Msg("starting UI")
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		logger.Error().Err(err).Msg("error running program")
		return fmt.Errorf("error running program: %w", err)
	}
	logger.Info().Msg("UI exited normally")
	return nil
}

// healthTimeout bounds the startup health check of the search endpoint
const healthTimeout = 3 * time.Second

// checkBackend asks the search endpoint for its health so an unreachable backend is
// reported before the first search
func checkBackend(ctx context.Context, client *searchapi.Client) ui.BackendStatusMsg {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return ui.BackendStatusMsg{Endpoint: client.Endpoint(), Err: client.Health(ctx)}
}

// openStore opens the configured recent-query store, degrading to memory on failure
func openStore(cfg *config.Config, logger zerolog.Logger) storage.Store {
	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		logger.Warn().Err(err).Str("backend", cfg.Storage.Backend).Msg("falling back to memory store")
		return storage.NewMemoryStore()
	}
	return store
}

// contextOrBackground returns the command's context, which is nil outside Execute
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
