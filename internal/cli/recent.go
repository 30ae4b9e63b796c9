package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"searchdeck/internal/storage"
	"searchdeck/internal/ui/services/recent"
)

func newRecentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Inspect or clear recent searches",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print recent searches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecent(opts, func(svc *recent.Service) error {
				for _, q := range svc.Items() {
					fmt.Fprintln(cmd.OutOrStdout(), q)
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget all recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecent(opts, func(svc *recent.Service) error {
				svc.Clear()
				fmt.Fprintln(cmd.OutOrStdout(), "Recent searches cleared")
				return nil
			})
		},
	})
	return cmd
}

// withRecent opens the configured store for the duration of fn
func withRecent(opts *rootOptions, fn func(*recent.Service) error) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}
	defer store.Close()
	return fn(recent.Load(store, nil, zerolog.Nop()))
}
