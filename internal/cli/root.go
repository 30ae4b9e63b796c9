// Package cli wires the searchdeck commands
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"searchdeck/internal/config"
	"searchdeck/internal/domain"
)

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	endpoint   string
	mode       string
}

// load reads the config file and applies flag overrides
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := o.service().Load()
	if err != nil {
		return nil, err
	}
	if o.endpoint != "" {
		cfg.Endpoint = o.endpoint
	}
	if o.mode != "" {
		cfg.DefaultMode = string(domain.ParseMode(o.mode))
	}
	return cfg, nil
}

func (o *rootOptions) service() config.ConfigService {
	if o.configPath != "" {
		return config.NewConfigServiceAt(o.configPath)
	}
	return config.NewConfigService()
}

// NewRootCmd builds the searchdeck command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "searchdeck [link]",
		Short: "Keyboard-driven search console",
		Long: `searchdeck is a terminal search console. Type a query, pick a suggestion or
a palette command, and browse results without leaving the keyboard.

The current search is mirrored to a link such as
  searchdeck://search?q=knowledge+graphs&mode=neutral
Passing a link as the argument starts the console on that search.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts, args)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/searchdeck/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "search backend base URL")
	cmd.PersistentFlags().StringVar(&opts.mode, "mode", "", "ranking mode: auto, personalized or neutral")

	cmd.AddCommand(newRecentCmd(opts))
	cmd.AddCommand(newLinkCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		return fmt.Errorf("searchdeck: %w", err)
	}
	return nil
}
