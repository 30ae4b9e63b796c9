package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"searchdeck/internal/domain"
	"searchdeck/internal/location"
)

func newLinkCmd(opts *rootOptions) *cobra.Command {
	var q string
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print the shareable link for a search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q = strings.TrimSpace(q)
			if q == "" {
				return fmt.Errorf("--q is required")
			}
			values := url.Values{}
			values.Set("q", q)
			values.Set("mode", string(domain.ParseMode(opts.mode)))
			fmt.Fprintln(cmd.OutOrStdout(), location.FormatLink(values))
			return nil
		},
	}
	cmd.Flags().StringVar(&q, "q", "", "query text")
	return cmd
}
