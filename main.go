package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "shipctl",
		Short:        "Command line client for the shipping API",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.query, "query", "q", "", "jq expression applied to the JSON output")
	flags.StringVarP(&a.output, "output", "o", "json", "output format: json or yaml")
	flags.IntVar(&a.pageSize, "page-size", 0, "number of records per page for list commands")
	flags.IntVar(&a.pages, "pages", 1, "maximum number of pages fetched by list commands")
	flags.StringVar(&a.profile, "profile", "default", "keychain profile holding the API key")

	root.AddCommand(
		newAddressCmd(a),
		newTrackerCmd(a),
		newShipmentCmd(a),
		newWebhookCmd(a),
		newAuthCmd(a),
		newListenCmd(a),
	)
	return root
}
