package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/tabbridge/internal/adapters/httpapi"
)

func newStatusCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		addr   string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show attached peers and in-flight calls",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var status httpapi.StatusResponse
			fetch := func(ctx context.Context) error {
				return app.getJSON(ctx, addr, "/api/status", &status)
			}

			if err := runHubFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Querying hub status...", fetch); err != nil {
				return err
			}

			return writeStatusOutput(cmd, app, status, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw status JSON")
	cmd.Flags().StringVar(&addr, "addr", "", "hub address (host:port), overrides config")

	return cmd
}

func writeStatusOutput(cmd *cobra.Command, app *app, status httpapi.StatusResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	rendered, err := app.statusRenderer(status)
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
