package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/tabbridge/internal/adapters/httpapi"
)

func newConversationsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "Inspect recorded conversations",
	}

	cmd.AddCommand(
		newConversationsListCmd(app),
		newConversationsShowCmd(app),
	)

	return cmd
}

func newConversationsListCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		addr   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations held by the hub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var list httpapi.ConversationListResponse
			if err := app.getJSON(cmd.Context(), addr, "/api/conversations", &list); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			if len(list.Conversations) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No conversations recorded.")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPEER\tEXCHANGES\tLAST ACTIVITY")
			for _, c := range list.Conversations {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					c.ID, c.PeerID, c.Exchanges, c.LastActivity.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw conversation list JSON")
	cmd.Flags().StringVar(&addr, "addr", "", "hub address (host:port), overrides config")

	return cmd
}

func newConversationsShowCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		addr   string
	)

	cmd := &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Show the exchanges of one conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var conversation httpapi.ConversationResponse
			path := "/api/conversations/" + url.PathEscape(args[0])
			if err := app.getJSON(cmd.Context(), addr, path, &conversation); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(conversation)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "conversation %s (peer %s, started %s)\n",
				conversation.ID, conversation.PeerID, conversation.CreatedAt.Format(time.RFC3339))
			for i, exchange := range conversation.Exchanges {
				fmt.Fprintf(out, "\n[%d] %s\n", i+1, exchange.CompletedAt.Format(time.RFC3339))
				fmt.Fprintf(out, "  >> %s\n", exchange.Request)
				fmt.Fprintf(out, "  << %s\n", exchange.Reply)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw conversation JSON")
	cmd.Flags().StringVar(&addr, "addr", "", "hub address (host:port), overrides config")

	return cmd
}
