package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tabbridge",
		Short:         "Bridge synchronous chat requests to browser-tab agents",
		Long:          "tabbridge runs a local hub that accepts HTTP chat requests, forwards each one to a connected browser extension over WebSocket, and holds the caller until the matching reply arrives.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newStatusCmd(app),
		newConversationsCmd(app),
		newConfigCmd(),
	)

	return rootCmd
}
