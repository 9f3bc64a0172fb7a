package main

import (
	"os"

	"github.com/spf13/cobra"

	"soundboard/pkg/client"
)

const defaultAPIURL = "http://localhost:8080"

type cliOptions struct {
	apiURL string
	json   bool
}

func (o *cliOptions) client() *client.Client {
	return client.New(o.apiURL)
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "soundboardctl",
		Short:         "Operate a soundboard API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	apiURL := os.Getenv("SOUNDBOARD_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", apiURL, "Base URL of the soundboard API (env SOUNDBOARD_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print raw JSON instead of tables")

	rootCmd.AddCommand(newHealthCommand(opts))
	rootCmd.AddCommand(newSoundboardsCommand(opts))
	rootCmd.AddCommand(newHistoryCommand(opts))
	rootCmd.AddCommand(newReportsCommand(opts))
	rootCmd.AddCommand(newFeedbackCommand(opts))
	return rootCmd
}
