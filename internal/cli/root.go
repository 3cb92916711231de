package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/cardboard/internal/dependencies/uuid"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var envErr error
	cfg, envErr = DefaultConfig()
	if cfg == nil {
		cfg = &Config{Output: "text", ClientIDFile: defaultClientIDFile()}
	}

	rootCmd := &cobra.Command{
		Use:   "cbctl",
		Short: "CLI tool for the cardboard server",
		Long: `cbctl is a CLI tool for interacting with a cardboard whiteboard server.

It can list and create sessions, watch a session's live updates, place
and move cards, and import cards from a Jira CSV export.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}

			// Reuse the stored client id so reconnects resume the same participant
			if err := cfg.LoadClientID(uuid.New()); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CARDBOARD_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "Client id (env: CARDBOARD_CLIENT_ID)")
	rootCmd.PersistentFlags().StringVar(&cfg.ClientIDFile, "client-id-file", cfg.ClientIDFile, "Client id file path (env: CARDBOARD_CLIENT_ID_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newCardCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// dialSession connects over the websocket and joins the session
func dialSession(cmd *cobra.Command, sessionID string) (*Socket, error) {
	sock, err := Dial(cmd.Context(), cfg.ServerURL, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	if _, err := sock.Join(sessionID); err != nil {
		_ = sock.Close()
		return nil, err
	}
	return sock, nil
}
