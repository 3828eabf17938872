package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newHealthCmd creates the 'health' command.
func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the browse service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client, err := getAPIClient(cfg, logger)
			if err != nil {
				return err
			}

			status, err := client.Health(GetContext())
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			logger.Debug().Str("status", status).Msg("Health check complete")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", client.BaseURL(), status)
			if status != "healthy" {
				return fmt.Errorf("service reported status %q", status)
			}
			return nil
		},
	}

	return cmd
}
