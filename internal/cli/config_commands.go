package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/models"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rescale-browse configuration",
		Long: `Configuration management commands for rescale-browse.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath returns the --config path or the default location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetDefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for rescale-browse.

The configuration is saved to ~/.config/rescale-browse/config.ini and the
access token, if given, to ~/.config/rescale-browse/token (mode 0600).

Use --force to overwrite existing configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()
			path := configPath()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Fprintln(out, "Rescale Browse Configuration Setup")
			fmt.Fprintln(out, "==================================")
			fmt.Fprintln(out)

			p := newPrompter(cmd.InOrStdin(), out)
			cfg := config.Default()

			cfg.APIBaseURL = p.line("Service base URL", cfg.APIBaseURL)

			timeout := p.line("Request timeout in seconds", strconv.Itoa(int(cfg.RequestTimeout/time.Second)))
			if v, err := strconv.Atoi(timeout); err == nil && v > 0 {
				cfg.RequestTimeout = time.Duration(v) * time.Second
			}

			mode, err := models.ParseAccessMode(p.line("Start mode (public/private)", cfg.StartMode))
			if err != nil {
				return err
			}
			cfg.StartMode = mode.String()

			accessToken, err := p.secret("Access token for private folders (Enter to skip)")
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}

			fmt.Fprintln(out)
			if p.yesNo("Configure proxy?", false) {
				fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
				cfg.ProxyMode = p.line("Proxy mode", "system")
				if cfg.ProxyMode != "no-proxy" {
					cfg.ProxyHost = p.line("Proxy host", "")
					cfg.ProxyPort = 8080
					if v, err := strconv.Atoi(p.line("Proxy port", "8080")); err == nil && v > 0 {
						cfg.ProxyPort = v
					}
					if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
						cfg.ProxyUser = p.line("Proxy user", "")
					}
				}
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if accessToken != "" {
				tokenPath := config.GetDefaultTokenPath()
				if err := config.WriteTokenFile(tokenPath, accessToken); err != nil {
					return fmt.Errorf("failed to save token file: %w", err)
				}
				cfg.TokenFile = tokenPath
				logger.Info().Str("path", tokenPath).Msg("Access token saved")
			}

			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			logger.Info().Str("path", path).Msg("Configuration saved")

			fmt.Fprintln(out)
			fmt.Fprintf(out, "✓ Configuration saved to: %s\n", path)
			if cfg.TokenFile != "" {
				fmt.Fprintf(out, "✓ Access token saved to: %s\n", cfg.TokenFile)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Check the service with: rescale-browse health")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration.

This command shows the merged configuration from:
  1. Configuration file (~/.config/rescale-browse/config.ini)
  2. Environment variables (` + constants.EnvBaseURL + `, ` + constants.EnvToken + `, HTTPS_PROXY)
  3. Command-line flags (--api-url, --token, --token-file, --private, --proxy-*)

Priority: flags > environment > config file > defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()

			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.Merge(config.Overrides{
				Token:     token,
				TokenFile: tokenFile,
				APIURL:    apiBaseURL,
				Private:   private,
				ProxyMode: proxyMode,
				ProxyHost: proxyHost,
				ProxyPort: proxyPort,
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Server Settings:")
			fmt.Fprintf(out, "  Base URL:        %s\n", cfg.APIBaseURL)
			fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout)
			fmt.Fprintf(out, "  Max Retries:     %d\n", cfg.MaxRetries)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Auth Settings:")
			fmt.Fprintf(out, "  Start Mode:   %s\n", cfg.StartMode)
			fmt.Fprintf(out, "  Access Token: %s\n", cfg.RedactedToken())
			if cfg.TokenSource != "" {
				fmt.Fprintf(out, "  Token Source: %s\n", cfg.TokenSource)
			}
			if cfg.TokenFile != "" {
				fmt.Fprintf(out, "  Token File:   %s\n", cfg.TokenFile)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy Settings:")
			fmt.Fprintf(out, "  Proxy Mode: %s\n", cfg.ProxyMode)
			if cfg.ProxyHost != "" {
				fmt.Fprintf(out, "  Proxy Host: %s\n", cfg.ProxyHost)
				fmt.Fprintf(out, "  Proxy Port: %d\n", cfg.ProxyPort)
			}
			if cfg.ProxyUser != "" {
				fmt.Fprintf(out, "  Proxy User: %s\n", cfg.ProxyUser)
			}
			if cfg.NoProxy != "" {
				fmt.Fprintf(out, "  No Proxy:   %s\n", cfg.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Log Level: %s\n", cfg.LogLevel)
			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}

			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "\nWarning: %v\n", err)
			}
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file and the log directory.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", configPath())
			fmt.Fprintf(out, "Token:  %s\n", config.GetDefaultTokenPath())
			fmt.Fprintf(out, "Logs:   %s\n", config.LogDirectory())
			return nil
		},
	}

	return cmd
}
