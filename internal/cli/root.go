// Package cli provides the command-line interface for rescale-browse.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rescale/rescale-browse/internal/logging"
	"github.com/rescale/rescale-browse/internal/version"
)

var (
	// Global flags
	cfgFile    string
	token      string
	tokenFile  string // Path to file containing the access token
	apiBaseURL string
	private    bool
	proxyMode  string
	proxyHost  string
	proxyPort  int
	verbose    bool
	debug      bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command for CLI mode.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rescale-browse",
		Short: "Browse public and private folders of a Rescale file service",
		Long: `Rescale Browse ` + version.Version + ` - Built: ` + version.BuildTime + `
Terminal browser for the folders and files of a Rescale file service.

Interactive mode (default on a terminal):
  Two-pane browser. Toggle public/private, open folders, filter and sort files.

Command mode:
  List folders and files as plain text for scripts and pipelines.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Access token for private folders (overrides all other sources)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Path to file containing the access token")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "Browse service base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&private, "private", false, "Start in private mode")
	rootCmd.PersistentFlags().StringVar(&proxyMode, "proxy-mode", "", "Proxy mode: no-proxy, system, basic, ntlm")
	rootCmd.PersistentFlags().StringVar(&proxyHost, "proxy-host", "", "Proxy host")
	rootCmd.PersistentFlags().IntVar(&proxyPort, "proxy-port", 0, "Proxy port")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.AddCommand(newCompletionCmd(rootCmd))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}
