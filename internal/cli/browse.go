package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/logging"
	"github.com/rescale/rescale-browse/internal/tui"
)

// newBrowseCmd creates the 'browse' command.
func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive browser",
		Long: `Open the two-pane interactive browser.

Keys:
  ↑/↓      move between folders
  enter    open or close the folder under the cursor
  m        toggle public/private
  f        cycle the type filter (all, document, image, video, audio)
  s        cycle the sort key (none, name, type, created, updated)
  d        flip sort direction
  r        refresh folders
  q        quit

Logs are written to ` + config.LogDirectory() + ` while the browser is open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			bus := events.NewEventBus(constants.EventBusDefaultBuffer)
			fileLogger, closer, err := logging.NewFileLogger(config.LogDirectory(), bus)
			if err != nil {
				GetLogger().Warn().Err(err).Msg("Could not open log file, logging disabled")
				fileLogger = logging.NewLogger("tui", bus)
			} else {
				defer closer.Close()
			}

			// The terminal belongs to the renderer; send package-level logging
			// to the same place.
			previous := log.Logger
			log.Logger = fileLogger.Zerolog()
			defer func() { log.Logger = previous }()

			s, err := newSession(cfg, fileLogger, bus)
			if err != nil {
				return err
			}
			defer s.Close()

			fileLogger.Info().
				Str("api_url", cfg.APIBaseURL).
				Str("mode", cfg.StartMode).
				Msg("Interactive session started")

			err = tui.Run(GetContext(), s.browser, bus)
			if err != nil {
				fileLogger.Error().Err(err).Msg("Interactive session failed")
			}
			if dropped := bus.Dropped(); dropped > 0 {
				fileLogger.Debug().Int64("dropped", dropped).Msg("Event subscribers fell behind")
			}
			return err
		},
	}

	return cmd
}
