package cli

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/rescale/rescale-browse/internal/api"
	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/http"
	"github.com/rescale/rescale-browse/internal/logging"
	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/state"
)

// loadConfig reads the config file and applies environment and flag
// overrides. It prompts for a proxy password when one is needed and stdin
// is a terminal.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !verbose && !debug {
		if level, err := logging.ParseLevel(cfg.LogLevel); err == nil {
			logging.SetGlobalLevel(level)
		}
	}

	if http.NeedsProxyPassword(cfg) && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := promptPassword(fmt.Sprintf("Proxy password for %s: ", cfg.ProxyUser))
		if err != nil {
			return nil, fmt.Errorf("failed to read proxy password: %w", err)
		}
		cfg.ProxyPassword = password
	}

	GetLogger().Debug().
		Str("api_url", cfg.APIBaseURL).
		Str("mode", cfg.StartMode).
		Str("token_source", cfg.TokenSource).
		Str("proxy_mode", cfg.ProxyMode).
		Msg("Configuration loaded")

	return cfg, nil
}

// getAPIClient creates an API client from cfg.
func getAPIClient(cfg *config.Config, log *logging.Logger) (*api.Client, error) {
	client, err := api.NewClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

// session is one browse session wired to the API: client, event bus and
// browser sharing a logger.
type session struct {
	cfg     *config.Config
	client  *api.Client
	bus     *events.EventBus
	browser *state.Browser
}

func newSession(cfg *config.Config, log *logging.Logger, bus *events.EventBus) (*session, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	client, err := getAPIClient(cfg, log)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		bus = events.NewEventBus(constants.EventBusDefaultBuffer)
	}
	return &session{
		cfg:    cfg,
		client: client,
		bus:    bus,
		browser: state.NewBrowser(client, state.Options{
			Mode:           mode,
			EventBus:       bus,
			Logger:         log,
			RequestTimeout: cfg.RequestTimeout,
		}),
	}, nil
}

// Close stops the browser and the event bus.
func (s *session) Close() {
	s.browser.Close()
	s.bus.Close()
}

// loadFolders starts the session and waits for the folder listing to settle.
// A failed listing is returned as an error carrying the display message.
func (s *session) loadFolders(ctx context.Context) (state.ViewModel, error) {
	spin := newSpinner()
	spin.Start(fmt.Sprintf("Loading %s folders", s.browser.View().Mode))
	defer spin.Finish()

	if err := s.browser.Start(); err != nil {
		return state.ViewModel{}, err
	}
	view, err := awaitSettled(ctx, s.bus, s.browser, func(v state.ViewModel) bool {
		return v.FolderLoadState.Settled()
	})
	if err != nil {
		return view, err
	}
	if view.FolderLoadState.IsFailed() {
		return view, fmt.Errorf("failed to list %s folders: %s", view.Mode, view.FolderLoadState.Message)
	}
	return view, nil
}

// loadFiles selects folderID and waits for its files to settle.
func (s *session) loadFiles(ctx context.Context, folderID string) (state.ViewModel, error) {
	spin := newSpinner()
	spin.Start("Loading files")
	defer spin.Finish()

	if err := s.browser.SelectFolder(folderID); err != nil {
		return state.ViewModel{}, fmt.Errorf("folder %q not found in %s folders: %w", folderID, s.browser.View().Mode, err)
	}
	view, err := awaitSettled(ctx, s.bus, s.browser, func(v state.ViewModel) bool {
		return v.HasSelection && v.FileLoadState.Settled()
	})
	if err != nil {
		return view, err
	}
	if view.FileLoadState.IsFailed() {
		return view, fmt.Errorf("failed to list files of %s: %s", folderID, view.FileLoadState.Message)
	}
	return view, nil
}

// modeLabel returns the display name of a mode for messages.
func modeLabel(m models.AccessMode) string {
	if m == models.Private {
		return "Private"
	}
	return "Public"
}
