// Package config provides configuration management for rescale-browse.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/models"
)

// Config is the effective client configuration.
//
// Config file location:
//   - Windows: %APPDATA%\Rescale\Browse\config.ini
//   - Unix: ~/.config/rescale-browse/config.ini
//
// INI format:
//
//	[server]
//	base_url = http://localhost:8000
//	request_timeout_seconds = 30
//	max_retries = 3
//
//	[auth]
//	token_file = /home/me/.config/rescale-browse/token
//	start_mode = public
//
//	[proxy]
//	mode = no-proxy
//	host = proxy.example.com
//	port = 8080
//	user = DOMAIN\me
//	no_proxy = localhost,127.0.0.1
//	warmup = false
//
//	[log]
//	level = info
type Config struct {
	// Server settings
	APIBaseURL     string
	RequestTimeout time.Duration
	MaxRetries     int

	// Auth settings. AccessToken is never written to the INI file.
	AccessToken string
	TokenSource string // "flag", "environment", "token-file", or ""
	TokenFile   string
	StartMode   string // "public" or "private"

	// Proxy settings
	ProxyMode     string // "no-proxy", "ntlm", "basic", "system"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string // runtime only
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	LogLevel string
}

// Overrides carries command-line values that take precedence over the file
// and the environment. Zero values mean "not set".
type Overrides struct {
	Token     string
	TokenFile string
	APIURL    string
	Private   bool
	ProxyMode string
	ProxyHost string
	ProxyPort int
	LogLevel  string
}

// Validation errors
var (
	ErrMissingBaseURL   = errors.New("base_url is required")
	ErrInvalidTimeout   = errors.New("request_timeout_seconds must be between 1 and 600")
	ErrInvalidRetries   = errors.New("max_retries must be between 0 and 10")
	ErrInvalidProxyMode = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
)

// ConfigDir is the standard configuration directory name
const ConfigDir = constants.AppName

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		APIBaseURL:     constants.DefaultBaseURL,
		RequestTimeout: constants.DefaultRequestTimeout,
		MaxRetries:     constants.MaxRetries,
		StartMode:      models.Public.String(),
		ProxyMode:      "no-proxy",
		LogLevel:       "info",
	}
}

// Load reads configuration from an INI file.
// If path is empty the default location is used. A missing file yields
// defaults and no error; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	server := iniFile.Section("server")
	cfg.APIBaseURL = server.Key("base_url").MustString(cfg.APIBaseURL)
	cfg.RequestTimeout = time.Duration(server.Key("request_timeout_seconds").MustInt(int(constants.DefaultRequestTimeout/time.Second))) * time.Second
	cfg.MaxRetries = server.Key("max_retries").MustInt(cfg.MaxRetries)

	auth := iniFile.Section("auth")
	cfg.TokenFile = auth.Key("token_file").String()
	cfg.StartMode = auth.Key("start_mode").MustString(cfg.StartMode)
	if auth.HasKey("token") {
		fmt.Fprintf(os.Stderr, "Warning: [auth] token in %s is ignored; use a token file or %s\n", path, constants.EnvToken)
	}

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(0)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	cfg.LogLevel = iniFile.Section("log").Key("level").MustString(cfg.LogLevel)

	return cfg, nil
}

// Save writes the configuration to an INI file with owner-only permissions.
// The access token and proxy password are never persisted.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = GetDefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	server, err := iniFile.NewSection("server")
	if err != nil {
		return fmt.Errorf("failed to create server section: %w", err)
	}
	server.Key("base_url").SetValue(cfg.APIBaseURL)
	server.Key("request_timeout_seconds").SetValue(strconv.Itoa(int(cfg.RequestTimeout / time.Second)))
	server.Key("max_retries").SetValue(strconv.Itoa(cfg.MaxRetries))

	auth, err := iniFile.NewSection("auth")
	if err != nil {
		return fmt.Errorf("failed to create auth section: %w", err)
	}
	auth.Key("token_file").SetValue(cfg.TokenFile)
	auth.Key("start_mode").SetValue(cfg.StartMode)

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(strconv.Itoa(cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)
	proxy.Key("warmup").SetValue(strconv.FormatBool(cfg.ProxyWarmup))

	logSection, err := iniFile.NewSection("log")
	if err != nil {
		return fmt.Errorf("failed to create log section: %w", err)
	}
	logSection.Key("level").SetValue(cfg.LogLevel)

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Merge applies environment variables and command-line overrides.
// Priority: flags > environment > config file > defaults.
//
// The access token is resolved separately (see ResolveToken):
//  1. --token flag
//  2. RESCALE_BROWSE_TOKEN environment variable
//  3. --token-file flag, or token_file from the config file
//  4. Default token file (~/.config/rescale-browse/token)
func (c *Config) Merge(o Overrides) {
	if envURL := os.Getenv(constants.EnvBaseURL); envURL != "" {
		c.APIBaseURL = envURL
	}
	if envProxy := os.Getenv("HTTPS_PROXY"); envProxy != "" && c.ProxyHost == "" {
		c.parseProxyURL(envProxy)
	}

	if o.APIURL != "" {
		c.APIBaseURL = o.APIURL
	}
	if o.ProxyMode != "" {
		c.ProxyMode = o.ProxyMode
	}
	if o.ProxyHost != "" {
		c.ProxyHost = o.ProxyHost
	}
	if o.ProxyPort > 0 {
		c.ProxyPort = o.ProxyPort
	}
	if o.Private {
		c.StartMode = models.Private.String()
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.TokenFile != "" {
		c.TokenFile = o.TokenFile
	}

	c.AccessToken, c.TokenSource = ResolveToken(o.Token, c.TokenFile)

	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL != "" && !strings.HasPrefix(c.APIBaseURL, "http") {
		c.APIBaseURL = "http://" + c.APIBaseURL
	}
}

// parseProxyURL parses a proxy URL from environment variable
func (c *Config) parseProxyURL(proxyURL string) {
	proxyURL = strings.TrimPrefix(proxyURL, "http://")
	proxyURL = strings.TrimPrefix(proxyURL, "https://")
	proxyURL = strings.TrimSuffix(proxyURL, "/")

	parts := strings.Split(proxyURL, ":")
	if len(parts) >= 1 {
		c.ProxyHost = parts[0]
	}
	if len(parts) >= 2 {
		if port, err := strconv.Atoi(parts[1]); err == nil {
			c.ProxyPort = port
		}
	}
	if c.ProxyHost != "" && c.ProxyMode == "no-proxy" {
		c.ProxyMode = "system"
	}
}

// Mode returns the configured startup access mode.
func (c *Config) Mode() (models.AccessMode, error) {
	return models.ParseAccessMode(c.StartMode)
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return ErrMissingBaseURL
	}
	if c.RequestTimeout < time.Second || c.RequestTimeout > 600*time.Second {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return ErrInvalidRetries
	}
	switch c.ProxyMode {
	case "", "no-proxy", "system", "basic", "ntlm":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidProxyMode, c.ProxyMode)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	return nil
}

// RedactedToken returns a display-safe form of the access token.
func (c *Config) RedactedToken() string {
	switch n := len(c.AccessToken); {
	case n == 0:
		return "(none)"
	case n <= 4:
		return "****"
	default:
		return "****" + c.AccessToken[n-4:]
	}
}

// getConfigDir returns the platform-appropriate config directory.
// - Windows: %APPDATA%\Rescale\Browse
// - Unix: ~/.config/rescale-browse (XDG standard)
func getConfigDir() string {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Rescale", "Browse")
		}
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			return filepath.Join(userProfile, "AppData", "Roaming", "Rescale", "Browse")
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigDir)
	}
	return ""
}

// GetDefaultConfigPath returns the default config file path.
func GetDefaultConfigPath() string {
	configDir := getConfigDir()
	if configDir == "" {
		return "config.ini"
	}
	return filepath.Join(configDir, "config.ini")
}

// GetDefaultTokenPath returns the default token file path.
// This is where 'config init' saves the token.
func GetDefaultTokenPath() string {
	configDir := getConfigDir()
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "token")
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	configDir := getConfigDir()
	if configDir == "" {
		return fmt.Errorf("could not determine config directory")
	}
	return os.MkdirAll(configDir, 0700)
}
