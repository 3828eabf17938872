package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rescale/rescale-browse/internal/constants"
)

// ResolveToken returns the access token and the source it came from.
//
// Priority (highest to lowest):
//  1. flag (explicitly provided token)
//  2. environment (RESCALE_BROWSE_TOKEN)
//  3. token-file (tokenFile, when non-empty)
//  4. token-file (default token path)
//
// Returns empty strings if no token is found. A missing token is not an
// error here: public browsing needs none, and private fetches report it.
func ResolveToken(token, tokenFile string) (string, string) {
	if token = strings.TrimSpace(token); token != "" {
		return token, "flag"
	}

	if envToken := strings.TrimSpace(os.Getenv(constants.EnvToken)); envToken != "" {
		return envToken, "environment"
	}

	if tokenFile != "" {
		key, err := ReadTokenFile(tokenFile)
		if err == nil {
			return key, "token-file"
		}
		log.Warn().Err(err).Str("path", tokenFile).Msg("Configured token file unusable, trying default token path")
	}

	if tokenPath := GetDefaultTokenPath(); tokenPath != "" && tokenPath != tokenFile {
		if _, err := os.Stat(tokenPath); err == nil {
			if key, err := ReadTokenFile(tokenPath); err == nil {
				return key, "token-file"
			}
		}
	}

	return "", ""
}

// ReadTokenFile reads an access token from a file
// The file should contain only the token (whitespace is trimmed)
// Warns if file permissions are too open (not 0600 on Unix systems)
func ReadTokenFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat token file: %w", err)
	}

	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		fmt.Fprintf(os.Stderr, "Warning: Token file %s has insecure permissions %04o. Consider using 'chmod 600 %s'\n", path, mode, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file is empty")
	}
	return token, nil
}

// WriteTokenFile writes an access token to a file with secure permissions (0600)
func WriteTokenFile(path, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("cannot write empty token")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
