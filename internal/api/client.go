package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/http"
	"github.com/rescale/rescale-browse/internal/logging"
	"github.com/rescale/rescale-browse/internal/models"
)

// maxResponseBytes caps how much of a listing body is read.
const maxResponseBytes = 32 << 20

// TokenSource supplies the bearer token for private-mode requests.
// How the token is obtained is up to the caller.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
// An empty StaticToken reports ErrMissingToken.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrMissingToken
	}
	return string(s), nil
}

// Client talks to the browse service.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	tokens     TokenSource
	logger     *logging.Logger
}

// NewClient creates a new API client with proxy support and retries.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}

	retryClient, err := http.NewRetryClient(cfg, logger.Zerolog())
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		tokens:     StaticToken(cfg.AccessToken),
		logger:     logger,
	}, nil
}

// SetTokenSource replaces the token source used for private requests.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListFolders fetches the folders visible in mode.
func (c *Client) ListFolders(ctx context.Context, mode models.AccessMode) ([]models.Folder, error) {
	body, err := c.get(ctx, mode, "/"+mode.FoldersPrefix(), nil)
	if err != nil {
		return nil, err
	}
	return decodeFolders(body)
}

// ListFolderFiles fetches the files inside one folder.
func (c *Client) ListFolderFiles(ctx context.Context, mode models.AccessMode, folderID string) ([]models.FileEntry, error) {
	path := fmt.Sprintf("/%s/%s/files", mode.FoldersPrefix(), url.PathEscape(folderID))
	body, err := c.get(ctx, mode, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeFiles(body)
}

// ListFiles fetches files across every folder in mode, optionally limited
// to one file type.
func (c *Client) ListFiles(ctx context.Context, mode models.AccessMode, fileType string) ([]models.FileEntry, error) {
	var query url.Values
	if fileType != "" {
		query = url.Values{"file_type": {fileType}}
	}
	body, err := c.get(ctx, mode, "/"+mode.FilesPath(), query)
	if err != nil {
		return nil, err
	}
	return decodeFiles(body)
}

// Health returns the status string reported by the service.
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.get(ctx, models.Public, "/health", nil)
	if err != nil {
		return "", err
	}
	var payload struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", parseError("%v", err)
	}
	if payload.Status == nil {
		return "", parseError("missing \"status\"")
	}
	return *payload.Status, nil
}

// get performs a GET and returns the body of a 2xx response. Every failure
// is a *FetchError.
func (c *Client) get(ctx context.Context, mode models.AccessMode, path string, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, requestURL, nil)
	if err != nil {
		return nil, networkError(fmt.Errorf("failed to create request: %w", err))
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	if mode.RequiresCredential() {
		token, err := c.tokens.Token()
		if err != nil {
			c.logger.Warn().Str("path", path).Err(err).Msg("private request without credential")
			return nil, &FetchError{Kind: CredentialFailure, Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("mode", mode.String()).
		Str("path", path).
		Msg("GET")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Str("request_id", requestID).Str("path", path).Err(err).Msg("request failed")
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		c.logger.Warn().
			Str("request_id", requestID).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("unexpected status")
		return nil, statusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, networkError(fmt.Errorf("failed to read response: %w", err))
	}
	return body, nil
}
