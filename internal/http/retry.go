package http

import (
	"context"
	nethttp "net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/constants"
)

// retryLogger adapts zerolog to retryablehttp.LeveledLogger.
// Per-attempt chatter goes to debug; retries and give-ups are warnings.
type retryLogger struct {
	log zerolog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

// NewRetryClient wraps the proxy-aware API client with retry logic.
//
// Transient failures (connection errors, 429, 5xx) are retried up to
// cfg.MaxRetries times with exponential backoff. When retries run out the
// last response is returned as-is so callers see the real status code
// instead of a generic "giving up" error.
func NewRetryClient(cfg *config.Config, logger zerolog.Logger) (*retryablehttp.Client, error) {
	httpClient, err := CreateAPIClient(cfg)
	if err != nil {
		return nil, err
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = constants.RetryInitialDelay
	retryClient.RetryWaitMax = constants.RetryMaxDelay
	retryClient.Logger = retryLogger{log: logger.With().Str("component", "retry").Logger()}
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return retryClient, nil
}

// checkRetry never retries a cancelled request and otherwise defers to
// the library policy.
func checkRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
