package constants

import (
	"time"
)

// Application identity
const (
	// AppName is used for the config directory and log file names.
	AppName = "rescale-browse"

	// DefaultBaseURL is the browse service the client talks to when nothing
	// else is configured.
	DefaultBaseURL = "http://localhost:8000"

	// EnvBaseURL overrides the configured base URL.
	EnvBaseURL = "RESCALE_BROWSE_API_URL"

	// EnvToken supplies the private-mode bearer token.
	EnvToken = "RESCALE_BROWSE_TOKEN"
)

// Retry configuration
const (
	// MaxRetries - maximum number of retries for transient errors
	MaxRetries = 3

	// RetryInitialDelay - initial delay before first retry (200ms)
	RetryInitialDelay = 200 * time.Millisecond

	// RetryMaxDelay - maximum delay between retries (5s)
	RetryMaxDelay = 5 * time.Second

	// DefaultRequestTimeout bounds a single HTTP request including retries.
	DefaultRequestTimeout = 30 * time.Second
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// UI Updates
const (
	// SpinnerTickInterval - frame interval for loading spinners (100ms)
	SpinnerTickInterval = 100 * time.Millisecond

	// WaitForLoadTimeout - how long CLI commands wait for a load to settle
	// before giving up. The HTTP timeout normally fires first.
	WaitForLoadTimeout = 2 * time.Minute
)

// HTTP Client Configuration
const (
	// HTTPMaxIdleConns - maximum idle connections across all hosts
	HTTPMaxIdleConns = 20

	// HTTPMaxIdleConnsPerHost - maximum idle connections per host
	HTTPMaxIdleConnsPerHost = 5

	// HTTPIdleConnTimeout - how long idle connections stay in the pool
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - maximum time for TLS handshake
	HTTPTLSHandshakeTimeout = 10 * time.Second

	// HTTPResponseHeaderTimeout - maximum time to wait for response headers
	HTTPResponseHeaderTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue responses
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - TCP connection timeout
	HTTPDialTimeout = 10 * time.Second

	// HTTPDialKeepAlive - TCP keep-alive interval
	HTTPDialKeepAlive = 30 * time.Second

	// ProxyWarmupTimeout - timeout for the proxy warmup request
	ProxyWarmupTimeout = 10 * time.Second
)

// Table layout
const (
	// TimestampColumnWidth - width of created/updated columns in text output
	TimestampColumnWidth = 25

	// NameColumnMinWidth - minimum width of the name column
	NameColumnMinWidth = 20
)
