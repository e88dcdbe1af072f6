package qstash

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/qstash-sdk/qstash-go/internal/version"
)

// Defaults used when no option or environment variable overrides them.
const (
	DefaultBaseURL = "https://qstash.upstash.io"
	DefaultTimeout = 30 * time.Second
)

// Logger receives request-level debug output as alternating key/value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

// LoggerFunc adapts a plain function to Logger.
type LoggerFunc func(msg string, keysAndValues ...any)

func (f LoggerFunc) Debug(msg string, keysAndValues ...any) {
	f(msg, keysAndValues...)
}

// Config holds the client configuration.
type Config struct {
	// Token is the QStash bearer token.
	Token string
	// BaseURL is the base URL of the API.
	BaseURL string
	// Timeout bounds each non-streaming request.
	Timeout time.Duration

	// Headers are set on every request after the defaults.
	Headers map[string]string
	// UserAgent overrides the qstash-go/<version> default.
	UserAgent string
	Logger Logger
	// HTTPClient replaces the default client. Its Timeout is ignored for
	// streaming requests.
	HTTPClient *http.Client
	// Registerer receives the client's Prometheus collectors. Nil disables
	// metrics.
	Registerer prometheus.Registerer
}

// Option configures a Client.
type Option func(*Config)

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Config) {
		c.Token = token
	}
}

// WithBaseURL points the client at another deployment, such as a local
// development server. Trailing slashes are dropped.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout bounds each non-streaming request. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithHeaders merges headers into the set sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range headers {
			c.Headers[k] = v
		}
	}
}

// WithUserAgent replaces the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithLogger routes debug output to l.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithDebug enables debug logging to stderr through a zap development logger.
func WithDebug(enabled bool) Option {
	return func(c *Config) {
		if !enabled {
			return
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return
		}
		c.Logger = NewZapLogger(l.Named("qstash"))
	}
}

// WithHTTPClient sets the HTTP client used to send requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithMetrics registers the client's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registerer = reg
	}
}

func newDefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		Headers:   make(map[string]string),
		UserAgent: version.UserAgent(),
	}
}

// resolveConfig applies options over the defaults.
func resolveConfig(opts ...Option) *Config {
	c := newDefaultConfig()
	for _, apply := range opts {
		apply(c)
	}
	return c
}
