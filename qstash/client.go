package qstash

import (
	"github.com/qstash-sdk/qstash-go/internal/httpx"
	"github.com/qstash-sdk/qstash-go/qstash/resources"
)

// Client is the QStash API client. It is safe for concurrent use.
type Client struct {
	cfg       *Config
	transport *httpx.Transport

	// Resource accessors
	messages    *resources.MessagesResource
	queues      *resources.QueuesResource
	schedules   *resources.SchedulesResource
	urlGroups   *resources.URLGroupsResource
	dlq         *resources.DLQResource
	events      *resources.EventsResource
	signingKeys *resources.SigningKeysResource
	llm         *resources.LLMResource
}

// NewClient creates a new client with the given options. It fails with an
// InvalidCredentialError or InvalidBaseURLError before anything is sent.
func NewClient(opts ...Option) (*Client, error) {
	cfg := resolveConfig(opts...)

	var metrics *httpx.Metrics
	if cfg.Registerer != nil {
		metrics = httpx.NewMetrics(cfg.Registerer)
	}

	transport, err := httpx.NewTransport(httpx.Config{
		BaseURL:    cfg.BaseURL,
		Token:      cfg.Token,
		UserAgent:  cfg.UserAgent,
		Headers:    cfg.Headers,
		Timeout:    cfg.Timeout,
		HTTPClient: cfg.HTTPClient,
		Logger:     wrapLogger(cfg.Logger),
		Metrics:    metrics,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		transport: transport,
	}
	c.initResources()

	return c, nil
}

// wrapLogger wraps a qstash.Logger to an httpx.Logger.
func wrapLogger(l Logger) httpx.Logger {
	if l == nil {
		return nil
	}
	return &loggerWrapper{l}
}

type loggerWrapper struct {
	Logger
}

func (w *loggerWrapper) Debug(msg string, keysAndValues ...any) {
	w.Logger.Debug(msg, keysAndValues...)
}

// initResources initializes all resource accessors.
func (c *Client) initResources() {
	c.messages = resources.NewMessagesResource(c.transport)
	c.queues = resources.NewQueuesResource(c.transport)
	c.schedules = resources.NewSchedulesResource(c.transport)
	c.urlGroups = resources.NewURLGroupsResource(c.transport)
	c.dlq = resources.NewDLQResource(c.transport)
	c.events = resources.NewEventsResource(c.transport)
	c.signingKeys = resources.NewSigningKeysResource(c.transport)
	c.llm = resources.NewLLMResource(c.transport)
}

// Close releases idle connections held by the client's HTTP pool. Open chat
// streams must be closed separately. The client stays usable: a later request
// opens a new connection.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// GetConfig returns a copy of the client configuration, which is fixed at
// construction.
func (c *Client) GetConfig() Config {
	return *c.cfg
}

// Messages returns the Messages resource.
func (c *Client) Messages() *resources.MessagesResource {
	return c.messages
}

// Queues returns the Queues resource.
func (c *Client) Queues() *resources.QueuesResource {
	return c.queues
}

// Schedules returns the Schedules resource.
func (c *Client) Schedules() *resources.SchedulesResource {
	return c.schedules
}

// URLGroups returns the URL groups resource.
func (c *Client) URLGroups() *resources.URLGroupsResource {
	return c.urlGroups
}

// DLQ returns the dead-letter queue resource.
func (c *Client) DLQ() *resources.DLQResource {
	return c.dlq
}

// Events returns the Events resource.
func (c *Client) Events() *resources.EventsResource {
	return c.events
}

// SigningKeys returns the signing keys resource.
func (c *Client) SigningKeys() *resources.SigningKeysResource {
	return c.signingKeys
}

// LLM returns the chat completions resource.
func (c *Client) LLM() *resources.LLMResource {
	return c.llm
}

// Transport exposes the classified transport for requests the resources do
// not cover.
func (c *Client) Transport() *httpx.Transport {
	return c.transport
}
