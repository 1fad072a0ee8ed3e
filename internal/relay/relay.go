package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/datasaur/datasaur-mcp/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client relays a single user message to a sandbox endpoint and normalizes the answer.
// It keeps no per-call state and is safe for concurrent use.
type Client struct {
	logger    *zap.Logger
	transport http.RoundTripper
}

// Option configures a Client
type Option func(*Client)

// WithTransport overrides the base round tripper (tests, proxies)
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}

// New creates a relay client
func New(logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		logger:    logger,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke performs one POST to ep.BaseURL with payload as the user message.
// Every failure is returned inside the Result, never as a Go error.
func (c *Client) Invoke(ctx context.Context, ep models.EndpointConfig, payload string, mode Mode) Result {
	if !ep.Configured() {
		c.logger.Error("Datasaur endpoint not configured",
			zap.String("endpoint", ep.Name),
			zap.Bool("has_url", ep.BaseURL != ""),
			zap.Bool("has_api_key", ep.APIKey != ""))
		return Fail(&Error{Kind: KindConfigMissing, Label: ep.Label})
	}

	requestID := uuid.NewString()
	log := c.logger.With(
		zap.String("endpoint", ep.Name),
		zap.String("request_id", requestID),
	)

	body, err := json.Marshal(models.NewUserRequest(payload))
	if err != nil {
		log.Error("Failed to marshal request", zap.Error(err))
		return Fail(&Error{Kind: KindMalformedResponse, Label: ep.Label, Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.BaseURL, bytes.NewReader(body))
	if err != nil {
		log.Error("Failed to create request", zap.Error(err))
		return Fail(&Error{Kind: KindTransportFailure, Label: ep.Label, Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log.Debug("Sending request to Datasaur API",
		zap.String("url", ep.BaseURL),
		zap.String("mode", mode.String()),
		zap.Int("body_length", len(body)))

	start := time.Now()
	resp, err := c.httpClient(ep).Do(req)
	if err != nil {
		log.Error("Datasaur API request failed",
			zap.Bool("timeout", isTimeout(err)),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return Fail(&Error{Kind: KindTransportFailure, Label: ep.Label, Err: err})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read Datasaur API response",
			zap.Int("status", resp.StatusCode),
			zap.Bool("timeout", isTimeout(err)),
			zap.Error(err))
		return Fail(&Error{Kind: KindTransportFailure, Label: ep.Label, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("Datasaur API returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(data)),
			zap.Duration("latency", time.Since(start)))
		return Fail(&Error{Kind: KindRemoteStatus, Label: ep.Label, Status: resp.StatusCode})
	}

	content, err := models.FirstContent(data)
	switch {
	case errors.Is(err, models.ErrMissingChoices):
		log.Warn("'choices' key missing or empty in Datasaur API response", zap.String("body", string(data)))
		return Fail(&Error{Kind: KindMalformedResponse, Label: ep.Label, Detail: err.Error(), Err: err})
	case errors.Is(err, models.ErrMissingContent):
		log.Warn("'message' or 'content' key missing in Datasaur API response choice", zap.String("body", string(data)))
		return Fail(&Error{Kind: KindMalformedResponse, Label: ep.Label, Detail: err.Error(), Err: err})
	case err != nil:
		log.Error("Failed to decode Datasaur API response",
			zap.String("body", string(data)),
			zap.Error(err))
		return Fail(&Error{Kind: KindMalformedResponse, Label: ep.Label, Err: err})
	}

	log.Debug("Received response from Datasaur API",
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(data)),
		zap.Duration("latency", time.Since(start)))

	return OK(renderContent(content, mode))
}

// httpClient builds a per-endpoint client: bearer auth, endpoint timeout, no redirects.
// Connections are pooled by the shared base transport.
func (c *Client) httpClient(ep models.EndpointConfig) *http.Client {
	return &http.Client{
		Timeout: ep.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: ep.APIKey}),
			Base:   c.transport,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
