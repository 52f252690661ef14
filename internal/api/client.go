package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/evallife/llm-playground/internal/types"
)

const (
	DefaultTimeout = 60 * time.Second

	maxResponseSize = 10 << 20
	maxErrorBody    = 512
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is a 2xx answer from the endpoint.
type Response struct {
	Status int
	Body   []byte
}

type Client struct {
	httpClient HTTPClient
	logger     *zap.Logger
}

// NewClient returns a Client. A nil httpClient gets a plain http.Client
// bounded by DefaultTimeout.
func NewClient(httpClient HTTPClient, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger.With(zap.String("component", "api")),
	}
}

// Send POSTs body as JSON to cfg.EndpointURL. Any failure, including a
// non-2xx status, comes back as a *TransportError, except a 2xx body over
// the size cap, which is a *MalformedResponseError.
func (c *Client) Send(ctx context.Context, cfg types.Config, body ChatRequest) (*Response, error) {
	req, err := newHTTPRequest(ctx, cfg.EndpointURL, cfg.APIKey, body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("endpoint", cfg.EndpointURL),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("response received",
		zap.String("endpoint", cfg.EndpointURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Status: resp.StatusCode, Body: errorMessage(data)}
	}
	if len(data) > maxResponseSize {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("response too large: body exceeds %d bytes", maxResponseSize)}
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

func newHTTPRequest(ctx context.Context, endpoint, apiKey string, body ChatRequest) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if key := strings.TrimSpace(apiKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	return req, nil
}

// errorMessage prefers the message of an OpenAI-style error envelope and
// falls back to the raw body, truncated.
func errorMessage(body []byte) string {
	var envelope openai.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return msg
}
