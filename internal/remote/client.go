package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chaindocs/tradecore/internal/lifecycle"
)

// Config describes connectivity to the backend trade API.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	AuthToken string
}

// Client talks to the out-of-scope backend that owns trades and documents.
// It is a protocol client only: every business rule is enforced server-side
// and merely pre-checked locally.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client against the given base URL. Transition requests
// are never retried automatically; retry is a user-initiated action, so the
// underlying transport performs a single attempt per call.
func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.AuthToken != "" {
		client.SetAuthToken(cfg.AuthToken)
	}

	return &Client{http: client}
}

// apiError is the backend's machine-readable error envelope.
type apiError struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (e apiError) message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetError(&apiError{})
}

// classify converts a transport or HTTP-level failure into the lifecycle
// error taxonomy. Backend denials (4xx) become RemoteRejected with the
// backend's detail surfaced verbatim; everything else is RemoteUnreachable.
func classify(resp *resty.Response, err error, operation string) error {
	if err != nil {
		return &lifecycle.Denial{
			Reason: lifecycle.ReasonRemoteUnreachable,
			Detail: fmt.Sprintf("%s: %v", operation, err),
		}
	}
	if resp.IsSuccess() {
		return nil
	}

	detail := fmt.Sprintf("%s: status %d", operation, resp.StatusCode())
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr.message() != "" {
		detail = apiErr.message()
	}

	if resp.StatusCode() >= http.StatusInternalServerError {
		return &lifecycle.Denial{Reason: lifecycle.ReasonRemoteUnreachable, Detail: detail}
	}
	return &lifecycle.Denial{Reason: lifecycle.ReasonRemoteRejected, Detail: detail}
}
