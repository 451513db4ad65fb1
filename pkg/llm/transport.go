package llm

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds a chat request when the caller sets none.
const DefaultTimeout = 2 * time.Minute

// Transport posts chat payloads to one endpoint.
type Transport struct {
	client   *resty.Client
	endpoint string
}

// NewTransport creates a transport for endpoint. An empty apiKey sends no
// Authorization header.
func NewTransport(endpoint, apiKey string, timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &Transport{client: client, endpoint: endpoint}
}

// Endpoint returns the target URL.
func (t *Transport) Endpoint() string {
	return t.endpoint
}

// Post sends payload as JSON and decodes the reply.
func (t *Transport) Post(ctx context.Context, payload any) (*Completion, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(t.endpoint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &TransportError{Err: ctxErr}
		}
		return nil, &TransportError{Err: err}
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	completion, err := DecodeCompletion(resp.Body())
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode(), Err: errors.New("invalid response from LLM endpoint: " + err.Error())}
	}
	return completion, nil
}
