// Package notify delivers composed billing payloads to a recipient over
// a messaging push channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "tutorbill/internal/errors"
	"tutorbill/internal/metrics"
)

// Channel delivers an ordered sequence of message payloads to a single
// recipient. Delivery failure must propagate to the caller of the run.
type Channel interface {
	Push(ctx context.Context, to string, payloads []string) error
}

type pushMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushBody struct {
	To       string        `json:"to"`
	Messages []pushMessage `json:"messages"`
}

// PushChannel sends messages to a messaging push API endpoint with a
// bearer token.
type PushChannel struct {
	endpoint string
	token    string
	client   *http.Client
}

// PushOption configures the push channel.
type PushOption func(*PushChannel)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) PushOption {
	return func(ch *PushChannel) {
		if client != nil {
			ch.client = client
		}
	}
}

// NewPushChannel constructs a push channel.
func NewPushChannel(endpoint, token string, opts ...PushOption) (*PushChannel, error) {
	if endpoint == "" {
		return nil, errors.New("push channel: empty endpoint")
	}
	channel := &PushChannel{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(channel)
	}
	return channel, nil
}

// Push posts the payloads as text messages for the given recipient.
func (p *PushChannel) Push(ctx context.Context, to string, payloads []string) error {
	if to == "" {
		return errors.New("push channel: empty recipient")
	}
	if len(payloads) == 0 {
		return errors.New("push channel: no payloads")
	}

	messages := make([]pushMessage, 0, len(payloads))
	for _, payload := range payloads {
		messages = append(messages, pushMessage{Type: "text", Text: payload})
	}

	body, err := json.Marshal(pushBody{To: to, Messages: messages})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewNetworkError("push channel", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return apperrors.NewNetworkError("push channel", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return apperrors.NewNetworkError("push channel",
			fmt.Errorf("non-2xx response %d", resp.StatusCode))
	}

	metrics.PayloadsPushed.Add(float64(len(payloads)))
	return nil
}
