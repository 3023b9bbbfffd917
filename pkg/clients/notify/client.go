// Package notify delivers reminder digests to an external webhook.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Item is one upcoming fumigation in a digest.
type Item struct {
	FumigationID string    `json:"fumigation_id"`
	FieldID      string    `json:"field_id"`
	ApplicatorID string    `json:"applicator_id"`
	Date         time.Time `json:"date"`
}

// Digest is the payload pushed to the webhook.
type Digest struct {
	GeneratedAt time.Time `json:"generated_at"`
	HorizonDays int       `json:"horizon_days"`
	Upcoming    []Item    `json:"upcoming"`
}

// Client delivers digests.
type Client interface {
	SendDigest(ctx context.Context, digest Digest) error
}

// WebhookClient is a resty-backed implementation of Client posting JSON to a
// configured URL.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds a webhook client for the given URL.
func NewWebhookClient(url string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{httpClient: restyClient, url: url}
}

// SendDigest posts the digest to the webhook. Any non-2xx response is an error.
func (c *WebhookClient) SendDigest(ctx context.Context, digest Digest) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(digest).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send reminder digest: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("reminder webhook error: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}
