package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/internal/pipeline"
)

// Notification event names.
const (
	EventTranscriptionCompleted = "transcription.completed"
	EventTranscriptionFailed    = "transcription.failed"
)

// Event is the payload posted to the configured endpoint.
type Event struct {
	Event     string    `json:"event"`
	AssetID   string    `json:"asset_id"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// retryDelays spaces the delivery attempts after the first failure.
var retryDelays = []time.Duration{5 * time.Second, 30 * time.Second}

// Notifier posts signed job-outcome events to one configured endpoint.
// Payloads are signed with HMAC-SHA256 when a secret is set so the receiver
// can verify the sender.
type Notifier struct {
	url    string
	secret string
	client *http.Client
	logger *logging.Logger
}

// NewNotifier creates a webhook notifier targeting url.
func NewNotifier(url, secret string, timeout time.Duration, logger *logging.Logger) *Notifier {
	return &Notifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Watch consumes pipeline events and delivers a notification for every
// terminal job outcome. It returns when the channel closes or the context is
// cancelled.
func (n *Notifier) Watch(ctx context.Context, events <-chan pipeline.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case pipeline.EventJobCompleted:
				n.notify(ctx, Event{
					Event:     EventTranscriptionCompleted,
					AssetID:   event.AssetID,
					Timestamp: event.Timestamp,
				})
			case pipeline.EventJobFailed:
				n.notify(ctx, Event{
					Event:     EventTranscriptionFailed,
					AssetID:   event.AssetID,
					Error:     event.Error,
					Timestamp: event.Timestamp,
				})
			}
		}
	}
}

func (n *Notifier) notify(ctx context.Context, event Event) {
	if err := n.Deliver(ctx, event); err != nil {
		n.logger.WithError(err).WithAssetID(event.AssetID).Warn("webhook delivery failed")
	}
}

// Deliver posts one event, retrying transient failures with backoff. A 2xx
// response counts as delivered; anything else is retried until the attempts
// run out.
func (n *Notifier) Deliver(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	deliveryID := uuid.New().String()

	var lastErr error
	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelays[attempt-1]):
			}
		}

		if lastErr = n.post(ctx, deliveryID, event.Event, payload); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("webhook delivery %s exhausted retries: %w", deliveryID, lastErr)
}

func (n *Notifier) post(ctx context.Context, deliveryID, eventName string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", eventName)
	req.Header.Set("X-Webhook-Delivery", deliveryID)
	if n.secret != "" {
		req.Header.Set("X-Webhook-Signature", Signature(payload, n.secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Signature computes the sha256 HMAC header value for a payload.
func Signature(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}
