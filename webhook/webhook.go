package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// EventAuditCompleted is sent after a report is produced.
const EventAuditCompleted = "audit.completed"

// SignatureHeader carries "sha256=<hex>" of the request body.
const SignatureHeader = "X-AEO-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	AuditID   string `json:"audit_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Sender delivers events. The zero value is not usable; use NewSender.
type Sender struct {
	client *http.Client
	secret string
	delays []time.Duration

	// OnResult, if set, is called once per async delivery with the final outcome.
	OnResult func(delivered bool)
}

// NewSender creates a Sender signing bodies with secret. Async deliveries
// retry after 1s, 5s and 30s.
func NewSender(secret string, timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		client: &http.Client{Timeout: timeout},
		secret: secret,
		delays: []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second},
	}
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends an event synchronously. The body is signed when the sender
// has a secret.
func (s *Sender) Deliver(ctx context.Context, url string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "AEOAudit-Webhook/1.0")
	if s.secret != "" {
		req.Header.Set(SignatureHeader, Sign(s.secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverAsync sends an event in the background, retrying on failure.
func (s *Sender) DeliverAsync(url string, event *Event) {
	go func() {
		delivered := s.deliverWithRetry(url, event)
		if s.OnResult != nil {
			s.OnResult(delivered)
		}
	}()
}

func (s *Sender) deliverWithRetry(url string, event *Event) bool {
	for attempt, delay := range s.delays {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
		err := s.Deliver(ctx, url, event)
		cancel()
		if err == nil {
			slog.Info("webhook delivered",
				"url", url,
				"event", event.Type,
				"audit_id", event.AuditID,
				"attempt", attempt+1,
			)
			return true
		}
		slog.Warn("webhook delivery failed",
			"url", url,
			"event", event.Type,
			"audit_id", event.AuditID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	slog.Error("webhook delivery exhausted all retries",
		"url", url,
		"event", event.Type,
		"audit_id", event.AuditID,
	)
	return false
}
