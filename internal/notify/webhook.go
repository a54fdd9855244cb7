package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	requestTimeout = 5 * time.Second
	maxRetries     = 3
)

var httpClient = &http.Client{Timeout: requestTimeout}

// Send posts a notification to a webhook endpoint with retry on 5xx.
func Send(cfg WebhookConfig, event Event, payload Payload) error {
	body, err := formatPayload(cfg.Format, event, payload)
	if err != nil {
		return fmt.Errorf("notify: format payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, cfg.URL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("notify: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range cfg.Headers {
			req.Header.Set(k, v)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("notify: webhook rejected: HTTP %d", resp.StatusCode)
		}
		// 5xx: retry
		lastErr = fmt.Errorf("notify: webhook server error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("notify: webhook failed after %d attempts: %w", maxRetries, lastErr)
}

// formatPayload builds the webhook body for the given format.
func formatPayload(format string, event Event, p Payload) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event, p)
	default:
		return formatGeneric(event, p)
	}
}

func formatGeneric(event Event, p Payload) ([]byte, error) {
	return json.Marshal(struct {
		Event Event `json:"event"`
		Payload
	}{Event: event, Payload: p})
}

func formatSlack(event Event, p Payload) ([]byte, error) {
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("autogate: %s", event),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Action:* %s", p.Name)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Category:* %s", p.Category)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Outcome:* %s", p.Outcome)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Risk:* %d (%s)", p.Score, p.Level)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reason:* %s", p.Reason)},
				},
			},
		},
	}
	return json.Marshal(payload)
}
