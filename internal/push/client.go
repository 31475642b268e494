package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notification is one push message for one recipient. Intent names the
// conversation entry point the notification opens.
type Notification struct {
	Title  string
	UserID string
	Intent string
}

type payload struct {
	UserNotification userNotification `json:"userNotification"`
	Target           target           `json:"target"`
}

type userNotification struct {
	Title string `json:"title"`
}

type target struct {
	UserID string `json:"userId"`
	Intent string `json:"intent"`
}

// Client sends push notifications to the delivery endpoint, one HTTP call
// per recipient. No batching: subscriber counts are expected to stay small.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one notification using the given bearer token.
func (c *Client) Send(ctx context.Context, token string, n Notification) error {
	body, err := json.Marshal(payload{
		UserNotification: userNotification{Title: n.Title},
		Target:           target{UserID: n.UserID, Intent: n.Intent},
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push delivery returned %d", resp.StatusCode)
	}
	return nil
}
