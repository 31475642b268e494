package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/tipline/internal/model"
)

// Loader fetches the fixed external tip list used by the administrative
// reset. The fetch is retried with fibonacci backoff; the notification
// paths stay retry-free.
type Loader struct {
	url        string
	httpClient *http.Client
}

func NewLoader(url string) *Loader {
	return &Loader{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type entry struct {
	Category string `json:"category"`
	Tip      string `json:"tip"`
	URL      string `json:"url"`
}

// Fetch downloads and validates the seed list. Entries without a category
// or tip text are dropped; an entirely empty list is an error so a bad
// source cannot wipe the store.
func (l *Loader) Fetch(ctx context.Context) ([]model.Tip, error) {
	var tips []model.Tip

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		got, err := l.fetchOnce(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		tips = got
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch seed list: %w", err)
	}
	return tips, nil
}

func (l *Loader) fetchOnce(ctx context.Context) ([]model.Tip, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("seed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned %d", resp.StatusCode)
	}

	var entries []entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode seed list: %w", err)
	}

	tips := make([]model.Tip, 0, len(entries))
	for _, e := range entries {
		if e.Category == "" || e.Tip == "" {
			continue
		}
		tips = append(tips, model.Tip{Category: e.Category, Tip: e.Tip, URL: e.URL})
	}
	if len(tips) == 0 {
		return nil, fmt.Errorf("seed list has no usable entries")
	}
	return tips, nil
}
