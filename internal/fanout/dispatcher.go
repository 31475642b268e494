package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dukerupert/tipline/internal/feed"
	"github.com/dukerupert/tipline/internal/model"
	"github.com/dukerupert/tipline/internal/push"
	"github.com/dukerupert/tipline/internal/store"
)

// DefaultTitle is the notification title shown on recipients' devices.
const DefaultTitle = "There's a new tip!"

// TokenSource provides the delivery credential. Acquisition is a blocking
// prerequisite: if it fails the whole batch aborts.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Sender delivers one notification to one recipient.
type Sender interface {
	Send(ctx context.Context, token string, n push.Notification) error
}

// Dispatcher fans a newly stored tip out to every consenting recipient:
// one delivery attempt per consent record, duplicates included. Recipient
// sends run concurrently and fail independently; there is no retry and no
// dead-letter queue.
type Dispatcher struct {
	consents *store.ConsentStore
	tokens   TokenSource
	sender   Sender
	hub      *feed.Hub // may be nil
	title    string
	logger   *slog.Logger
}

func NewDispatcher(consents *store.ConsentStore, tokens TokenSource, sender Sender, hub *feed.Hub, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		consents: consents,
		tokens:   tokens,
		sender:   sender,
		hub:      hub,
		title:    DefaultTitle,
		logger:   logger,
	}
}

// HandleTipCreated runs one fanout batch. The returned error is the token
// or query fault that aborted the batch, or the combined per-recipient
// failures; a partial batch still attempts every recipient.
func (d *Dispatcher) HandleTipCreated(ctx context.Context, tip model.Tip) error {
	batchID := uuid.NewString()

	token, err := d.tokens.Token(ctx)
	if err != nil {
		d.logger.Error("fanout aborted: token acquisition failed", "batch", batchID, "tip_id", tip.ID, "error", err)
		return fmt.Errorf("acquire delivery token: %w", err)
	}

	records, err := d.consents.ListByIntent(model.IntentTellLatestTip)
	if err != nil {
		d.logger.Error("fanout aborted: consent query failed", "batch", batchID, "tip_id", tip.ID, "error", err)
		return fmt.Errorf("list consents: %w", err)
	}

	d.publish(feed.KindFanoutStarted, map[string]any{
		"batch":      batchID,
		"tip_id":     tip.ID,
		"recipients": len(records),
	})
	d.logger.Info("fanout started", "batch", batchID, "tip_id", tip.ID, "recipients", len(records))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for _, rec := range records {
		wg.Add(1)
		go func(rec model.ConsentRecord) {
			defer wg.Done()

			n := push.Notification{Title: d.title, UserID: rec.UserID, Intent: rec.Intent}
			if err := d.sender.Send(ctx, token, n); err != nil {
				d.logger.Error("push delivery failed", "batch", batchID, "consent_id", rec.ID, "error", err)
				d.publish(feed.KindDeliveryFailed, map[string]any{
					"batch":      batchID,
					"consent_id": rec.ID,
				})
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("consent %d: %w", rec.ID, err))
				mu.Unlock()
			}
		}(rec)
	}
	wg.Wait()

	d.publish(feed.KindFanoutFinished, map[string]any{
		"batch":  batchID,
		"tip_id": tip.ID,
	})
	return errs
}

func (d *Dispatcher) publish(kind string, data map[string]any) {
	if d.hub != nil {
		d.hub.Publish(kind, data)
	}
}
