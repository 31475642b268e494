package intent

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukerupert/tipline/internal/model"
)

// ErrNoUpdatesUserID means the platform granted permission but supplied no
// user identifier to deliver to. No consent is written in that case.
var ErrNoUpdatesUserID = errors.New("permission granted without an updates user id")

// SetupPush starts the push opt-in: it asks the platform to run its native
// permission prompt for the tell_latest_tip intent. The turn stays open;
// the answer comes back as a finish_push_setup invocation.
func (h *Handlers) SetupPush(ctx context.Context, req *Request) (*Response, error) {
	return &Response{
		Speech: "To let you know when a new tip is posted, I need your permission.",
		Permission: &PermissionPrompt{
			Intent: model.IntentTellLatestTip,
			Reason: "Alert you of new tips",
		},
		UserFlags: req.UserFlags,
	}, nil
}

// FinishPushSetup resolves the permission prompt. A grant writes exactly one
// consent record for the supplied user id; a decline writes nothing. Either
// way the conversation ends.
func (h *Handlers) FinishPushSetup(ctx context.Context, req *Request) (*Response, error) {
	granted := req.Platform.Permission != nil && *req.Platform.Permission
	if !granted {
		return &Response{
			Speech:          "Okay, I won't send you notifications. You can always set this up later by saying, set up push notifications.",
			EndConversation: true,
			UserFlags:       req.UserFlags,
		}, nil
	}

	userID := req.Platform.UpdatesUserID
	if userID == "" {
		return nil, ErrNoUpdatesUserID
	}

	if _, err := h.consents.Insert(userID, model.IntentTellLatestTip); err != nil {
		return nil, fmt.Errorf("record consent: %w", err)
	}

	h.logger.Info("push consent recorded", "intent", model.IntentTellLatestTip)

	return &Response{
		Speech:          "Great, I'll send you a notification whenever there's a new tip.",
		EndConversation: true,
		UserFlags:       req.UserFlags,
	}, nil
}

// SetupUpdate starts the daily-updates registration. Delivery of daily
// updates is a platform-managed primitive; nothing is persisted here.
func (h *Handlers) SetupUpdate(ctx context.Context, req *Request) (*Response, error) {
	category := req.Params["category"]
	if category == "" {
		category = model.CategoryRandom
	}
	return &Response{
		Speech: "Sure, a daily tip it is.",
		RegisterUpdate: &RegisterUpdate{
			Intent:    model.IntentTellTip,
			Category:  category,
			Frequency: "DAILY",
		},
		UserFlags: req.UserFlags,
	}, nil
}

// FinishUpdateSetup reports the platform's synchronous registration result.
func (h *Handlers) FinishUpdateSetup(ctx context.Context, req *Request) (*Response, error) {
	ok := req.Platform.Registered != nil && req.Platform.Registered.Status == "OK"
	if !ok {
		return &Response{
			Speech:          "Okay, maybe another time.",
			EndConversation: true,
			UserFlags:       req.UserFlags,
		}, nil
	}
	return &Response{
		Speech:          "Great, I'll send you a tip every day.",
		EndConversation: true,
		UserFlags:       req.UserFlags,
	}, nil
}
