package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/tipline/internal/database"
	"github.com/dukerupert/tipline/internal/intent"
	"github.com/dukerupert/tipline/internal/model"
	"github.com/dukerupert/tipline/internal/store"
)

func setupWebhook(t *testing.T) (*WebhookHandler, *store.ConsentStore) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.DiscardHandler)
	tips := store.NewTipStore(db)
	consents := store.NewConsentStore(db)
	router := intent.NewRouter(intent.NewHandlers(tips, consents, logger), logger)
	return NewWebhookHandler(router, logger), consents
}

func postWebhook(t *testing.T, h *WebhookHandler, body string) (*httptest.ResponseRecorder, intent.Response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	var resp intent.Response
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec, resp
}

func TestWebhookSetupPush(t *testing.T) {
	h, _ := setupWebhook(t)

	rec, resp := postWebhook(t, h, `{"intent":"setup_push"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Permission == nil {
		t.Fatal("expected a permission prompt")
	}
	if resp.Permission.Intent != model.IntentTellLatestTip {
		t.Errorf("prompt intent = %q", resp.Permission.Intent)
	}
	if resp.EndConversation {
		t.Error("conversation should stay open while the prompt runs")
	}
}

func TestWebhookFinishPushSetupDeclined(t *testing.T) {
	h, consents := setupWebhook(t)

	rec, resp := postWebhook(t, h, `{"intent":"finish_push_setup","platform":{"permission":false}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !resp.EndConversation {
		t.Error("expected conversation to end")
	}

	records, err := consents.ListByIntent(model.IntentTellLatestTip)
	if err != nil {
		t.Fatalf("list consents: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("declined permission wrote %d consent records", len(records))
	}
}

func TestWebhookFinishPushSetupGranted(t *testing.T) {
	h, consents := setupWebhook(t)

	rec, _ := postWebhook(t, h, `{"intent":"finish_push_setup","platform":{"permission":true,"updatesUserId":"user-1"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	records, err := consents.ListByIntent(model.IntentTellLatestTip)
	if err != nil {
		t.Fatalf("list consents: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 consent record, got %d", len(records))
	}
	if records[0].UserID != "user-1" {
		t.Errorf("user id = %q", records[0].UserID)
	}
}

func TestWebhookUnknownIntentApologizes(t *testing.T) {
	h, _ := setupWebhook(t)

	rec, resp := postWebhook(t, h, `{"intent":"order_pizza"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown intent must still answer 200, got %d", rec.Code)
	}
	if resp.Speech == "" {
		t.Error("expected an apology utterance")
	}
	if !resp.EndConversation {
		t.Error("expected conversation to end")
	}
}

func TestWebhookRejectsBadRequests(t *testing.T) {
	h, _ := setupWebhook(t)

	rec, _ := postWebhook(t, h, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d", rec.Code)
	}

	rec, _ = postWebhook(t, h, `{"params":{}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing intent status = %d", rec.Code)
	}
}
