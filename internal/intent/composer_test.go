package intent

import (
	"testing"

	"github.com/dukerupert/tipline/internal/model"
)

func TestComposeOffersDailyUpsellFirst(t *testing.T) {
	tip := &model.Tip{Tip: "write tests", Category: "tools"}

	resp := Compose(tip, nil)
	if len(resp.Suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(resp.Suggestions))
	}
	if resp.Suggestions[0] != SuggestSendDaily {
		t.Errorf("suggestion = %q, want %q", resp.Suggestions[0], SuggestSendDaily)
	}
	if !resp.UserFlags[FlagDailyAsked] {
		t.Error("expected daily flag set after offering")
	}
	if resp.UserFlags[FlagPushAsked] {
		t.Error("push flag must not be set when push upsell was not offered")
	}
}

func TestComposeOffersPushUpsellSecond(t *testing.T) {
	tip := &model.Tip{Tip: "write tests", Category: "tools"}

	resp := Compose(tip, map[string]bool{FlagDailyAsked: true})
	if len(resp.Suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(resp.Suggestions))
	}
	if resp.Suggestions[0] != SuggestAlertNewTips {
		t.Errorf("suggestion = %q, want %q", resp.Suggestions[0], SuggestAlertNewTips)
	}
	if !resp.UserFlags[FlagPushAsked] {
		t.Error("expected push flag set after offering")
	}
}

func TestComposeNeverOffersTwice(t *testing.T) {
	tip := &model.Tip{Tip: "write tests", Category: "tools"}

	flags := map[string]bool{}
	for i := 0; i < 4; i++ {
		resp := Compose(tip, flags)
		if len(resp.Suggestions) > 1 {
			t.Fatalf("round %d offered %d chips, max is 1", i, len(resp.Suggestions))
		}
		flags = resp.UserFlags
	}

	// Both flags set: no further upsells, ever.
	resp := Compose(tip, flags)
	if len(resp.Suggestions) != 0 {
		t.Errorf("got %d suggestions after both flags set, want 0", len(resp.Suggestions))
	}
}

func TestComposeDoesNotMutateInputFlags(t *testing.T) {
	tip := &model.Tip{Tip: "write tests", Category: "tools"}

	in := map[string]bool{}
	Compose(tip, in)
	if in[FlagDailyAsked] {
		t.Error("input flag bag was mutated")
	}
}

func TestComposeCard(t *testing.T) {
	withURL := &model.Tip{Tip: "write tests", URL: "https://example.com/testing"}
	resp := Compose(withURL, nil)
	if resp.Card == nil {
		t.Fatal("expected a card for a tip with a url")
	}
	if resp.Card.LinkURL != "https://example.com/testing" {
		t.Errorf("card link = %q", resp.Card.LinkURL)
	}

	bare := &model.Tip{Tip: "write tests"}
	if resp := Compose(bare, nil); resp.Card != nil {
		t.Error("expected no card for a tip without a url")
	}
}
