package intent

import "github.com/dukerupert/tipline/internal/model"

// Per-user flags recording that an upsell has been offered once. They live
// in the platform's cross-conversation user storage, not in our database.
// There is no expiry: once asked, never asked again.
const (
	FlagDailyAsked = "DAILY_NOTIFICATION_ASKED"
	FlagPushAsked  = "PUSH_NOTIFICATION_ASKED"
)

// Upsell suggestion chip labels.
const (
	SuggestSendDaily    = "Send daily"
	SuggestAlertNewTips = "Alert me of new tips"
)

// Compose builds the reply for one tip: spoken text, a link card when the
// tip has a URL, and at most one upsell chip. The daily upsell is offered
// until it has been shown once, then the push upsell; the chosen flag is
// set in the returned flag bag so no chip is ever offered twice.
func Compose(tip *model.Tip, flags map[string]bool) *Response {
	out := make(map[string]bool, len(flags)+1)
	for k, v := range flags {
		out[k] = v
	}

	resp := &Response{
		Speech:    "Here's your tip: " + tip.Tip,
		UserFlags: out,
	}

	if tip.URL != "" {
		resp.Card = &Card{
			Text:      tip.Tip,
			LinkTitle: "Learn more",
			LinkURL:   tip.URL,
		}
	}

	switch {
	case !out[FlagDailyAsked]:
		resp.Suggestions = append(resp.Suggestions, SuggestSendDaily)
		out[FlagDailyAsked] = true
	case !out[FlagPushAsked]:
		resp.Suggestions = append(resp.Suggestions, SuggestAlertNewTips)
		out[FlagPushAsked] = true
	}

	return resp
}
