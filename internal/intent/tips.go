package intent

import (
	"context"
	"math/rand/v2"

	"github.com/dukerupert/tipline/internal/model"
)

// TellTip answers with a uniformly random tip from the requested category,
// or from the whole set when the category is "random".
func (h *Handlers) TellTip(ctx context.Context, req *Request) (*Response, error) {
	category := req.Params["category"]
	if category == "" {
		category = model.CategoryRandom
	}

	var (
		tips []model.Tip
		err  error
	)
	if category == model.CategoryRandom {
		tips, err = h.tips.ListAll()
	} else {
		tips, err = h.tips.ListByCategory(category)
	}
	if err != nil {
		return nil, err
	}

	if len(tips) == 0 {
		return noTips(req), nil
	}

	tip := tips[rand.IntN(len(tips))]
	return Compose(&tip, req.UserFlags), nil
}

// TellLatestTip answers with the newest tip. This is the intent that push
// notifications unlock, so its reply is also what a user lands on when they
// tap one.
func (h *Handlers) TellLatestTip(ctx context.Context, req *Request) (*Response, error) {
	tip, err := h.tips.Latest()
	if err != nil {
		return nil, err
	}
	if tip == nil {
		return noTips(req), nil
	}
	return Compose(tip, req.UserFlags), nil
}

func noTips(req *Request) *Response {
	return &Response{
		Speech:    "I don't have any tips for that right now. Try asking for a random tip.",
		UserFlags: req.UserFlags,
	}
}
