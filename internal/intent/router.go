package intent

import (
	"context"
	"log/slog"

	"github.com/dukerupert/tipline/internal/store"
)

// Intent names recognized by the router.
const (
	NameTellTip           = "tell_tip"
	NameTellLatestTip     = "tell_latest_tip"
	NameSetupPush         = "setup_push"
	NameFinishPushSetup   = "finish_push_setup"
	NameSetupUpdate       = "setup_update"
	NameFinishUpdateSetup = "finish_update_setup"
)

type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// Router maps intent names to handlers. The table is built once at
// construction; there is one entry per named intent.
type Router struct {
	handlers map[string]HandlerFunc
	logger   *slog.Logger
}

func NewRouter(h *Handlers, logger *slog.Logger) *Router {
	return &Router{
		handlers: map[string]HandlerFunc{
			NameTellTip:           h.TellTip,
			NameTellLatestTip:     h.TellLatestTip,
			NameSetupPush:         h.SetupPush,
			NameFinishPushSetup:   h.FinishPushSetup,
			NameSetupUpdate:       h.SetupUpdate,
			NameFinishUpdateSetup: h.FinishUpdateSetup,
		},
		logger: logger,
	}
}

// Dispatch invokes the handler for the request's intent. Unknown intents
// and handler errors both degrade to a generic apology so the user never
// gets silence.
func (r *Router) Dispatch(ctx context.Context, req *Request) *Response {
	fn, ok := r.handlers[req.Intent]
	if !ok {
		r.logger.Warn("unknown intent", "intent", req.Intent)
		return apology(req)
	}

	resp, err := fn(ctx, req)
	if err != nil {
		r.logger.Error("intent handler failed", "intent", req.Intent, "error", err)
		return apology(req)
	}
	return resp
}

func apology(req *Request) *Response {
	return &Response{
		Speech:          "Sorry, something went wrong on my end. Please try again later.",
		EndConversation: true,
		UserFlags:       req.UserFlags,
	}
}

// Handlers holds the collaborators the intent handlers need.
type Handlers struct {
	tips     *store.TipStore
	consents *store.ConsentStore
	logger   *slog.Logger
}

func NewHandlers(tips *store.TipStore, consents *store.ConsentStore, logger *slog.Logger) *Handlers {
	return &Handlers{tips: tips, consents: consents, logger: logger}
}
