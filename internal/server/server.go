package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/tipline/internal/backup"
	"github.com/dukerupert/tipline/internal/fanout"
	"github.com/dukerupert/tipline/internal/feed"
	"github.com/dukerupert/tipline/internal/handler"
	"github.com/dukerupert/tipline/internal/intent"
	"github.com/dukerupert/tipline/internal/middleware"
	"github.com/dukerupert/tipline/internal/model"
	"github.com/dukerupert/tipline/internal/push"
	"github.com/dukerupert/tipline/internal/seed"
	"github.com/dukerupert/tipline/internal/store"
)

// Config holds the runtime configuration the server assembles its
// components from.
type Config struct {
	// PushEndpoint is the platform URL notifications are POSTed to.
	// Fanout stays disabled while it or Credentials is unset.
	PushEndpoint string
	Credentials  *push.Credentials

	// SeedURL is the external tip list the reset endpoint reloads from.
	SeedURL string

	// AdminToken guards the admin endpoints. Empty disables them.
	AdminToken string

	Backup backup.Config
}

// Server wires stores, intent handlers, fanout, and HTTP routes together.
type Server struct {
	db          *sql.DB
	webhook     *handler.WebhookHandler
	tips        *handler.TipHandler
	admin       *handler.AdminHandler
	hub         *feed.Hub
	rateLimiter *middleware.RateLimiter
	adminToken  string
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := feed.NewHub(logger.With("component", "feed"))
	tipStore := store.NewTipStore(db)
	consentStore := store.NewConsentStore(db)

	handlers := intent.NewHandlers(tipStore, consentStore, logger.With("component", "intent"))
	router := intent.NewRouter(handlers, logger.With("component", "router"))

	var dispatcher *fanout.Dispatcher
	if cfg.Credentials != nil && cfg.PushEndpoint != "" {
		tokens := push.NewTokenSource(cfg.Credentials, "")
		sender := push.NewClient(cfg.PushEndpoint)
		dispatcher = fanout.NewDispatcher(consentStore, tokens, sender, hub, logger.With("component", "fanout"))
	} else {
		logger.Warn("push not configured, fanout disabled")
	}

	// Every durable single-tip insert announces itself and, when push is
	// configured, kicks off a notification fanout off the request path.
	tipStore.OnInsert(func(tip model.Tip) {
		hub.Publish(feed.KindTipCreated, map[string]any{"tip_id": tip.ID, "category": tip.Category})
		if dispatcher == nil {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := dispatcher.HandleTipCreated(ctx, tip); err != nil {
				logger.Error("tip fanout", "tip_id", tip.ID, "error", err)
			}
		}()
	})

	var backups *backup.Manager
	if mgr := backup.NewManager(cfg.Backup, db, logger.With("component", "backup")); mgr.Enabled() {
		backups = mgr
	}

	loader := seed.NewLoader(cfg.SeedURL)

	return &Server{
		db:          db,
		webhook:     handler.NewWebhookHandler(router, logger.With("component", "webhook")),
		tips:        handler.NewTipHandler(tipStore, logger.With("component", "tips")),
		admin:       handler.NewAdminHandler(tipStore, consentStore, loader, backups, hub, logger.With("component", "admin")),
		hub:         hub,
		rateLimiter: middleware.NewRateLimiter(),
		adminToken:  cfg.AdminToken,
		logger:      logger,
	}
}

// Router returns the fully assembled HTTP handler.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	rateLimit := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 60, time.Minute)
	mux.Handle("POST /webhook", rateLimit(http.HandlerFunc(s.webhook.Handle)))

	mux.HandleFunc("GET /api/tips", s.tips.List)

	adminAuth := middleware.RequireToken(s.adminToken)
	mux.Handle("POST /api/tips", adminAuth(http.HandlerFunc(s.tips.Create)))
	mux.Handle("POST /admin/reset", adminAuth(http.HandlerFunc(s.admin.Reset)))
	mux.Handle("POST /admin/backup", adminAuth(http.HandlerFunc(s.admin.Backup)))
	mux.Handle("DELETE /admin/consents/{id}", adminAuth(http.HandlerFunc(s.admin.DeleteConsent)))

	mux.Handle("GET /ws", feed.Handler(s.hub))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}
