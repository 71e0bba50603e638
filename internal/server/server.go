package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kondate-app/kondate/internal/backup"
	"github.com/kondate-app/kondate/internal/billing"
	"github.com/kondate-app/kondate/internal/draft"
	"github.com/kondate-app/kondate/internal/expire"
	"github.com/kondate-app/kondate/internal/handler"
	"github.com/kondate-app/kondate/internal/middleware"
	"github.com/kondate-app/kondate/internal/push"
	"github.com/kondate-app/kondate/internal/store"
	ws "github.com/kondate-app/kondate/internal/websocket"
)

// Config collects the deployment knobs the server needs beyond the
// database handle.
type Config struct {
	SecureCookie     bool
	Billing          billing.Config
	BillingReturnURL string
	Backup           backup.Config
	Push             push.Config
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	fridgeH       *handler.FridgeHandler
	recipeH       *handler.RecipeHandler
	dailySetH     *handler.DailySetHandler
	mealPlanH     *handler.MealPlanHandler
	draftH        *handler.DraftHandler
	shoppingH     *handler.ShoppingHandler
	configH       *handler.ConfigHandler
	billingH      *handler.BillingHandler
	pushH         *handler.PushHandler
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	pushService   *push.Service
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	fridgeStore := store.NewFridgeStore(db)
	recipeStore := store.NewRecipeStore(db)
	dailySetStore := store.NewDailySetStore(db)
	mealPlanStore := store.NewMealPlanStore(db)
	shoppingStore := store.NewShoppingStore(db)
	draftStore := store.NewDraftStore(db)
	ruleStore := store.NewExpireRuleStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	// Expiration rules are seeded by migrations and static for the
	// lifetime of the process.
	rules, err := ruleStore.List()
	if err != nil {
		return nil, fmt.Errorf("load expire rules: %w", err)
	}
	policy := expire.NewPolicy(rules)

	draftSvc := draft.NewService(
		db, draftStore, shoppingStore, fridgeStore, mealPlanStore, recipeStore,
		policy, nil, logger.With("component", "draft"),
	)

	billingClient := billing.NewClient(cfg.Billing)

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger.With("component", "backup"))

	pushLogger := logger.With("component", "push")
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, fridgeStore, pushLogger)
		pushH = handler.NewPushHandler(pushStore, pushSvc, pushLogger)
	}

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, cfg.SecureCookie, logger.With("component", "auth")),
		fridgeH:       handler.NewFridgeHandler(fridgeStore, policy, hub, logger.With("component", "fridge")),
		recipeH:       handler.NewRecipeHandler(recipeStore, logger.With("component", "recipe")),
		dailySetH:     handler.NewDailySetHandler(dailySetStore, mealPlanStore, recipeStore, logger.With("component", "daily_set")),
		mealPlanH:     handler.NewMealPlanHandler(mealPlanStore, recipeStore, hub, logger.With("component", "meal_plan")),
		draftH:        handler.NewDraftHandler(draftSvc, draftStore, policy, hub, logger.With("component", "draft_handler")),
		shoppingH:     handler.NewShoppingHandler(shoppingStore, draftSvc, policy, hub, logger.With("component", "shopping")),
		configH:       handler.NewConfigHandler(ruleStore, settingsStore, logger.With("component", "config")),
		billingH:      handler.NewBillingHandler(billingClient, userStore, cfg.BillingReturnURL, logger.With("component", "billing")),
		pushH:         pushH,
		sessionStore:  sessionStore,
		userStore:     userStore,
		pushStore:     pushStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		pushService:   pushSvc,
		pushScheduler: pushSched,
		logger:        logger,
	}, nil
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the expiry reminder scheduler, nil when VAPID
// keys are not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /webhooks/stripe", s.billingH.Webhook)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Auth routes that require authentication
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Fridge API routes
	mux.HandleFunc("GET /api/fridge", s.fridgeH.List)
	mux.HandleFunc("POST /api/fridge", s.fridgeH.Create)
	mux.HandleFunc("PATCH /api/fridge/{id}/state", s.fridgeH.UpdateState)
	mux.HandleFunc("PATCH /api/fridge/{id}/memo", s.fridgeH.UpdateMemo)
	mux.HandleFunc("POST /api/fridge/seen", s.fridgeH.MarkSeen)
	mux.HandleFunc("DELETE /api/fridge/{id}", s.fridgeH.Delete)

	// Recipe API routes
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)

	// Daily set API routes
	mux.HandleFunc("GET /api/sets", s.dailySetH.List)
	mux.HandleFunc("POST /api/sets", s.dailySetH.Create)
	mux.HandleFunc("GET /api/sets/{id}", s.dailySetH.Get)
	mux.HandleFunc("PUT /api/sets/{id}", s.dailySetH.Update)
	mux.HandleFunc("DELETE /api/sets/{id}", s.dailySetH.Delete)
	mux.HandleFunc("POST /api/sets/{id}/apply", s.dailySetH.ApplyToDay)

	// Meal plan API routes
	mux.HandleFunc("GET /api/plan", s.mealPlanH.Range)
	mux.HandleFunc("GET /api/plan/{day}", s.mealPlanH.GetDay)
	mux.HandleFunc("PUT /api/plan/{day}/slot", s.mealPlanH.AssignSlot)
	mux.HandleFunc("POST /api/plan/{day}/clear", s.mealPlanH.ClearSlot)
	mux.HandleFunc("PATCH /api/plan/{day}/memo", s.mealPlanH.SetMemo)

	// Shopping draft API routes
	mux.HandleFunc("POST /api/drafts", s.draftH.Generate)
	mux.HandleFunc("GET /api/drafts", s.draftH.ListSessions)
	mux.HandleFunc("GET /api/drafts/{id}", s.draftH.GetSession)
	mux.HandleFunc("PATCH /api/drafts/items/{id}", s.draftH.UpdateItem)
	mux.HandleFunc("POST /api/drafts/{id}/apply", s.draftH.Apply)
	mux.HandleFunc("POST /api/drafts/{id}/archive", s.draftH.Archive)

	// Shopping list API routes
	mux.HandleFunc("GET /api/shopping", s.shoppingH.List)
	mux.HandleFunc("POST /api/shopping", s.shoppingH.Create)
	mux.HandleFunc("PATCH /api/shopping/{id}/skip", s.shoppingH.SetSkip)
	mux.HandleFunc("PATCH /api/shopping/{id}/purchased", s.shoppingH.SetPurchased)
	mux.HandleFunc("PATCH /api/shopping/{id}/memo", s.shoppingH.SetMemo)
	mux.HandleFunc("PATCH /api/shopping/{id}/category", s.shoppingH.SetCategory)
	mux.HandleFunc("DELETE /api/shopping/{id}", s.shoppingH.Delete)
	mux.HandleFunc("POST /api/shopping/sync", s.shoppingH.Sync)

	// Reference data
	mux.HandleFunc("GET /api/categories", s.configH.ListCategories)
	mux.HandleFunc("GET /api/config/disclaimer", s.configH.GetDisclaimer)

	// Billing API routes
	mux.HandleFunc("POST /api/billing/checkout", s.billingH.Checkout)
	mux.HandleFunc("POST /api/billing/portal", s.billingH.Portal)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDPublicKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
