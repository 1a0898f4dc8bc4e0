package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/backup"
	"github.com/dukerupert/ladle/internal/handler"
	"github.com/dukerupert/ladle/internal/middleware"
	"github.com/dukerupert/ladle/internal/provision"
	"github.com/dukerupert/ladle/internal/push"
	"github.com/dukerupert/ladle/internal/store"
	"github.com/dukerupert/ladle/internal/telemetry"
	ws "github.com/dukerupert/ladle/internal/websocket"
)

// Config carries the knobs main resolves from the environment.
type Config struct {
	Backup       backup.Config
	Push         push.Config
	ReminderHour int
}

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH     *handler.AuthHandler
	accountH  *handler.AccountHandler
	profileH  *handler.ProfileHandler
	recipeH   *handler.RecipeHandler
	mealPlanH *handler.MealPlanHandler
	shoppingH *handler.ShoppingHandler
	pushH     *handler.PushHandler
	backupH   *handler.BackupHandler

	sessionStore *store.SessionStore
	accountStore *store.AccountStore
	rateLimiter  *middleware.RateLimiter

	worker        *provision.Worker
	pushScheduler *push.Scheduler
	backupManager *backup.Manager

	logger *slog.Logger
}

func New(db *sql.DB, cfg Config, tel *telemetry.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	accountStore := store.NewAccountStore(db)
	sessionStore := store.NewSessionStore(db)
	taskStore := store.NewTaskStore(db)
	profileStore := store.NewProfileStore(db)
	recipeStore := store.NewRecipeStore(db)
	mealPlanStore := store.NewMealPlanStore(db)
	shoppingStore := store.NewShoppingStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	worker := provision.NewWorker(provision.NewProvisioner(db), taskStore, logger)

	// A nil *telemetry.Client must stay nil through the interface.
	var capturer auth.Capturer
	if tel != nil {
		capturer = tel
	}
	sanitizer := auth.NewSanitizer(capturer, logger.With("component", "auth"))

	pushSvc := push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber)
	pushSched := push.NewScheduler(pushSvc, pushStore, mealPlanStore, recipeStore, cfg.ReminderHour, logger)

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger)

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(accountStore, sessionStore, taskStore, worker, sanitizer, logger.With("component", "auth")),
		accountH:      handler.NewAccountHandler(accountStore, profileStore, logger.With("component", "account")),
		profileH:      handler.NewProfileHandler(profileStore, accountStore, hub, logger.With("component", "profile")),
		recipeH:       handler.NewRecipeHandler(recipeStore, hub, logger.With("component", "recipe")),
		mealPlanH:     handler.NewMealPlanHandler(mealPlanStore, recipeStore, hub, logger.With("component", "mealplan")),
		shoppingH:     handler.NewShoppingHandler(shoppingStore, mealPlanStore, recipeStore, hub, logger.With("component", "shopping")),
		pushH:         handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup")),
		sessionStore:  sessionStore,
		accountStore:  accountStore,
		rateLimiter:   middleware.NewRateLimiter(),
		worker:        worker,
		pushScheduler: pushSched,
		backupManager: backupMgr,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Worker returns the provisioning worker.
func (s *Server) Worker() *provision.Worker {
	return s.worker
}

// PushScheduler returns the dinner reminder scheduler.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Authenticated routes: account resolved, profile not yet required.
	authedMux := http.NewServeMux()
	authedMux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	authedMux.HandleFunc("GET /api/me", s.accountH.Me)
	authedMux.HandleFunc("GET /api/profiles", s.profileH.List)
	authedMux.HandleFunc("POST /api/profiles", s.profileH.Create)
	authedMux.HandleFunc("PUT /api/profiles/{id}", s.profileH.Update)
	authedMux.HandleFunc("DELETE /api/profiles/{id}", s.profileH.Delete)
	authedMux.HandleFunc("POST /api/profiles/{id}/select", s.profileH.Select)
	authedMux.HandleFunc("DELETE /api/profiles/selection", s.profileH.ClearSelection)
	authedMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// Domain routes: a selected profile is required on top of auth.
	profileMux := http.NewServeMux()
	s.registerProfileRoutes(profileMux)
	authedMux.Handle("/api/", middleware.RequireProfile(profileMux))

	requireAuth := middleware.RequireAuth(s.sessionStore, s.accountStore)
	outerMux.Handle("/", requireAuth(authedMux))

	return middleware.RequestLogger(s.logger)(outerMux)
}

func (s *Server) registerProfileRoutes(mux *http.ServeMux) {
	// Recipes
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes/favorites", s.recipeH.ListFavorites)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Trash)
	mux.HandleFunc("POST /api/recipes/{id}/restore", s.recipeH.Restore)
	mux.HandleFunc("DELETE /api/recipes/{id}/purge", s.recipeH.Purge)
	mux.HandleFunc("PUT /api/recipes/{id}/favorite", s.recipeH.Favorite)
	mux.HandleFunc("DELETE /api/recipes/{id}/favorite", s.recipeH.Unfavorite)
	mux.HandleFunc("PUT /api/recipes/{id}/rating", s.recipeH.Rate)
	mux.HandleFunc("DELETE /api/recipes/{id}/rating", s.recipeH.ClearRating)
	mux.HandleFunc("GET /api/recipes/{id}/ratings", s.recipeH.Ratings)

	// Meal plans
	mux.HandleFunc("GET /api/meal-plans", s.mealPlanH.GetWeek)
	mux.HandleFunc("POST /api/meal-plans", s.mealPlanH.Assign)
	mux.HandleFunc("GET /api/meal-plans/recurring", s.mealPlanH.ListRecurring)
	mux.HandleFunc("PUT /api/meal-plans/recurring", s.mealPlanH.SetRecurring)
	mux.HandleFunc("POST /api/meal-plans/recurring/apply", s.mealPlanH.ApplyRecurring)
	mux.HandleFunc("DELETE /api/meal-plans/recurring/{id}", s.mealPlanH.DeleteRecurring)
	mux.HandleFunc("DELETE /api/meal-plans/{id}", s.mealPlanH.Delete)

	// Shopping lists
	mux.HandleFunc("POST /api/shopping-lists/generate", s.shoppingH.Generate)
	mux.HandleFunc("GET /api/shopping-lists", s.shoppingH.Get)
	mux.HandleFunc("PUT /api/shopping-lists/{id}/items", s.shoppingH.UpdateItems)

	// Push notifications
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)

	// Backups
	mux.HandleFunc("POST /api/backups", s.backupH.Trigger)
	mux.HandleFunc("GET /api/backups", s.backupH.List)
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
