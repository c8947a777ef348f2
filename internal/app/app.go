package app

import (
	"folio-backend/internal/alerts"
	"folio-backend/internal/auth"
	"folio-backend/internal/config"
	"folio-backend/internal/database"
	"folio-backend/internal/health"
	"folio-backend/internal/holdings"
	"folio-backend/internal/middleware"
	"folio-backend/internal/notifications"
	"folio-backend/internal/portfolio"
	"folio-backend/internal/quotes"
	"folio-backend/internal/refresher"
	"folio-backend/internal/transactions"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// App bundles the HTTP surface with the shared clients and the background
// workers. Workers are constructed here but started by the caller, which
// also owns stopping them.
type App struct {
	Fiber     *fiber.App
	DB        *gorm.DB
	Rdb       *redis.Client
	Refresher *refresher.Refresher
	Evaluator *alerts.Evaluator
}

// CreateApp builds the Fiber app with all global middleware and route
// registration. A missing database URL or quote key degrades the matching
// features instead of failing startup.
func CreateApp(cfg *config.Config) (*App, error) {
	fiberApp := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	fiberApp.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Session (Redis); the client doubles as the health marker backend.
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, err
	}
	fiberApp.Use(sessionHandler)
	fiberApp.Use(middleware.HealthMarker(rdb))
	fiberApp.Use(middleware.Tracing())
	fiberApp.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn().Msg("no database URL configured; data features disabled")
	}

	app := &App{Fiber: fiberApp, DB: db, Rdb: rdb}

	// Health (no auth)
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		DB:             db,
		QuoteURL:       cfg.QuoteAPIURL,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	fiberApp.Get("/", healthHandlers.Dashboard)
	fiberApp.Get("/health/json", healthHandlers.JSON)
	fiberApp.Get("/health/reset", healthHandlers.Reset)

	if db == nil {
		return app, nil
	}

	// --- Services ---
	holdingsService := &holdings.Service{DB: db}
	notificationService := &notifications.Service{DB: db}
	alertService := &alerts.Service{DB: db, Holdings: holdingsService}
	txService := &transactions.Service{DB: db}
	portfolioService := &portfolio.Service{Holdings: holdingsService}

	// Auth (no auth middleware)
	authHandlers := &auth.Handlers{
		Service:  &auth.Service{DB: db},
		Rdb:      rdb,
		Config:   sessionCfg,
		Notifier: notificationService,
	}
	authGroup := fiberApp.Group("/api/v1/auth")
	authGroup.Post("/signup", authHandlers.Signup)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)
	authGroup.Delete("/delete-account", middleware.RequireAuth(), authHandlers.DeleteAccount)

	// --- Protected modules (auth required) ---
	holdingsHandlers := &holdings.Handlers{Service: holdingsService}
	holdingsGroup := fiberApp.Group("/api/v1/holdings", middleware.RequireAuth())
	holdingsGroup.Post("/create-holding", holdingsHandlers.CreateHolding)
	holdingsGroup.Get("/view-holdings", holdingsHandlers.ViewHoldings)
	holdingsGroup.Get("/view-holding/:holding_id", holdingsHandlers.ViewHolding)
	holdingsGroup.Put("/edit-holding/:holding_id", holdingsHandlers.EditHolding)
	holdingsGroup.Delete("/remove-holding/:holding_id", holdingsHandlers.RemoveHolding)
	holdingsGroup.Post("/buy", holdingsHandlers.Buy)
	holdingsGroup.Post("/sell", holdingsHandlers.Sell)

	alertHandlers := &alerts.Handlers{Service: alertService}
	alertsGroup := fiberApp.Group("/api/v1/alerts", middleware.RequireAuth())
	alertsGroup.Post("/create-alert", alertHandlers.CreateAlert)
	alertsGroup.Get("/view-alerts", alertHandlers.ViewAlerts)
	alertsGroup.Patch("/toggle-alert", alertHandlers.ToggleAlert)
	alertsGroup.Delete("/remove-alert/:alert_id", alertHandlers.RemoveAlert)

	notificationHandlers := &notifications.Handlers{Service: notificationService}
	notifGroup := fiberApp.Group("/api/v1/notifications", middleware.RequireAuth())
	notifGroup.Get("/view-notifications", notificationHandlers.ViewNotifications)
	notifGroup.Patch("/mark-read", notificationHandlers.MarkRead)
	notifGroup.Patch("/mark-all-read", notificationHandlers.MarkAllRead)

	txHandlers := &transactions.Handlers{Service: txService}
	txGroup := fiberApp.Group("/api/v1/transactions", middleware.RequireAuth())
	txGroup.Get("/get-transactions", txHandlers.GetTransactions)

	portfolioHandlers := &portfolio.Handlers{Service: portfolioService}
	portfolioGroup := fiberApp.Group("/api/v1/portfolio", middleware.RequireAuth())
	portfolioGroup.Get("/view-summary", portfolioHandlers.ViewSummary)

	// Quote provider surface + workers (need the API key)
	if cfg.QuoteAPIKey == "" {
		log.Warn().Msg("no quote API key configured; live prices and alerts disabled")
		return app, nil
	}

	quoteClient := quotes.NewClient(cfg.QuoteAPIURL, cfg.QuoteAPIKey)
	quoteHandlers := &quotes.Handlers{Client: quoteClient, Holdings: holdingsService}
	quotesGroup := fiberApp.Group("/api/v1/quotes", middleware.RequireAuth())
	quotesGroup.Get("/view-quote/:holding_id", quoteHandlers.ViewQuote)
	quotesGroup.Get("/view-candles/:holding_id", quoteHandlers.ViewCandles)

	app.Refresher = refresher.New(holdingsService, quoteClient, refresher.Options{
		Interval:   cfg.RefreshInterval,
		BatchSize:  cfg.RefreshBatchSize,
		BatchDelay: cfg.RefreshBatchDelay,
	})
	app.Evaluator = &alerts.Evaluator{
		Alerts:   alertService,
		Holdings: holdingsService,
		Sink:     notificationService,
		Interval: cfg.AlertInterval,
	}

	return app, nil
}
