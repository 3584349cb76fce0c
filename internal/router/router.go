package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sara-kitchen/api/internal/ai"
	"github.com/sara-kitchen/api/internal/cart"
	"github.com/sara-kitchen/api/internal/config"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/handler"
	"github.com/sara-kitchen/api/internal/media"
	mw "github.com/sara-kitchen/api/internal/middleware"
	"github.com/sara-kitchen/api/internal/notify"
	"github.com/sara-kitchen/api/internal/service"
	"github.com/sara-kitchen/api/internal/ws"
)

// Deps carries the shared infrastructure the routes are built on.
type Deps struct {
	Config    *config.Config
	Queries   *database.Queries
	Pool      *pgxpool.Pool
	Hub       *ws.Hub
	Refresher *ws.Refresher
	Media     media.Store
	Telegram  *notify.TelegramClient
	Gemini    *ai.GeminiClient
}

// New creates a Chi router with all application routes wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://sara-kitchen.com", "https://www.sara-kitchen.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Cart-Token"},
		ExposedHeaders:   []string{"X-Cart-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	carts := cart.NewService(d.Queries)
	dispatcher := notify.NewDispatcher(d.Telegram, d.Queries)

	orderService := service.NewOrderService(
		d.Pool,
		func(db database.DBTX) service.CheckoutStore { return database.New(db) },
		d.Hub,
		d.Config.OrderCodePrefix,
		d.Config.CurrencyLabel,
		d.Config.KitchenPhone,
	)
	statusService := service.NewStatusService(d.Queries, d.Hub, dispatcher, d.Config.CurrencyLabel)

	authHandler := handler.NewAuthHandler(d.Queries, d.Config.JWTSecret)
	menuHandler := handler.NewMenuHandler(d.Queries, d.Media)
	cartHandler := handler.NewCartHandler(carts)
	orderHandler := handler.NewOrderHandler(orderService, d.Queries, carts)
	dashboardHandler := handler.NewDashboardHandler(d.Queries, statusService, d.Refresher)
	catalogHandler := handler.NewCatalogHandler(d.Queries, d.Media)
	settingsHandler := handler.NewSettingsHandler(d.Queries, d.Telegram)
	reportsHandler := handler.NewReportsHandler(d.Queries)
	addressHandler := handler.NewAddressHandler(d.Queries)

	// Public routes
	authHandler.RegisterRoutes(r)
	menuHandler.RegisterRoutes(r)
	cartHandler.RegisterRoutes(r)
	orderHandler.RegisterRoutes(r)
	if d.Gemini != nil {
		aiHandler := handler.NewAIChatHandler(d.Gemini, d.Queries)
		aiHandler.RegisterRoutes(r)
	}

	// WebSocket route; authenticates internally via query param
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, d.Config.JWTSecret, w, r)
	})

	// Customer routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(d.Config.JWTSecret))
		orderHandler.RegisterCustomerRoutes(r)
		addressHandler.RegisterRoutes(r)
	})

	// Staff routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(d.Config.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleCook, enum.RoleAdmin))
			dashboardHandler.RegisterKitchenRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleDriver, enum.RoleAdmin))
			dashboardHandler.RegisterDriverRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleCook, enum.RoleDriver, enum.RoleAdmin))
			dashboardHandler.RegisterStaffRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))
			dashboardHandler.RegisterAdminRoutes(r)
			catalogHandler.RegisterRoutes(r)
			settingsHandler.RegisterRoutes(r)
			reportsHandler.RegisterRoutes(r)
		})
	})

	return r
}
