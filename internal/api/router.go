package api

import (
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/learnquest/gamification-system/internal/api/handler"
	"github.com/learnquest/gamification-system/internal/api/middleware"
	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	DB         *sql.DB
	Redis      *redis.Client
	JWTSecret  string
	Auth       ports.AuthService
	Catalog    ports.CatalogService
	Ledger     ports.LedgerService
	Ranking    ports.RankingService
	Dispatcher handler.CompletionDispatcher
	Seed       handler.SeedFunc
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("ledger"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	shopHandler := handler.NewShopHandler(deps.Catalog, deps.Ledger)
	courseHandler := handler.NewCourseHandler(deps.Catalog, deps.Ledger)
	completionHandler := handler.NewCompletionHandler(deps.Ledger, deps.Dispatcher)
	rankingHandler := handler.NewRankingHandler(deps.Ranking, deps.Ledger)
	adminHandler := handler.NewAdminHandler(deps.Seed)

	authed := middleware.Auth(deps.JWTSecret)
	staffOnly := middleware.RBAC(domain.RoleTeacher, domain.RoleAdmin)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Shop & inventory ---
	v1 := e.Group("/v1", authed)
	v1.GET("/shop", shopHandler.List)
	v1.POST("/shop/buy", shopHandler.Buy)
	v1.GET("/inventory", shopHandler.Inventory)

	// --- Courses & enrollment ---
	v1.GET("/courses", courseHandler.List)
	v1.GET("/courses/:id", courseHandler.Get)
	v1.POST("/courses", courseHandler.Create, staffOnly)
	v1.PUT("/courses/:id", courseHandler.Update, staffOnly)
	v1.DELETE("/courses/:id", courseHandler.Delete, staffOnly)
	v1.POST("/courses/:id/enroll", courseHandler.Enroll)

	// --- Completion settlement ---
	v1.POST("/completions", completionHandler.Submit)
	v1.POST("/completions/batch", completionHandler.SubmitBatch)

	// --- Ranking & analytics ---
	v1.GET("/leaderboard", rankingHandler.Leaderboard)
	v1.GET("/users/:id/rank", rankingHandler.Rank)
	v1.GET("/users/:id/summary", rankingHandler.Summary)

	// --- Admin ---
	v1.POST("/admin/items", shopHandler.CreateItem, adminOnly)
	v1.DELETE("/admin/accounts/:id", authHandler.DeleteAccount, adminOnly)
	v1.POST("/admin/seed", adminHandler.Seed, adminOnly)

	// --- Health probes & metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
