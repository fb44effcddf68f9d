package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/api/handler"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/api/middleware"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

// Dependencies are the services the router exposes.
type Dependencies struct {
	Ledger      ports.AuthorizedLedger
	Auth        ports.AuthService
	Credentials ports.CredentialService
	Sessions    ports.SessionStore
	Health      map[string]handler.Pinger

	JWTSecret string
	TokenTTL  time.Duration
	Logger    zerolog.Logger

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "banque",
		Registerer: registerer,
	}))

	// --- Probes and metrics (no auth required) ---
	health := handler.NewHealthHandler(deps.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Credentials, deps.Sessions, deps.JWTSecret, deps.TokenTTL)
	ledgerHandler := handler.NewLedgerHandler(deps.Ledger)

	// --- Public auth routes ---
	e.POST("/v1/auth/login", authHandler.Login)
	e.POST("/v1/auth/password/reset", authHandler.ResetPassword)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret, deps.Sessions, deps.Auth))
	managerOnly := middleware.RBAC(domain.RoleManager)

	v1.POST("/auth/logout", authHandler.Logout)
	v1.GET("/auth/me", authHandler.Me)
	v1.PUT("/auth/password", authHandler.ChangePassword)

	v1.POST("/clients", ledgerHandler.CreateClient, managerOnly)
	v1.GET("/clients", ledgerHandler.ListClients, managerOnly)
	v1.POST("/managers", ledgerHandler.CreateManager, managerOnly)
	v1.GET("/managers", ledgerHandler.ListManagers, managerOnly)

	v1.GET("/users/:id", ledgerHandler.GetUser)
	v1.DELETE("/users/:id", ledgerHandler.DeleteUser, managerOnly)
	v1.PUT("/users/:id/client-number", ledgerHandler.ChangeClientNumber, managerOnly)
	v1.GET("/users/:id/accounts", ledgerHandler.ListAccountsOf)

	v1.POST("/accounts", ledgerHandler.CreateAccount, managerOnly)
	v1.GET("/accounts/:number", ledgerHandler.GetAccount)
	v1.DELETE("/accounts/:number", ledgerHandler.DeleteAccount, managerOnly)
	v1.PUT("/accounts/:number/overdraft", ledgerHandler.ChangeOverdraftLimit, managerOnly)
	v1.POST("/accounts/:number/credit", ledgerHandler.Credit)
	v1.POST("/accounts/:number/debit", ledgerHandler.Debit)

	v1.POST("/transfers", ledgerHandler.Transfer)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
