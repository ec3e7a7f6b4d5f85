package api

import (
	"net"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/bluecarbon/registry/internal/api/handler"
	"github.com/bluecarbon/registry/internal/api/middleware"
	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

// Dependencies is everything the router needs. Services are built by the
// caller so tests can run the full HTTP stack on in-memory storage.
type Dependencies struct {
	Logger      zerolog.Logger
	Development bool
	CORSOrigins []string
	// TrustedProxies are the peers whose X-Forwarded-For is believed. With
	// none, the client IP used for rate limiting is the TCP peer address.
	TrustedProxies []*net.IPNet

	Tokens    ports.TokenVerifier
	Auth      ports.AuthService
	Community ports.CommunityService
	Admin     ports.UserAdminService

	// APILimiter applies to every /api route, AuthLimiter additionally to
	// register and login. Nil disables the corresponding limit.
	APILimiter  echomiddleware.RateLimiterStore
	AuthLimiter echomiddleware.RateLimiterStore

	ReadinessChecks map[string]handler.Check

	// MetricsRegisterer and MetricsGatherer default to the global Prometheus
	// registry.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, deps.Development)
	e.IPExtractor = ipExtractor(deps.TrustedProxies)

	registerer, gatherer := deps.MetricsRegisterer, deps.MetricsGatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("10M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "registry",
		Registerer: registerer,
	}))
	e.Use(middleware.ClientInfo())

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	if deps.APILimiter != nil {
		api.Use(middleware.RateLimit("api", deps.APILimiter))
	}

	// --- Health probes (no auth required) ---
	readiness := handler.NewReadinessHandler(deps.ReadinessChecks)
	api.GET("/health", handler.Liveness)          // liveness  – is the process alive?
	api.GET("/health/ready", readiness.Readiness) // readiness – are dependencies up?

	authMW := middleware.Auth(deps.Tokens)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := api.Group("/auth")
	var credentialMW []echo.MiddlewareFunc
	if deps.AuthLimiter != nil {
		credentialMW = append(credentialMW, middleware.RateLimit("auth", deps.AuthLimiter))
	}
	auth.POST("/register", authHandler.Register, credentialMW...)
	auth.POST("/login", authHandler.Login, credentialMW...)
	auth.GET("/me", authHandler.Me, authMW)
	auth.PUT("/profile", authHandler.UpdateProfile, authMW)
	auth.POST("/logout", authHandler.Logout, authMW)

	// --- Dashboard ---
	api.GET("/dashboard", handler.Dashboard, authMW)

	// --- Community routes ---
	// Middleware is attached per route: group-level middleware would also
	// wrap the group's 404 fallback and turn unknown paths into 401s.
	communityHandler := handler.NewCommunityHandler(deps.Community)
	communityMW := []echo.MiddlewareFunc{authMW, middleware.RBAC(domain.RoleCommunity)}
	community := api.Group("/community")
	community.GET("/my-profile", communityHandler.MyProfile, communityMW...)
	community.POST("/profile", communityHandler.Create, communityMW...)
	community.PUT("/profile", communityHandler.Update, communityMW...)

	// --- Admin routes ---
	adminHandler := handler.NewAdminHandler(deps.Admin)
	adminMW := []echo.MiddlewareFunc{authMW, middleware.RBAC(domain.RoleAdmin)}
	admin := api.Group("/admin")
	admin.GET("/users", adminHandler.ListUsers, adminMW...)
	admin.PATCH("/users/:id/role", adminHandler.SetRole, adminMW...)
	admin.PATCH("/users/:id/status", adminHandler.SetStatus, adminMW...)

	return e
}

// ipExtractor reads X-Forwarded-For only from trusted proxies. Loopback,
// link-local and private ranges are not trusted implicitly.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// requestLogger feeds echo's request log into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
