package router

import (
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"goaltracker/internal/config"
	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/handler"
	"goaltracker/internal/middleware"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	requireAuth echo.MiddlewareFunc,
	authHandler *handler.AuthHandler,
	goalHandler *handler.GoalHandler,
	taskHandler *handler.TaskHandler,
	healthHandler *handler.HealthHandler,
) {
	e.HTTPErrorHandler = ErrorHandler(logger)
	e.Validator = NewValidator()
	e.IPExtractor = ipExtractor(cfg.TrustedProxies, logger)

	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("1M"))

	e.GET("/healthz", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public auth routes
	public := api.Group("/auth", authRateLimit(cfg.AuthRateLimit)...)
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)
	public.POST("/reset-password", authHandler.RequestReset)
	public.POST("/reset-password/confirm", authHandler.ConfirmReset)

	// Secured routes
	secured := api.Group("", requireAuth)

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/user", authHandler.Me)
	secured.PUT("/auth/user", authHandler.UpdateProfile)

	// Goal routes
	secured.GET("/goals", goalHandler.List)
	secured.POST("/goals", goalHandler.Create)
	secured.POST("/goals/generate-plan", goalHandler.GeneratePlan)
	secured.GET("/goals/:id", goalHandler.Get)
	secured.PUT("/goals/:id", goalHandler.Update)
	secured.DELETE("/goals/:id", goalHandler.Delete)
	secured.PATCH("/goals/:id/complete", goalHandler.Complete)

	// Task routes
	secured.GET("/goals/:id/tasks", taskHandler.ListForGoal)
	secured.POST("/goals/:id/tasks", taskHandler.Create)
	secured.POST("/goals/:id/generate-tasks", taskHandler.Generate)
	secured.GET("/tasks/today", taskHandler.Today)
	secured.PUT("/tasks/:id", taskHandler.Update)
	secured.PATCH("/tasks/:id", taskHandler.Toggle)
	secured.DELETE("/tasks/:id", taskHandler.Delete)
}

// ipExtractor honours X-Forwarded-For only when the peer is one of the trusted
// proxy ranges. Without any, the peer address identifies the client.
func ipExtractor(proxies []string, logger *zap.Logger) echo.IPExtractor {
	var trust []echo.TrustOption
	for _, cidr := range proxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warn("ignoring invalid trusted proxy range", zap.String("range", cidr), zap.Error(err))
			continue
		}
		trust = append(trust, echo.TrustIPRange(ipNet))
	}
	if len(trust) == 0 {
		return echo.ExtractIPDirect()
	}
	trust = append(trust, echo.TrustLoopback(false), echo.TrustLinkLocal(false), echo.TrustPrivateNet(false))
	return echo.ExtractIPFromXFFHeader(trust...)
}

// authRateLimit limits unauthenticated auth calls per client IP. A limit of
// zero or less disables it.
func authRateLimit(perSecond float64) []echo.MiddlewareFunc {
	if perSecond <= 0 {
		return nil
	}

	burst := int(perSecond * 5)
	if burst < 5 {
		burst = 5
	}

	tooMany := func(c echo.Context, identifier string, err error) error {
		return apperrors.NewHTTPError(http.StatusTooManyRequests, "too many requests", "RATE_LIMITED")
	}
	extractFailed := func(c echo.Context, err error) error {
		return apperrors.NewHTTPError(http.StatusForbidden, "client could not be identified", "FORBIDDEN")
	}

	return []echo.MiddlewareFunc{
		echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
			Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(perSecond),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
			ErrorHandler: extractFailed,
			DenyHandler:  tooMany,
		}),
	}
}
