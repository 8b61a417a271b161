package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/makerhive/access-system/internal/api/handler"
	"github.com/makerhive/access-system/internal/api/metrics"
	"github.com/makerhive/access-system/internal/api/middleware"
	"github.com/makerhive/access-system/internal/core/ports"
)

// Services bundles the application services the router exposes.
type Services struct {
	Users          ports.UserService
	Devices        ports.DeviceService
	Tools          ports.ToolService
	Qualifications ports.QualificationService
	Auth           ports.AuthService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(metrics.Middleware())

	// --- Handlers ---
	userHandler := handler.NewUserHandler(svc.Users)
	deviceHandler := handler.NewDeviceHandler(svc.Devices)
	toolHandler := handler.NewToolHandler(svc.Tools)
	qualificationHandler := handler.NewQualificationHandler(svc.Qualifications)
	authHandler := handler.NewAuthHandler(svc.Auth)
	healthHandler := handler.NewHealthHandler(db, rdb)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Auth ---
	e.POST("/api/v1/auth/login", authHandler.Login)

	// --- Authenticated API ---
	v1 := e.Group("/api/v1", middleware.Auth(jwtSecret))

	users := v1.Group("/users")
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)
	users.PATCH("/:id/lock", userHandler.UpdateLockState)
	users.PATCH("/:id/admin", userHandler.UpdateIsAdmin)
	users.PUT("/:id/member-qualifications/:qualificationId", userHandler.AddMemberQualification)
	users.DELETE("/:id/member-qualifications/:qualificationId", userHandler.RemoveMemberQualification)
	users.PUT("/:id/instructor-qualifications/:qualificationId", userHandler.AddInstructorQualification)
	users.DELETE("/:id/instructor-qualifications/:qualificationId", userHandler.RemoveInstructorQualification)
	users.POST("/:id/identities/username-password", userHandler.AddUsernamePasswordIdentity)
	users.POST("/:id/identities/card", userHandler.AddCardIdentity)
	users.POST("/:id/identities/phone-nr", userHandler.AddPhoneNrIdentity)
	users.POST("/:id/identities/pin", userHandler.AddPinIdentity)
	users.POST("/:id/identities/webauthn", userHandler.AddWebauthnIdentity)
	users.DELETE("/:id/identities/:kind", userHandler.RemoveIdentity)

	devices := v1.Group("/devices")
	devices.POST("", deviceHandler.Create)
	devices.GET("", deviceHandler.List)
	devices.GET("/:id", deviceHandler.Get)
	devices.PATCH("/:id", deviceHandler.Update)
	devices.DELETE("/:id", deviceHandler.Delete)
	devices.PUT("/:id/attached-tools/:pin", deviceHandler.AttachTool)
	devices.DELETE("/:id/attached-tools/:pin", deviceHandler.DetachTool)
	devices.GET("/:id/configuration", deviceHandler.GetConfiguration)
	devices.POST("/:id/token", authHandler.IssueDeviceToken, middleware.RequireAdmin())

	tools := v1.Group("/tools")
	tools.POST("", toolHandler.Create)
	tools.GET("", toolHandler.List)
	tools.GET("/:id", toolHandler.Get)
	tools.PATCH("/:id", toolHandler.Update)
	tools.DELETE("/:id", toolHandler.Delete)

	qualifications := v1.Group("/qualifications")
	qualifications.POST("", qualificationHandler.Create)
	qualifications.GET("", qualificationHandler.List)
	qualifications.GET("/:id", qualificationHandler.Get)
	qualifications.PATCH("/:id", qualificationHandler.Update)
	qualifications.DELETE("/:id", qualificationHandler.Delete)

	return e
}
