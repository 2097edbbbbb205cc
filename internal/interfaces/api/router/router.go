package router

import (
	"fmt"
	"net/http"

	"memento/internal/interfaces/api/handler"
	"memento/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config holds the dependencies for the router. LineHandler is optional.
type Config struct {
	ReminderHandler *handler.ReminderHandler
	LineHandler     *handler.LineHandler
	Logger          logger.Logger
}

// NewRouter creates and configures a new Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Info(fmt.Sprintf("REQUEST: method=%s, uri=%s, status=%d, latency=%s, req_id=%s",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID,
			))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Line-Signature"},
		MaxAge:       300,
	}))

	// Routes
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	h := cfg.ReminderHandler
	users := e.Group("/users/:user_id")
	users.PUT("/timezone", h.SetTimezone)
	users.GET("/timezone", h.GetTimezone)
	users.POST("/reminders", h.CreateUserReminder)
	users.GET("/reminders", h.ListUserReminders)
	users.DELETE("/reminders", h.ClearUserReminders)
	users.DELETE("/reminders/:ref", h.DeleteUserReminder)

	e.POST("/roles/:role_id/channels/:channel_id/reminders", h.CreateRoleReminder)
	e.DELETE("/roles/:role_id/channels/:channel_id/reminders/:ref", h.DeleteRoleReminder)
	e.GET("/roles/:role_id/reminders", h.ListRoleReminders)
	e.GET("/channels/:channel_id/reminders", h.ListChannelReminders)

	// LINE Webhook Endpoint
	if cfg.LineHandler != nil {
		e.POST("/callback", cfg.LineHandler.HandleWebhook)
	}

	cfg.Logger.Info("Router initialized with routes.")
	return e
}
