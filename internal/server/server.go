// Package server assembles the echo application: middlewares, route groups
// and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"colisapp/internal/config"
	"colisapp/internal/middleware"
	"colisapp/internal/models"
	"colisapp/internal/modules/auth"
	"colisapp/internal/modules/envoi"
	"colisapp/internal/modules/location"
	"colisapp/internal/modules/simulation"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

// Handlers groups the module handlers mounted under /api.
type Handlers struct {
	Auth       *auth.Handler
	Location   *location.Handler
	Simulation *simulation.Handler
	Envoi      *envoi.Handler
}

// NewRouter builds the echo instance. Simulation routes accept anonymous
// callers, envoi routes and confirmation need a token, admin routes need the
// ADMIN role.
func NewRouter(cfg *config.Config, logger *slog.Logger, validator echo.Validator, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	public := api.Group("", middleware.JWT(cfg.JWTSecret, true))
	authed := api.Group("", middleware.JWT(cfg.JWTSecret, false))
	admin := api.Group("/admin", middleware.JWT(cfg.JWTSecret, false), middleware.RequireRole(models.RoleAdmin))

	h.Auth.RegisterRoutes(api)
	h.Location.RegisterRoutes(public)
	h.Location.RegisterAdminRoutes(admin)
	h.Simulation.RegisterRoutes(public, authed)
	h.Envoi.RegisterRoutes(authed)
	// Stripe signs the raw body; no user token on this route.
	h.Envoi.RegisterWebhookRoutes(api)

	return e
}

// Server runs the echo instance until its context is cancelled.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

func New(e *echo.Echo, port string, logger *slog.Logger) *Server {
	return &Server{echo: e, addr: ":" + port, logger: logger}
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("address", s.addr))
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server failed: %w", err)
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return <-errc
}
