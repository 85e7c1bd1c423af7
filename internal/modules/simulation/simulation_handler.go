package simulation

import (
	"errors"
	"net/http"
	"time"

	"colisapp/internal/middleware"
	"colisapp/internal/models"

	"github.com/labstack/echo/v4"
)

// CookieName holds the id of the visitor's pending simulation.
const CookieName = "colis_simulation"

const cookieMaxAge = 7 * 24 * time.Hour

// MessageValidator validates a struct and renders every violation.
type MessageValidator interface {
	Struct(s interface{}) error
	Messages(err error) []string
}

// Handler handles HTTP requests for simulations.
type Handler struct {
	svc          ServiceInterface
	validate     MessageValidator
	cookieSecure bool
}

// NewHandler creates a new simulation handler.
func NewHandler(svc ServiceInterface, validate MessageValidator, cookieSecure bool) *Handler {
	return &Handler{svc: svc, validate: validate, cookieSecure: cookieSecure}
}

// RegisterRoutes mounts the anonymous-friendly routes on public and the
// routes requiring a user on authed.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.POST("/simulations", h.Create)
	public.GET("/simulations/pending", h.GetPending)
	public.DELETE("/simulations/pending", h.DiscardPending)
	public.GET("/simulations/:simulationId", h.Get)
	authed.POST("/simulations/:simulationId/confirm", h.Confirm)
}

func (h *Handler) Create(c echo.Context) error {
	var req models.CreateSimulationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Validation failed",
			Errors:  h.validate.Messages(err),
		})
	}
	if !models.ValidID(req.DepartureAgencyID) || !models.ValidID(req.ArrivalAgencyID) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Unknown agency"})
	}

	userID, _ := middleware.UserID(c)
	created, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownAgency):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Unknown agency"})
		case errors.Is(err, models.ErrNoRoute):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "No route between these agencies"})
		}
		c.Logger().Error("Handler.Create: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create simulation"})
	}

	c.SetCookie(h.cookie(created.ID, int(cookieMaxAge.Seconds())))
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetPending(c echo.Context) error {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No pending simulation"})
	}
	if !models.ValidID(cookie.Value) {
		c.SetCookie(h.cookie("", -1))
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No pending simulation"})
	}

	userID, _ := middleware.UserID(c)
	sim, err := h.svc.Pending(c.Request().Context(), cookie.Value, userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.SetCookie(h.cookie("", -1))
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No pending simulation"})
		case errors.Is(err, models.ErrAlreadyClaimed):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Simulation belongs to another user"})
		}
		c.Logger().Error("Handler.GetPending: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to load pending simulation"})
	}
	return c.JSON(http.StatusOK, sim)
}

func (h *Handler) DiscardPending(c echo.Context) error {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return c.NoContent(http.StatusNoContent)
	}
	if !models.ValidID(cookie.Value) {
		c.SetCookie(h.cookie("", -1))
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.svc.Discard(c.Request().Context(), cookie.Value); err != nil && !errors.Is(err, models.ErrNotFound) {
		c.Logger().Error("Handler.DiscardPending: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to discard simulation"})
	}
	c.SetCookie(h.cookie("", -1))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Get(c echo.Context) error {
	simulationID := c.Param("simulationId")
	if !models.ValidID(simulationID) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Simulation not found"})
	}

	userID, _ := middleware.UserID(c)
	sim, err := h.svc.Get(c.Request().Context(), simulationID, c.QueryParam("token"), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Simulation not found"})
		}
		c.Logger().Error("Handler.Get: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve simulation"})
	}
	return c.JSON(http.StatusOK, sim)
}

func (h *Handler) Confirm(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Unauthorized"})
	}
	simulationID := c.Param("simulationId")
	if !models.ValidID(simulationID) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Simulation not found"})
	}

	var req models.ConfirmSimulationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed", Errors: h.validate.Messages(err)})
	}

	envoiID, err := h.svc.Confirm(c.Request().Context(), simulationID, userID, req)
	if err != nil {
		if errors.Is(err, models.ErrSimulationNotDraft) {
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Simulation cannot be confirmed"})
		}
		c.Logger().Error("Handler.Confirm: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to confirm simulation"})
	}

	c.SetCookie(h.cookie("", -1))
	return c.JSON(http.StatusCreated, map[string]string{"envoi_id": envoiID})
}

func (h *Handler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
