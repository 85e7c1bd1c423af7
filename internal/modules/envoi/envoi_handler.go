package envoi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"colisapp/internal/middleware"
	"colisapp/internal/models"
	"colisapp/pkg/payment"

	"github.com/labstack/echo/v4"
)

// WebhookParser verifies a provider webhook payload.
type WebhookParser interface {
	Parse(payload []byte, signature string) (*payment.Event, error)
}

// Handler handles HTTP requests for envois and payments.
type Handler struct {
	svc     ServiceInterface
	webhook WebhookParser
}

// NewHandler creates a new envoi handler.
func NewHandler(svc ServiceInterface, webhook WebhookParser) *Handler {
	return &Handler{svc: svc, webhook: webhook}
}

// RegisterRoutes mounts the envoi routes on an authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/envois", h.ListMyEnvois)
	g.GET("/envois/:envoiId", h.GetEnvoi)
	g.PUT("/envois/:envoiId", h.UpdateEnvoi)
	g.POST("/envois/:envoiId/payment", h.CreatePayment)
}

// RegisterWebhookRoutes mounts the provider callback, which carries no user token.
func (h *Handler) RegisterWebhookRoutes(g *echo.Group) {
	g.POST("/payments/webhook", h.PaymentWebhook)
}

func (h *Handler) ListMyEnvois(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	page := 1
	limit := 10
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	envois, err := h.svc.List(c.Request().Context(), userID, page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListMyEnvois: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve envois"})
	}
	return c.JSON(http.StatusOK, envois)
}

func (h *Handler) GetEnvoi(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	e, err := h.svc.Get(c.Request().Context(), c.Param("envoiId"), userID, middleware.UserRole(c))
	if err != nil {
		return h.fail(c, "Handler.GetEnvoi", "Failed to retrieve envoi", err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) UpdateEnvoi(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	var req models.UpdateEnvoiRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	e, err := h.svc.Update(c.Request().Context(), c.Param("envoiId"), userID, middleware.UserRole(c), req)
	if err != nil {
		return h.fail(c, "Handler.UpdateEnvoi", "Failed to update envoi", err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) CreatePayment(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	resp, err := h.svc.CreatePayment(c.Request().Context(), c.Param("envoiId"), userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Envoi is not awaiting payment"})
		case errors.Is(err, models.ErrPaymentFailed):
			c.Logger().Error("Handler.CreatePayment: ", err)
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Message: "Payment provider error"})
		}
		return h.fail(c, "Handler.CreatePayment", "Failed to create payment", err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) PaymentWebhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<16))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid payload"})
	}

	ev, err := h.webhook.Parse(payload, c.Request().Header.Get(payment.SignatureHeader))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid signature"})
	}
	if ev == nil {
		return c.NoContent(http.StatusOK)
	}

	if err := h.svc.HandlePaymentEvent(c.Request().Context(), *ev); err != nil {
		c.Logger().Error("Handler.PaymentWebhook: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to apply payment"})
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) fail(c echo.Context, op, message string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Envoi not found"})
	case errors.Is(err, models.ErrForbidden):
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
	}
	c.Logger().Error(op+": ", err)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: message})
}
