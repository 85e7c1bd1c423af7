package location

import (
	"errors"
	"net/http"

	"colisapp/internal/models"

	"github.com/labstack/echo/v4"
)

// Handler serves the cascading option lists and the admin agency endpoints.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new location handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public option routes on g.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/countries", h.ListCountries)
	g.GET("/cities", h.ListCities)
	g.GET("/agencies", h.ListAgencies)
	g.GET("/destination-countries", h.ListDestinationCountries)
}

// RegisterAdminRoutes mounts agency management on an admin-only group.
func (h *Handler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/agencies", h.CreateAgency)
	g.DELETE("/agencies/:agencyId", h.DeleteAgency)
}

func (h *Handler) ListCountries(c echo.Context) error {
	opts, err := h.svc.ListCountries(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.ListCountries: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list countries"})
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) ListCities(c echo.Context) error {
	countryID := c.QueryParam("countryId")
	if countryID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "countryId is required"})
	}
	if !models.ValidID(countryID) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "countryId is not a valid id"})
	}
	opts, err := h.svc.ListCitiesForCountry(c.Request().Context(), countryID)
	if err != nil {
		c.Logger().Error("Handler.ListCities: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list cities"})
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) ListAgencies(c echo.Context) error {
	cityID := c.QueryParam("cityId")
	if cityID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "cityId is required"})
	}
	if !models.ValidID(cityID) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "cityId is not a valid id"})
	}
	opts, err := h.svc.ListAgenciesForCity(c.Request().Context(), cityID)
	if err != nil {
		c.Logger().Error("Handler.ListAgencies: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list agencies"})
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) ListDestinationCountries(c echo.Context) error {
	departureCountryID := c.QueryParam("departureCountryId")
	if departureCountryID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "departureCountryId is required"})
	}
	if !models.ValidID(departureCountryID) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "departureCountryId is not a valid id"})
	}
	opts, err := h.svc.ListDestinationCountries(c.Request().Context(), departureCountryID)
	if err != nil {
		c.Logger().Error("Handler.ListDestinationCountries: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list destination countries"})
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) CreateAgency(c echo.Context) error {
	var req models.CreateAgencyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	agency, err := h.svc.CreateAgency(c.Request().Context(), req)
	if err != nil {
		c.Logger().Error("Handler.CreateAgency: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create agency"})
	}
	return c.JSON(http.StatusCreated, agency)
}

func (h *Handler) DeleteAgency(c echo.Context) error {
	agencyID := c.Param("agencyId")
	if !models.ValidID(agencyID) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Agency not found"})
	}
	if err := h.svc.DeleteAgency(c.Request().Context(), agencyID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Agency not found"})
		}
		c.Logger().Error("Handler.DeleteAgency: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to delete agency"})
	}
	return c.NoContent(http.StatusNoContent)
}
