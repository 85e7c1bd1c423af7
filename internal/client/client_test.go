package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"colisapp/internal/models"
	"colisapp/internal/wizard"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ wizard.LocationSource    = (*Client)(nil)
	_ wizard.SimulationService = (*Client)(nil)
)

const cookieName = "colis_simulation"

// newServer fakes the API: POST /simulations sets the cookie, the pending
// routes read it.
func newServer(t *testing.T) *Client {
	t.Helper()
	e := echo.New()
	api := e.Group("/api")
	api.GET("/countries", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []models.Option{{ID: "be", Name: "Belgium"}})
	})
	api.GET("/cities", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []models.Option{{ID: c.QueryParam("countryId") + "-city", Name: "City"}})
	})
	api.GET("/destination-countries", func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve options"})
	})
	api.POST("/simulations", func(c echo.Context) error {
		var req models.CreateSimulationRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		if len(req.Parcels) == 0 {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed", Errors: []string{"parcels est un champ obligatoire"}})
		}
		c.SetCookie(&http.Cookie{Name: cookieName, Value: "sim-1", Path: "/"})
		return c.JSON(http.StatusCreated, models.SimulationCreated{ID: "sim-1", VerificationToken: "tok"})
	})
	api.GET("/simulations/pending", func(c echo.Context) error {
		ck, err := c.Cookie(cookieName)
		if err != nil || ck.Value == "" {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No pending simulation"})
		}
		sim := models.Simulation{ID: ck.Value}
		if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
			owner := "u1"
			sim.UserID = &owner
		}
		return c.JSON(http.StatusOK, sim)
	})
	api.DELETE("/simulations/pending", func(c echo.Context) error {
		c.SetCookie(&http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
		return c.NoContent(http.StatusNoContent)
	})
	api.GET("/simulations/:id", func(c echo.Context) error {
		if c.QueryParam("token") != "tok" {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Simulation not found"})
		}
		return c.JSON(http.StatusOK, models.Simulation{ID: c.Param("id")})
	})
	api.POST("/auth/login", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.LoginResponse{Token: "jwt", User: models.User{ID: "u1"}})
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/api/")
	require.NoError(t, err)
	return c
}

func TestClientOptions(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	got, err := c.ListCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Option{{ID: "be", Name: "Belgium"}}, got)

	got, err = c.ListCitiesForCountry(ctx, "fr")
	require.NoError(t, err)
	assert.Equal(t, "fr-city", got[0].ID)

	_, err = c.ListDestinationCountries(ctx, "be")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode())
	assert.Equal(t, []string{"Failed to retrieve options"}, apiErr.Messages())
}

func TestClientPendingLifecycle(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	sim, err := c.PendingSimulation(ctx)
	require.NoError(t, err)
	assert.Nil(t, sim)

	created, err := c.CreateSimulation(ctx, models.CreateSimulationRequest{Parcels: []models.Parcel{{Height: 30, Width: 20, Length: 40, Weight: 5}}})
	require.NoError(t, err)
	assert.Equal(t, "sim-1", created.ID)

	sim, err = c.PendingSimulation(ctx)
	require.NoError(t, err)
	require.NotNil(t, sim)
	assert.Equal(t, "sim-1", sim.ID)
	assert.Nil(t, sim.UserID)

	_, err = c.Login(ctx, "amina@colisapp.test", "pw")
	require.NoError(t, err)
	sim, err = c.PendingSimulation(ctx)
	require.NoError(t, err)
	require.NotNil(t, sim.UserID)

	require.NoError(t, c.DiscardPending(ctx))
	sim, err = c.PendingSimulation(ctx)
	require.NoError(t, err)
	assert.Nil(t, sim)
}

func TestClientValidationError(t *testing.T) {
	c := newServer(t)

	_, err := c.CreateSimulation(context.Background(), models.CreateSimulationRequest{})
	var se wizard.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode())
	assert.Equal(t, []string{"parcels est un champ obligatoire"}, se.Messages())
}

func TestClientCookiesRoundTrip(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()
	_, err := c.CreateSimulation(ctx, models.CreateSimulationRequest{Parcels: []models.Parcel{{}}})
	require.NoError(t, err)

	saved := c.Cookies()
	require.Len(t, saved, 1)

	other, err := New(c.base.String())
	require.NoError(t, err)
	other.SetCookies(saved)
	sim, err := other.PendingSimulation(ctx)
	require.NoError(t, err)
	require.NotNil(t, sim)
	assert.Equal(t, "sim-1", sim.ID)
}

func TestClientGetSimulation(t *testing.T) {
	c := newServer(t)

	sim, err := c.GetSimulation(context.Background(), "sim-1", "tok")
	require.NoError(t, err)
	assert.Equal(t, "sim-1", sim.ID)

	_, err = c.GetSimulation(context.Background(), "sim-1", "bad")
	assert.Error(t, err)
}

func TestClientTransportError(t *testing.T) {
	c, err := New("http://127.0.0.1:1/api")
	require.NoError(t, err)
	_, err = c.ListCountries(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
