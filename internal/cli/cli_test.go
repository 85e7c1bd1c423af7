package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"colisapp/internal/cli"
	"colisapp/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "colis_simulation"

type fakeAPI struct {
	url     string
	creates atomic.Int32
}

// newFakeAPI serves Belgium to France with one city and one agency each.
func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	e := echo.New()
	g := e.Group("/api")
	g.GET("/countries", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []models.Option{{ID: "be", Name: "Belgique"}, {ID: "fr", Name: "France"}})
	})
	g.GET("/cities", func(c echo.Context) error {
		switch c.QueryParam("countryId") {
		case "be":
			return c.JSON(http.StatusOK, []models.Option{{ID: "bru", Name: "Bruxelles"}})
		case "fr":
			return c.JSON(http.StatusOK, []models.Option{{ID: "par", Name: "Paris"}})
		}
		return c.JSON(http.StatusOK, []models.Option{})
	})
	g.GET("/agencies", func(c echo.Context) error {
		switch c.QueryParam("cityId") {
		case "bru":
			return c.JSON(http.StatusOK, []models.Option{{ID: "louise", Name: "Agence Louise"}})
		case "par":
			return c.JSON(http.StatusOK, []models.Option{{ID: "gare", Name: "Agence Gare du Nord"}})
		}
		return c.JSON(http.StatusOK, []models.Option{})
	})
	g.GET("/destination-countries", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []models.Option{{ID: "fr", Name: "France"}})
	})
	g.POST("/simulations", func(c echo.Context) error {
		var req models.CreateSimulationRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		api.creates.Add(1)
		c.SetCookie(&http.Cookie{Name: cookieName, Value: "sim-1", Path: "/"})
		return c.JSON(http.StatusCreated, models.SimulationCreated{ID: "sim-1", VerificationToken: "tok-1"})
	})
	g.GET("/simulations/pending", func(c echo.Context) error {
		ck, err := c.Cookie(cookieName)
		if err != nil || ck.Value == "" {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No pending simulation"})
		}
		return c.JSON(http.StatusOK, models.Simulation{
			ID:               ck.Value,
			Parcels:          []models.Parcel{{Height: 10, Width: 20, Length: 30, Weight: 5}},
			TotalPrice:       19.35,
			SimulationStatus: models.SimulationDraft,
			EnvoiStatus:      models.EnvoiPending,
		})
	})
	g.DELETE("/simulations/pending", func(c echo.Context) error {
		c.SetCookie(&http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
		return c.NoContent(http.StatusNoContent)
	})
	g.GET("/simulations/:simulationId", func(c echo.Context) error {
		if c.QueryParam("token") != "tok-1" {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Simulation not found"})
		}
		return c.JSON(http.StatusOK, models.Simulation{ID: c.Param("simulationId"), TotalPrice: 19.35})
	})
	g.POST("/auth/login", func(c echo.Context) error {
		var req models.LoginRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		if req.Password != "secret" {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid credentials"})
		}
		return c.JSON(http.StatusOK, models.LoginResponse{Token: "jwt-1", User: models.User{ID: "u1", Email: req.Email}})
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	api.url = srv.URL + "/api/"
	return api
}

func run(t *testing.T, api *fakeAPI, session, input string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append(args, "--api", api.url, "--session", session))
	err := cmd.Execute()
	return buf.String(), err
}

func readSession(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

const happyPath = "1\n1\n1\n" + // Belgique, Bruxelles, Louise
	"1\n1\n1\n" + // France, Paris, Gare du Nord
	"1\n30\n20\n10\n5\n" + // one parcel
	"o\n"

func TestSimulateCommand_HappyPath(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")

	out, err := run(t, api, session, happyPath, "simulate")
	require.NoError(t, err)

	assert.Contains(t, out, "Bruxelles")
	assert.Contains(t, out, "Agence Gare du Nord")
	assert.Contains(t, out, "Simulation enregistrée")
	assert.Contains(t, out, "sim-1")
	assert.Contains(t, out, "tok-1")
	assert.Equal(t, int32(1), api.creates.Load())

	saved := readSession(t, session)
	assert.Contains(t, saved["cookies"], map[string]any{"name": cookieName, "value": "sim-1"})
}

func TestSimulateCommand_InvalidParcelIsReentered(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")

	input := "1\n1\n1\n1\n1\n1\n" +
		"1\n10\n10\n10\n5\n" + // 1000 cm³, too small
		"30\n20\n10\n5\n" +
		"o\n"
	out, err := run(t, api, session, input, "simulate")
	require.NoError(t, err)

	assert.Contains(t, out, "le volume doit être d'au moins")
	assert.Contains(t, out, "Simulation enregistrée")
	assert.Equal(t, int32(1), api.creates.Load())
}

func TestSimulateCommand_NonFiniteInputIsAskedAgain(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")

	input := "1\n1\n1\n1\n1\n1\n" +
		"Inf\n1\n" + // parcel count
		"NaN\n30\n20\n10\n5\n" +
		"o\n"
	out, err := run(t, api, session, input, "simulate")
	require.NoError(t, err)

	assert.Contains(t, out, "Entrez un nombre entier.")
	assert.Contains(t, out, "Entrez un nombre.")
	assert.NotContains(t, out, "NaN")
	assert.Equal(t, int32(1), api.creates.Load())
}

func TestSimulateCommand_AbandonSendsNothing(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")

	input := strings.TrimSuffix(happyPath, "o\n") + "n\n"
	_, err := run(t, api, session, input, "simulate")
	require.Error(t, err)
	assert.Equal(t, int32(0), api.creates.Load())
}

func TestSimulateCommand_ClosedInput(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")

	_, err := run(t, api, session, "1\n", "simulate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input closed")
}

func TestSimulateCommand_ResumesPending(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")
	_, err := run(t, api, session, happyPath, "simulate")
	require.NoError(t, err)

	out, err := run(t, api, session, "o\n", "simulate")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulation sim-1")
	assert.Contains(t, out, "DRAFT")
	assert.Equal(t, int32(1), api.creates.Load())
}

func TestSimulateCommand_DiscardPendingStartsOver(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")
	_, err := run(t, api, session, happyPath, "simulate")
	require.NoError(t, err)

	out, err := run(t, api, session, "n\n"+happyPath, "simulate")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulation précédente supprimée")
	assert.Equal(t, int32(2), api.creates.Load())
}

func TestPendingCommand(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")

	out, err := run(t, api, session, "", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Aucune simulation en cours")

	_, err = run(t, api, session, happyPath, "simulate")
	require.NoError(t, err)

	out, err = run(t, api, session, "", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "sim-1")

	out, err = run(t, api, session, "", "pending", "--discard")
	require.NoError(t, err)
	assert.Contains(t, out, "supprimée")

	out, err = run(t, api, session, "", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Aucune simulation en cours")
}

func TestShowCommand(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")

	out, err := run(t, api, session, "", "show", "sim-1", "--token", "tok-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulation sim-1")

	_, err = run(t, api, session, "", "show", "sim-1", "--token", "wrong")
	require.Error(t, err)
}

func TestLoginCommand(t *testing.T) {
	api := newFakeAPI(t)
	session := filepath.Join(t.TempDir(), "session.json")

	out, err := run(t, api, session, "secret\n", "login", "--email", "ana@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com")
	assert.Equal(t, "jwt-1", readSession(t, session)["token"])

	_, err = run(t, api, session, "", "login", "--email", "ana@example.com", "--password", "nope")
	require.Error(t, err)
}
