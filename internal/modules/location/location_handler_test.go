package location

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"colisapp/internal/models"
	"colisapp/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEcho(svc ServiceInterface) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New(10)
	h := NewHandler(svc)
	h.RegisterRoutes(e.Group("/api"))
	h.RegisterAdminRoutes(e.Group("/api/admin"))
	return e
}

func TestHandlerListCities(t *testing.T) {
	e := setupEcho(newTestService(newFakeRepo(), nil))

	req := httptest.NewRequest(http.MethodGet, "/api/cities?countryId="+countryBE, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.Option
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []models.Option{{ID: "bru", Name: "Brussels"}}, got)
}

func TestHandlerMissingQueryParam(t *testing.T) {
	e := setupEcho(newTestService(newFakeRepo(), nil))

	for _, path := range []string{"/api/cities", "/api/agencies", "/api/destination-countries"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestHandlerRepositoryFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = assert.AnError
	e := setupEcho(newTestService(repo, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/countries", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlerCreateAgencyValidation(t *testing.T) {
	e := setupEcho(newTestService(newFakeRepo(), nil))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/agencies", strings.NewReader(`{"name":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDeleteUnknownAgency(t *testing.T) {
	e := setupEcho(newTestService(newFakeRepo(), nil))

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/agencies/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerMalformedQueryParam(t *testing.T) {
	repo := newFakeRepo()
	e := setupEcho(newTestService(repo, nil))

	for _, path := range []string{
		"/api/cities?countryId=be",
		"/api/agencies?cityId=bru",
		"/api/destination-countries?departureCountryId=not-a-uuid",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	assert.Zero(t, repo.loads)
}

func TestHandlerDeleteMalformedAgencyID(t *testing.T) {
	e := setupEcho(newTestService(newFakeRepo(), nil))

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/agencies/louise", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
