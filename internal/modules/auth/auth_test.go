package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"colisapp/internal/middleware"
	"colisapp/internal/models"
	"colisapp/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type fakeRepo struct {
	users map[string]*models.User
	err   error
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func newRepo(t *testing.T) *fakeRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	return &fakeRepo{users: map[string]*models.User{
		"amina@colisapp.test": {ID: "u1", Email: "amina@colisapp.test", Name: "Amina", Role: models.RoleClient, PasswordHash: string(hash)},
	}}
}

func TestLoginIssuesToken(t *testing.T) {
	svc := NewService(newRepo(t), testSecret, time.Hour)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "Amina@colisapp.test", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)

	claims := new(middleware.Claims)
	_, err = jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, models.RoleClient, claims.Role)
}

func TestLoginRejects(t *testing.T) {
	svc := NewService(newRepo(t), testSecret, time.Hour)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "amina@colisapp.test", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@colisapp.test", Password: "s3cret!"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestHandlerLogin(t *testing.T) {
	e := echo.New()
	e.Validator = validation.New(10)
	NewHandler(NewService(newRepo(t), testSecret, time.Hour)).RegisterRoutes(e.Group("/api"))

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, post(`{"email":"not-an-email","password":"x"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, post(`{"email":"amina@colisapp.test","password":"nope"}`).Code)

	rec := post(`{"email":"amina@colisapp.test","password":"s3cret!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.PasswordHash)
}
