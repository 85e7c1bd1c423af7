// Package middleware holds the echo middlewares shared by every module.
package middleware

import (
	"net/http"

	"colisapp/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	ctxToken    = "user"
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// Claims is the payload of ColisApp access tokens. Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWT verifies HS256 bearer tokens and stores the user id and role in the
// echo context. When optional is true, requests without an Authorization
// header pass through anonymously; a present but invalid token is still
// rejected.
func JWT(secret string, optional bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    ctxToken,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get(ctxToken).(*jwt.Token)
			if !ok {
				return
			}
			if claims, ok := token.Claims.(*Claims); ok {
				c.Set(ctxUserID, claims.Subject)
				c.Set(ctxUserRole, claims.Role)
			}
		},
		ContinueOnIgnoredError: optional,
		ErrorHandler: func(c echo.Context, err error) error {
			if optional && c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return nil
			}
			// a nil return would let ContinueOnIgnoredError run the handler
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized").SetInternal(err)
		},
	})
}

// RequireRole rejects users whose role differs from role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r, _ := c.Get(ctxUserRole).(string); r != role {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
			}
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(ctxUserID).(string)
	return id, ok && id != ""
}

// UserRole returns the authenticated user role, if any.
func UserRole(c echo.Context) string {
	role, _ := c.Get(ctxUserRole).(string)
	return role
}
