package router

import (
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"campusshare/internal/errors"
	"campusshare/internal/repository"
)

// RequireVerified blocks actions gated on identity verification. The flag is
// read from the database on every request so a revoked verification takes
// effect immediately, not at next login.
func RequireVerified(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			id, ok := claims["user_id"].(float64)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}

			user, err := userRepo.FindByID(c.Request().Context(), uint(id))
			if err != nil {
				httpErr := errors.MapErrorToHTTP(errors.ErrUserNotFound)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			if !user.IsVerified {
				httpErr := errors.MapErrorToHTTP(errors.ErrVerificationRequired)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			return next(c)
		}
	}
}
