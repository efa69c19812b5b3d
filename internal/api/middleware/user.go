package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderUserID carries the acting user's id, resolved by the admin
// console's auth layer in front of this service. The id is opaque here.
const HeaderUserID = "X-User-ID"

// userIDContextKey is the echo context key the resolved user id is stored
// under
const userIDContextKey = "mail.user_id"

// UserContext resolves the current user id from the request and makes it
// available to handlers. Requests without a user are rejected before any
// store access.
func UserContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(HeaderUserID)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"error": "missing user identity",
					"code":  "UNAUTHORIZED",
				})
			}
			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// CurrentUserID returns the user id resolved by UserContext, or empty when
// the middleware did not run
func CurrentUserID(c echo.Context) string {
	userID, _ := c.Get(userIDContextKey).(string)
	return userID
}
