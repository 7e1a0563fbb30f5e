package middleware // middleware provides reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

	"github.com/tableside/floor-manager/internal/model"
)

// staffContextKey is the context key under which the StaffContext is
// stored.  Handlers retrieve it via StaffFrom rather than reaching
// into the context directly.
const staffContextKey = "staff"

// StaffAuth returns an Echo middleware that validates a Bearer access
// token and materializes its claims into an explicit model.StaffContext
// stored on the request.  Tokens are issued by the upstream API; this
// service only verifies them.  The provided secret must match the
// issuing secret.  Protected handlers obtain the authenticated staff
// member via StaffFrom(c).
func StaffAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid Authorization header starts with "Bearer "
			// followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; reject any other
			// signing method.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			staff := model.StaffContext{}
			if v, ok := claims["sub"].(string); ok {
				staff.Subject = v
			}
			if v, ok := claims["name"].(string); ok {
				staff.Name = v
			}
			if v, ok := claims["role"].(string); ok {
				staff.Role = v
			}
			if staff.Subject == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token missing subject"})
			}

			c.Set(staffContextKey, staff)
			return next(c)
		}
	}
}

// StaffFrom returns the StaffContext established by StaffAuth.  The
// boolean is false when the middleware did not run on this route.
func StaffFrom(c echo.Context) (model.StaffContext, bool) {
	staff, ok := c.Get(staffContextKey).(model.StaffContext)
	return staff, ok
}
