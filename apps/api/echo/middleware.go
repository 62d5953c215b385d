package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"sekolahku/core/user"
)

// roleMiddleware lets through authenticated callers holding any of the given roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextClaims(ctx); err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleAdmin)
}

func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleTeacher, user.RoleAdmin)
}
