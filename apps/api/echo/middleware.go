package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/user"
)

// requireRoles lets through admins and users holding any of roles.
func requireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.HasRole(user.RoleAdmin) || claims.HasRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// actorMiddleware records the authenticated user on the request context for audit info.
func actorMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if claims, err := getContextClaims(ctx); err == nil {
			req := ctx.Request()
			ctx.SetRequest(req.WithContext(crud.WithActor(req.Context(), claims.UserID())))
		}
		return next(ctx)
	}
}
