package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Actor identity is resolved upstream (gateway / identity provider) and
// arrives as trusted headers.
const (
	XUserNameHeader = "X-User-Name"
	XUserRoleHeader = "X-User-Role"
)

type ctxKey int

const actorKey ctxKey = iota + 1

type Actor struct {
	ID   string
	Role string
}

func SetActorContext(ctx context.Context, id, role string) context.Context {
	return context.WithValue(ctx, actorKey, Actor{ID: id, Role: role})
}

func ActorFromContext(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(actorKey).(Actor)
	if !ok || actor.ID == "" {
		return Actor{}, errors.New("no actor in context")
	}
	return actor, nil
}

// ActorContext picks the caller identity off the request headers.
func ActorContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		userName := req.Header.Get(XUserNameHeader)
		if userName == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "user-name is empty")
		}
		userRole := req.Header.Get(XUserRoleHeader)
		if userRole == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "user-role is empty")
		}
		ctx := SetActorContext(req.Context(), userName, userRole)
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}
