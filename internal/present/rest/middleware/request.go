package middleware

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/moodboard/internal/domain"
)

var tracer = otel.Tracer("rest")

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// IdentifyRequest tags every request with an id, taken from the caller's
// X-Request-Id when it looks sane and generated otherwise. The id is echoed
// back, stored in the request context and recorded on the span together
// with the client name the caller announced.
func IdentifyRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Rest.Middleware.IdentifyRequest")
		defer span.End()

		id := c.Request().Header.Get(domain.RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		ctx = context.WithValue(ctx, domain.RequestIDCtxKey, id)
		span.SetAttributes(attribute.String("RequestId", id))

		client := c.Request().Header.Get(domain.ClientHeader)
		if client != "" {
			ctx = context.WithValue(ctx, domain.ClientCtxKey, client)
			span.SetAttributes(attribute.String("Client", client))
		}

		c.Response().Header().Set(domain.RequestIDHeader, id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
