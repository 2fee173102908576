package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	mbmiddleware "github.com/totegamma/moodboard/internal/present/rest/middleware"
)

type ServerOptions struct {
	PublicDir     string
	MaxUploadSize string
	EnableCORS    bool
	EnableTrace   bool
	ServiceName   string
	AccessLog     bool
}

// NewServer builds the router: middleware, API routes and the public
// directory served at the root.
func NewServer(opts ServerOptions, h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if opts.EnableTrace {
		e.Use(otelecho.Middleware(opts.ServiceName))
	}
	e.Use(mbmiddleware.IdentifyRequest)
	if opts.AccessLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	if opts.EnableCORS {
		e.Use(middleware.CORS())
	}
	if opts.MaxUploadSize != "" {
		e.Use(middleware.BodyLimit(opts.MaxUploadSize))
	}

	h.RegisterRoutes(e)

	if opts.PublicDir != "" {
		e.Static("/", opts.PublicDir)
	}

	return e
}
