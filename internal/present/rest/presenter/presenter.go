package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/moodboard/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func BadRequest(c echo.Context, err error) error {
	logFailure(c, http.StatusBadRequest, err.Error())
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	logFailure(c, http.StatusBadRequest, msg)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func NotFound(c echo.Context, msg string) error {
	logFailure(c, http.StatusNotFound, msg)
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

func Conflict(c echo.Context, msg string) error {
	logFailure(c, http.StatusConflict, msg)
	return c.JSON(http.StatusConflict, errorResponse{Error: msg})
}

// InternalError hides err from the client behind msg.
func InternalError(c echo.Context, err error, msg string) error {
	slog.ErrorContext(
		c.Request().Context(), "Internal error",
		slog.String("path", c.Path()),
		slog.String("request_id", domain.RequestID(c.Request().Context())),
		slog.String("trace_id", traceID(c)),
		slog.String("error", err.Error()),
		slog.String("module", "rest"),
	)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
}

// Messages are the client-facing texts used by Error for each failure class.
type Messages struct {
	NotFound string
	Internal string
}

// Error maps a domain error to its status code. Validation failures carry
// their own reason; the other classes use msgs.
func Error(c echo.Context, err error, msgs Messages) error {
	var validation domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return BadRequestMessage(c, "Invalid text index")
	case errors.As(err, &validation):
		return BadRequestMessage(c, validation.Error())
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, msgs.NotFound)
	case errors.Is(err, domain.ErrConflict):
		return Conflict(c, "Text entries changed since they were listed")
	default:
		return InternalError(c, err, msgs.Internal)
	}
}

func logFailure(c echo.Context, status int, msg string) {
	slog.InfoContext(
		c.Request().Context(), "Request rejected",
		slog.String("path", c.Path()),
		slog.String("request_id", domain.RequestID(c.Request().Context())),
		slog.String("trace_id", traceID(c)),
		slog.Int("status", status),
		slog.String("reason", msg),
		slog.String("module", "rest"),
	)
}

func traceID(c echo.Context) string {
	sc := trace.SpanContextFromContext(c.Request().Context())
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
