package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/moodboard"
	"github.com/totegamma/moodboard/internal/domain"
	"github.com/totegamma/moodboard/internal/present/rest/presenter"
	"github.com/totegamma/moodboard/internal/usecase"
)

// Subscriber streams change events for the realtime endpoint.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan domain.Event, func())
}

type Handler struct {
	text   *usecase.TextUsecase
	image  *usecase.ImageUsecase
	signal Subscriber
}

func NewHandler(
	text *usecase.TextUsecase,
	image *usecase.ImageUsecase,
	signal Subscriber,
) *Handler {
	return &Handler{
		text:   text,
		image:  image,
		signal: signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/saveText", h.handleSaveText)
	e.GET("/api/texts", h.handleListTexts)
	e.GET("/api/listImages", h.handleListImages)
	e.POST("/api/saveImage", h.handleSaveImage)
	e.POST("/api/delete", h.handleDelete)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleSaveText(c echo.Context) error {
	ctx := c.Request().Context()

	var req moodboard.SaveTextRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Content == nil {
		return presenter.BadRequestMessage(c, "Text content cannot be empty.")
	}

	entry, err := h.text.Append(ctx, *req.Content)
	if err != nil {
		return presenter.Error(c, err, presenter.Messages{Internal: "Failed to save text."})
	}

	return presenter.OK(c, moodboard.SaveTextResponse{
		Message:  "Text saved successfully!",
		FilePath: domain.TextPublicPath,
		Entry:    entry,
	})
}

func (h *Handler) handleListTexts(c echo.Context) error {
	ctx := c.Request().Context()

	snapshot, err := h.text.List(ctx)
	if err != nil {
		return presenter.Error(c, err, presenter.Messages{Internal: "Failed to list text"})
	}

	if snapshot.Version != "" {
		etag := fmt.Sprintf("%q", snapshot.Version)
		if c.Request().Header.Get("If-None-Match") == etag {
			return c.NoContent(http.StatusNotModified)
		}
		c.Response().Header().Set("ETag", etag)
	}

	return presenter.OK(c, moodboard.ListTextsResponse{
		Entries: snapshot.Entries,
		Version: snapshot.Version,
	})
}

func (h *Handler) handleListImages(c echo.Context) error {
	ctx := c.Request().Context()

	images, err := h.image.List(ctx)
	if err != nil {
		return presenter.Error(c, err, presenter.Messages{Internal: "Failed to list images"})
	}
	return presenter.OK(c, moodboard.ListImagesResponse{Images: images})
}

func (h *Handler) handleSaveImage(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("file")
	if err != nil {
		return presenter.BadRequestMessage(c, "No file uploaded")
	}

	file, err := fh.Open()
	if err != nil {
		return presenter.InternalError(c, err, "Failed to read upload")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return presenter.InternalError(c, err, "Failed to read upload")
	}

	path, err := h.image.Save(ctx, fh.Filename, content)
	if err != nil {
		return presenter.Error(c, err, presenter.Messages{Internal: "Failed to save image"})
	}

	return presenter.OK(c, moodboard.SaveImageResponse{ImagePath: path})
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	var req moodboard.DeleteRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	switch {
	case req.Type == "":
		return presenter.BadRequestMessage(c, "Type is required (text or image)")

	case req.Type == moodboard.DeleteTypeText && req.ID != "":
		_, err = h.text.DeleteByID(ctx, req.ID)
		if err != nil {
			return presenter.Error(c, err, presenter.Messages{NotFound: "Text entry not found", Internal: "Failed to delete file."})
		}
		return presenter.OK(c, moodboard.MessageResponse{Message: "Text entry deleted successfully!"})

	case req.Type == moodboard.DeleteTypeText:
		if req.Index == nil {
			return presenter.BadRequestMessage(c, "Invalid text index")
		}
		_, err = h.text.DeleteAt(ctx, *req.Index, req.Version)
		if err != nil {
			return presenter.Error(c, err, presenter.Messages{NotFound: "Text file not found", Internal: "Failed to delete file."})
		}
		return presenter.OK(c, moodboard.MessageResponse{Message: "Text entry deleted successfully!"})

	case req.Type == moodboard.DeleteTypeImage && req.Filename != "":
		err = h.image.Delete(ctx, req.Filename)
		if err != nil {
			return presenter.Error(c, err, presenter.Messages{NotFound: "Image not found", Internal: "Failed to delete file."})
		}
		return presenter.OK(c, moodboard.MessageResponse{Message: "Image deleted successfully!"})

	default:
		return presenter.BadRequestMessage(c, "Invalid request")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return presenter.NotFound(c, "realtime is disabled")
	}

	ctx := c.Request().Context()

	events, cancel := h.signal.Subscribe(ctx)
	defer cancel()

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return nil
	}
	defer ws.Close()

	quit := make(chan struct{})

	// clients only send close frames and heartbeats; reading is how we notice
	// they went away
	go func() {
		defer close(quit)
		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	err = ws.WriteJSON(domain.Event{Type: domain.EventHello, CreatedAt: time.Now().UTC()})
	if err != nil {
		return nil
	}

	for {
		select {
		case <-quit:
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
