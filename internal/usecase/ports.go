package usecase

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"

	"github.com/totegamma/moodboard/internal/domain"
)

var tracer = otel.Tracer("usecase")

// TextRepository defines storage operations for text entries.
type TextRepository interface {
	Append(ctx context.Context, content string) (domain.TextEntry, error)
	List(ctx context.Context) (domain.TextSnapshot, error)
	DeleteAt(ctx context.Context, index int, version string) (domain.TextEntry, error)
	DeleteByID(ctx context.Context, id string) (domain.TextEntry, error)
}

// ImageRepository defines storage operations for image files.
type ImageRepository interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, filename string) error
}

// ListCache holds directory listings between changes.
type ListCache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, value []string)
	Delete(ctx context.Context, key string)
}

// Notifier publishes change events to realtime subscribers.
type Notifier interface {
	Publish(ctx context.Context, event domain.Event) error
}
