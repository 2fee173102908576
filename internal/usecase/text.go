package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/moodboard/internal/domain"
)

type TextUsecase struct {
	repo     TextRepository
	notifier Notifier
}

func NewTextUsecase(repo TextRepository, notifier Notifier) *TextUsecase {
	return &TextUsecase{repo: repo, notifier: notifier}
}

func (uc *TextUsecase) Append(ctx context.Context, content string) (domain.TextEntry, error) {
	ctx, span := tracer.Start(ctx, "Text.Usecase.Append")
	defer span.End()

	if err := domain.ValidateContent(content); err != nil {
		span.RecordError(err)
		return domain.TextEntry{}, err
	}

	entry, err := uc.repo.Append(ctx, content)
	if err != nil {
		span.RecordError(err)
		return domain.TextEntry{}, errors.Wrap(err, "TextUsecase.Append")
	}
	span.SetAttributes(attribute.String("EntryID", entry.ID))

	event := domain.NewEvent(domain.EventTextAppended, domain.TextPublicPath)
	event.EntryID = entry.ID
	publish(ctx, uc.notifier, event)

	return entry, nil
}

func (uc *TextUsecase) List(ctx context.Context) (domain.TextSnapshot, error) {
	ctx, span := tracer.Start(ctx, "Text.Usecase.List")
	defer span.End()

	snapshot, err := uc.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return domain.TextSnapshot{}, errors.Wrap(err, "TextUsecase.List")
	}
	return snapshot, nil
}

// DeleteAt removes the entry at a position. Positions shift after every
// delete, so callers that hold an older listing should pass its version.
func (uc *TextUsecase) DeleteAt(ctx context.Context, index int, version string) (domain.TextEntry, error) {
	ctx, span := tracer.Start(ctx, "Text.Usecase.DeleteAt")
	defer span.End()
	span.SetAttributes(attribute.Int("Index", index))

	removed, err := uc.repo.DeleteAt(ctx, index, version)
	if err != nil {
		span.RecordError(err)
		return domain.TextEntry{}, errors.Wrap(err, "TextUsecase.DeleteAt")
	}

	event := domain.NewEvent(domain.EventTextDeleted, domain.TextPublicPath)
	event.EntryID = removed.ID
	event.Index = &index
	publish(ctx, uc.notifier, event)

	return removed, nil
}

func (uc *TextUsecase) DeleteByID(ctx context.Context, id string) (domain.TextEntry, error) {
	ctx, span := tracer.Start(ctx, "Text.Usecase.DeleteByID")
	defer span.End()

	if id == "" {
		err := domain.ValidationError{Reason: "Invalid text id"}
		span.RecordError(err)
		return domain.TextEntry{}, err
	}

	removed, err := uc.repo.DeleteByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.TextEntry{}, errors.Wrap(err, "TextUsecase.DeleteByID")
	}

	event := domain.NewEvent(domain.EventTextDeleted, domain.TextPublicPath)
	event.EntryID = removed.ID
	publish(ctx, uc.notifier, event)

	return removed, nil
}

func publish(ctx context.Context, notifier Notifier, event domain.Event) {
	if notifier == nil {
		return
	}
	if err := notifier.Publish(ctx, event); err != nil {
		slog.WarnContext(
			ctx, "Failed to publish event",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
			slog.String("module", "usecase"),
		)
	}
}
