package usecase

import (
	"bytes"
	"context"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/moodboard/internal/domain"
)

const imageListKey = "images"

type ImageUsecase struct {
	repo     ImageRepository
	cache    ListCache
	notifier Notifier
	validate bool
}

func NewImageUsecase(repo ImageRepository, cache ListCache, notifier Notifier, validateUploads bool) *ImageUsecase {
	return &ImageUsecase{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		validate: validateUploads,
	}
}

// Save stores an upload under its original name.
func (uc *ImageUsecase) Save(ctx context.Context, filename string, content []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "Image.Usecase.Save")
	defer span.End()
	span.SetAttributes(attribute.String("Filename", filename))

	if uc.validate {
		if err := validateUpload(filename, content); err != nil {
			span.RecordError(err)
			return "", err
		}
	}

	path, err := uc.repo.Save(ctx, filename, bytes.NewReader(content))
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "ImageUsecase.Save")
	}

	uc.Invalidate(ctx)
	publish(ctx, uc.notifier, domain.NewEvent(domain.EventImageSaved, path))

	return path, nil
}

func (uc *ImageUsecase) List(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Image.Usecase.List")
	defer span.End()

	if uc.cache != nil {
		if cached, found := uc.cache.Get(ctx, imageListKey); found {
			span.SetAttributes(attribute.Bool("CacheHit", true))
			return cached, nil
		}
	}

	paths, err := uc.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "ImageUsecase.List")
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, imageListKey, paths)
	}
	return paths, nil
}

func (uc *ImageUsecase) Delete(ctx context.Context, filename string) error {
	ctx, span := tracer.Start(ctx, "Image.Usecase.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("Filename", filename))

	err := uc.repo.Delete(ctx, filename)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "ImageUsecase.Delete")
	}

	uc.Invalidate(ctx)
	publish(ctx, uc.notifier, domain.NewEvent(domain.EventImageDeleted, domain.ImagePublicPath+"/"+filename))

	return nil
}

// Invalidate drops the cached listing.
func (uc *ImageUsecase) Invalidate(ctx context.Context) {
	if uc.cache != nil {
		uc.cache.Delete(ctx, imageListKey)
	}
}

func validateUpload(filename string, content []byte) error {
	if !domain.IsImageName(filename) {
		return domain.ValidationError{Reason: "Unsupported file type"}
	}
	detected := mimetype.Detect(content)
	for _, allowed := range domain.ImageMIMETypes {
		if detected.Is(allowed) {
			return nil
		}
	}
	return domain.ValidationError{Reason: "Unsupported file type: " + detected.String()}
}
