package repository

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/totegamma/moodboard/internal/domain"
)

// ImageRepository keeps uploaded images as plain files in one directory,
// keyed by their original filename.
type ImageRepository struct {
	dir string
	mu  sync.Mutex
}

func NewImageRepository(dir string) *ImageRepository {
	return &ImageRepository{dir: dir}
}

// Dir returns the directory backing the repository.
func (r *ImageRepository) Dir() string {
	return r.dir
}

// PublicPath maps a stored filename to the URL it is served under.
func PublicPath(filename string) string {
	return domain.ImagePublicPath + "/" + filename
}

// Save writes content under filename, replacing any file of the same name.
func (r *ImageRepository) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	target, err := r.resolve(filename)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create image directory")
	}
	if err := writeFileAtomic(target, content, 0o644); err != nil {
		return "", err
	}
	return PublicPath(filename), nil
}

// List returns public paths of allow-listed image files. A missing
// directory yields an empty list.
func (r *ImageRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, "read %s", r.dir)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !domain.IsImageName(name) {
			continue
		}
		paths = append(paths, PublicPath(name))
	}
	return paths, nil
}

func (r *ImageRepository) Delete(ctx context.Context, filename string) error {
	target, err := r.resolve(filename)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NotFoundError{Resource: "image"}
		}
		return errors.Wrapf(err, "stat %s", target)
	}
	if info.IsDir() {
		return domain.NotFoundError{Resource: "image"}
	}

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return domain.NotFoundError{Resource: "image"}
		}
		return errors.Wrapf(err, "remove %s", target)
	}
	return nil
}

// resolve joins a sanitized filename onto the directory and verifies the
// result stays inside it.
func (r *ImageRepository) resolve(filename string) (string, error) {
	name, err := domain.SanitizeImageName(filename)
	if err != nil {
		return "", err
	}

	base, err := filepath.Abs(r.dir)
	if err != nil {
		return "", errors.Wrap(err, "resolve image directory")
	}
	target := filepath.Join(base, name)

	rel, err := filepath.Rel(base, target)
	if err != nil || rel != name {
		return "", domain.ValidationError{Reason: "Invalid filename"}
	}
	return target, nil
}
