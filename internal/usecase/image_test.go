package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/totegamma/moodboard/internal/domain"
)

type mockImageRepo struct {
	saved     map[string][]byte
	listCalls int
	deleteErr error
}

func newMockImageRepo() *mockImageRepo {
	return &mockImageRepo{saved: map[string][]byte{}}
}

func (m *mockImageRepo) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	m.saved[filename] = data
	return "/images/" + filename, nil
}

func (m *mockImageRepo) List(ctx context.Context) ([]string, error) {
	m.listCalls++
	paths := []string{}
	for name := range m.saved {
		paths = append(paths, "/images/"+name)
	}
	return paths, nil
}

func (m *mockImageRepo) Delete(ctx context.Context, filename string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.saved[filename]; !ok {
		return domain.NotFoundError{Resource: "image"}
	}
	delete(m.saved, filename)
	return nil
}

type mapCache struct {
	values map[string][]string
}

func (m *mapCache) Get(ctx context.Context, key string) ([]string, bool) {
	v, ok := m.values[key]
	return v, ok
}
func (m *mapCache) Set(ctx context.Context, key string, value []string) { m.values[key] = value }
func (m *mapCache) Delete(ctx context.Context, key string)              { delete(m.values, key) }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestImageUsecaseSaveValidatesUploads(t *testing.T) {
	repo := newMockImageRepo()
	uc := NewImageUsecase(repo, nil, nil, true)
	ctx := context.Background()

	if _, err := uc.Save(ctx, "photo.png", pngBytes(t)); err != nil {
		t.Fatalf("valid png rejected: %v", err)
	}

	cases := map[string][]byte{
		"notes.txt": pngBytes(t),
		"fake.png":  []byte("definitely not an image, just text"),
	}
	for name, data := range cases {
		if _, err := uc.Save(ctx, name, data); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error got %v", name, err)
		}
		if _, ok := repo.saved[name]; ok {
			t.Fatalf("%s: must not be stored", name)
		}
	}
}

func TestImageUsecaseSaveWithoutValidation(t *testing.T) {
	repo := newMockImageRepo()
	uc := NewImageUsecase(repo, nil, nil, false)

	if _, err := uc.Save(context.Background(), "fake.png", []byte("text")); err != nil {
		t.Fatalf("validation disabled, save failed: %v", err)
	}
}

func TestImageUsecaseListUsesCache(t *testing.T) {
	repo := newMockImageRepo()
	cache := &mapCache{values: map[string][]string{}}
	notifier := &mockNotifier{}
	uc := NewImageUsecase(repo, cache, notifier, true)
	ctx := context.Background()

	if _, err := uc.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if _, err := uc.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected one repository list got %d", repo.listCalls)
	}

	if _, err := uc.Save(ctx, "photo.png", pngBytes(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	paths, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/images/photo.png" {
		t.Fatalf("expected fresh listing after save got %v", paths)
	}

	if err := uc.Delete(ctx, "photo.png"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	paths, err = uc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected empty listing after delete got %v", paths)
	}

	if len(notifier.events) != 2 ||
		notifier.events[0].Type != domain.EventImageSaved ||
		notifier.events[1].Type != domain.EventImageDeleted {
		t.Fatalf("unexpected events %+v", notifier.events)
	}
}

func TestImageUsecaseDeleteNotFound(t *testing.T) {
	uc := NewImageUsecase(newMockImageRepo(), nil, nil, true)

	err := uc.Delete(context.Background(), "ghost.png")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}
