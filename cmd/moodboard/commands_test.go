package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/moodboard"
	"github.com/totegamma/moodboard/client"
	"github.com/totegamma/moodboard/internal/config"
	"github.com/totegamma/moodboard/internal/domain"
	"github.com/totegamma/moodboard/internal/infra/cache"
	"github.com/totegamma/moodboard/internal/infra/repository"
	"github.com/totegamma/moodboard/internal/present/rest"
	"github.com/totegamma/moodboard/internal/service"
	"github.com/totegamma/moodboard/internal/usecase"
)

// setupTestServer starts an API server over a temporary public directory
// and points the client commands at it.
func setupTestServer(t *testing.T) string {
	t.Helper()

	public := t.TempDir()
	hub := service.NewHub()
	textUC := usecase.NewTextUsecase(repository.NewTextRepository(filepath.Join(public, "text", "text.json")), hub)
	imageUC := usecase.NewImageUsecase(repository.NewImageRepository(filepath.Join(public, "images")), cache.NewLocal(time.Minute), hub, true)
	e := rest.NewServer(rest.ServerOptions{PublicDir: public, MaxUploadSize: "1M"}, rest.NewHandler(textUC, imageUC, hub))

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return ts.URL
}

func execute(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()

	textListJSON = false
	textListWidth = 60
	textRmVersion = ""
	imageUploadAs = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--server", server}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTextCommands(t *testing.T) {
	server := setupTestServer(t)

	out, err := execute(t, server, "text", "add", "<b>hello</b> world")
	require.NoError(t, err)
	assert.Contains(t, out, "Text saved successfully!")

	_, err = execute(t, server, "text", "add", "second")
	require.NoError(t, err)

	out, err = execute(t, server, "text", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "INDEX")
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "second")

	table := out

	out, err = execute(t, server, "text", "list", "--json")
	require.NoError(t, err)
	var listing moodboard.ListTextsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	require.Len(t, listing.Entries, 2)
	assert.Contains(t, table, "Version: "+listing.Version)

	_, err = execute(t, server, "text", "rm", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--version")

	_, err = execute(t, server, "text", "rm", "0", "--version", listing.Version)
	require.NoError(t, err)

	_, err = execute(t, server, "text", "rm", listing.Entries[1].ID)
	require.NoError(t, err)

	out, err = execute(t, server, "text", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No text entries.")

	_, err = execute(t, server, "text", "rm", "3", "--version", listing.Version)
	assert.Error(t, err)
}

func TestTextRmRefusesStaleListing(t *testing.T) {
	ctx := context.Background()
	server := setupTestServer(t)
	other := client.New(server)

	for _, content := range []string{"a", "b"} {
		_, err := execute(t, server, "text", "add", content)
		require.NoError(t, err)
	}

	out, err := execute(t, server, "text", "list", "--json")
	require.NoError(t, err)
	var listing moodboard.ListTextsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &listing))

	require.NoError(t, other.DeleteTextAt(ctx, 0, ""))

	_, err = execute(t, server, "text", "rm", "0", "--version", listing.Version)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)

	remaining, err := other.ListTexts(ctx)
	require.NoError(t, err)
	require.Len(t, remaining.Entries, 1)
	assert.Equal(t, "b", remaining.Entries[0].Content)
}

func TestTextAddRejectsEmpty(t *testing.T) {
	server := setupTestServer(t)

	_, err := execute(t, server, "text", "add", "<br>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Text content cannot be empty.")
}

func TestImageCommands(t *testing.T) {
	server := setupTestServer(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	local := filepath.Join(t.TempDir(), "local.png")
	require.NoError(t, os.WriteFile(local, buf.Bytes(), 0o644))

	out, err := execute(t, server, "image", "upload", local, "--as", "board.png")
	require.NoError(t, err)
	assert.Equal(t, "/images/board.png\n", out)

	out, err = execute(t, server, "image", "list")
	require.NoError(t, err)
	assert.Equal(t, "/images/board.png\n", out)

	_, err = execute(t, server, "image", "rm", "board.png")
	require.NoError(t, err)

	_, err = execute(t, server, "image", "rm", "board.png")
	assert.Error(t, err)
}

type recordingNotifier struct {
	events []domain.Event
}

func (n *recordingNotifier) Publish(ctx context.Context, event domain.Event) error {
	n.events = append(n.events, event)
	return nil
}

type countingCache struct {
	deletes int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]string, bool) { return nil, false }
func (c *countingCache) Set(ctx context.Context, key string, value []string) {}
func (c *countingCache) Delete(ctx context.Context, key string)              { c.deletes++ }

func TestChangeHandler(t *testing.T) {
	public := t.TempDir()
	imageDir := filepath.Join(public, "images")

	listCache := &countingCache{}
	notifier := &recordingNotifier{}
	images := usecase.NewImageUsecase(repository.NewImageRepository(imageDir), listCache, nil, false)

	onChange := changeHandler(public, imageDir, images, notifier)
	onChange(context.Background(), filepath.Join(imageDir, "dropped.png"))
	onChange(context.Background(), filepath.Join(public, "text", "text.json"))

	assert.Equal(t, 1, listCache.deletes)
	require.Len(t, notifier.events, 2)
	assert.Equal(t, domain.EventFSChanged, notifier.events[0].Type)
	assert.Equal(t, "/images/dropped.png", notifier.events[0].Path)
	assert.Equal(t, "/text/text.json", notifier.events[1].Path)
}

func TestNewEventSinkFallsBackToHub(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sink, closeSink := newEventSink(ctx, config.Signal{RedisAddr: "127.0.0.1:1", Channel: "moodboard:test"})
	defer closeSink()
	assert.IsType(t, &service.Hub{}, sink)
	assert.NoError(t, sink.Publish(ctx, domain.NewEvent(domain.EventTextAppended, "/text/text.json")))

	sink, closeSink = newEventSink(ctx, config.Signal{})
	defer closeSink()
	assert.IsType(t, &service.Hub{}, sink)
}
