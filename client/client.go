package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/patrickmn/go-cache"

	"github.com/totegamma/moodboard"
	"github.com/totegamma/moodboard/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	textsCacheKey  = "texts"
)

// APIError is a non-2xx response. It matches the domain error class of its
// status code, so callers can use errors.Is with domain.ErrNotFound etc.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return domain.ErrValidation.Is(target)
	case http.StatusNotFound:
		return domain.ErrNotFound.Is(target)
	case http.StatusConflict:
		return domain.ErrConflict.Is(target)
	}
	return false
}

type Client struct {
	client    *http.Client
	cache     *cache.Cache
	userAgent string
	baseURL   string
}

type cachedTexts struct {
	etag     string
	response moodboard.ListTextsResponse
}

func New(baseURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(10*time.Minute, 15*time.Minute),
		userAgent: "moodboard-client",
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(domain.ClientHeader, c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) do(req *http.Request, response any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, response any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, response)
}

func (c *Client) get(ctx context.Context, path string, response any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, response)
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body moodboard.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}

func (c *Client) SaveText(ctx context.Context, content string) (moodboard.SaveTextResponse, error) {
	var response moodboard.SaveTextResponse
	err := c.postJSON(ctx, "/api/saveText", moodboard.SaveTextRequest{Content: &content}, &response)
	if err != nil {
		return moodboard.SaveTextResponse{}, err
	}
	return response, nil
}

// ListTexts revalidates the last listing with its ETag and reuses it when
// the server answers 304.
func (c *Client) ListTexts(ctx context.Context) (moodboard.ListTextsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/texts", nil)
	if err != nil {
		return moodboard.ListTextsResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	x, found := c.cache.Get(textsCacheKey)
	cached, _ := x.(cachedTexts)
	if found && cached.etag != "" {
		req.Header.Set("If-None-Match", cached.etag)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return moodboard.ListTextsResponse{}, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return cached.response, nil
	case http.StatusOK:
	default:
		return moodboard.ListTextsResponse{}, readAPIError(resp)
	}

	var response moodboard.ListTextsResponse
	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return moodboard.ListTextsResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if etag := resp.Header.Get("ETag"); etag != "" {
		c.cache.Set(textsCacheKey, cachedTexts{etag: etag, response: response}, cache.DefaultExpiration)
	}
	return response, nil
}

func (c *Client) ListImages(ctx context.Context) ([]string, error) {
	var response moodboard.ListImagesResponse
	err := c.get(ctx, "/api/listImages", &response)
	if err != nil {
		return nil, err
	}
	return response.Images, nil
}

// UploadImage sends content as the multipart "file" field under filename.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	_, err = io.Copy(part, content)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	err = mw.Close()
	if err != nil {
		return "", fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/saveImage", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var response moodboard.SaveImageResponse
	err = c.do(req, &response)
	if err != nil {
		return "", err
	}
	return response.ImagePath, nil
}

// DeleteTextAt removes the entry at index. A non-empty version makes the
// server refuse the delete if the entries changed since that listing.
func (c *Client) DeleteTextAt(ctx context.Context, index int, version string) error {
	return c.postJSON(ctx, "/api/delete", moodboard.DeleteRequest{
		Type:    moodboard.DeleteTypeText,
		Index:   &index,
		Version: version,
	}, nil)
}

func (c *Client) DeleteTextByID(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/api/delete", moodboard.DeleteRequest{
		Type: moodboard.DeleteTypeText,
		ID:   id,
	}, nil)
}

func (c *Client) DeleteImage(ctx context.Context, filename string) error {
	return c.postJSON(ctx, "/api/delete", moodboard.DeleteRequest{
		Type:     moodboard.DeleteTypeImage,
		Filename: filename,
	}, nil)
}

// Subscribe streams realtime events until ctx is done or the connection
// drops; the channel is closed either way.
func (c *Client) Subscribe(ctx context.Context) (<-chan moodboard.Event, error) {
	u, err := url.Parse(c.baseURL + "/realtime")
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect realtime: %w", err)
	}

	events := make(chan moodboard.Event)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(done)
		defer close(events)
		defer conn.Close()
		for {
			var event moodboard.Event
			err := conn.ReadJSON(&event)
			if err != nil {
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
