package presenter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/totegamma/moodboard/internal/domain"
)

func TestError(t *testing.T) {
	msgs := Messages{NotFound: "Image not found", Internal: "Failed to delete file."}

	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.IndexOutOfRangeError{Index: 9, Length: 1}, http.StatusBadRequest, "Invalid text index"},
		{errors.Wrap(domain.ValidationError{Reason: "Invalid filename"}, "ImageUsecase.Delete"), http.StatusBadRequest, "Invalid filename"},
		{errors.Wrap(domain.NotFoundError{Resource: "image"}, "ImageUsecase.Delete"), http.StatusNotFound, "Image not found"},
		{domain.ConflictError{Expected: "a", Actual: "b"}, http.StatusConflict, "Text entries changed since they were listed"},
		{errors.New("permission denied"), http.StatusInternalServerError, "Failed to delete file."},
	}

	for _, tc := range tests {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/delete", nil)
		res := httptest.NewRecorder()
		c := e.NewContext(req, res)

		if err := Error(c, tc.err, msgs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Code != tc.code {
			t.Fatalf("%v: expected %d got %d", tc.err, tc.code, res.Code)
		}

		var body errorResponse
		if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error != tc.msg {
			t.Fatalf("%v: expected %q got %q", tc.err, tc.msg, body.Error)
		}
	}
}
