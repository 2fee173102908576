package moodboard

import (
	"github.com/totegamma/moodboard/internal/domain"
)

const (
	DeleteTypeText  = "text"
	DeleteTypeImage = "image"
)

type TextEntry = domain.TextEntry

type Event = domain.Event

type SaveTextRequest struct {
	Content *string `json:"content"`
}

type SaveTextResponse struct {
	Message  string    `json:"message"`
	FilePath string    `json:"filePath"`
	Entry    TextEntry `json:"entry"`
}

type ListTextsResponse struct {
	Entries []TextEntry `json:"entries"`
	Version string      `json:"version"`
}

type ListImagesResponse struct {
	Images []string `json:"images"`
}

type SaveImageResponse struct {
	ImagePath string `json:"imagePath"`
}

// DeleteRequest addresses a text entry by index (optionally pinned to a
// listing version) or by id, or an image by filename.
type DeleteRequest struct {
	Type     string `json:"type"`
	Index    *int   `json:"index,omitempty"`
	ID       string `json:"id,omitempty"`
	Version  string `json:"version,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
