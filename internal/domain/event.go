package domain

import "time"

const (
	EventHello        = "hello"
	EventTextAppended = "text.appended"
	EventTextDeleted  = "text.deleted"
	EventImageSaved   = "image.saved"
	EventImageDeleted = "image.deleted"
	EventFSChanged    = "fs.changed"
)

// Event notifies subscribers that stored content changed.
type Event struct {
	Type      string    `json:"type"`
	Path      string    `json:"path,omitempty"`
	EntryID   string    `json:"entryId,omitempty"`
	Index     *int      `json:"index,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ, path string) Event {
	return Event{
		Type:      typ,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}
}
