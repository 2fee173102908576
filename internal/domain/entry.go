package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// EmptyMarkup is what rich-text editors submit for an empty document.
const EmptyMarkup = "<br>"

// TimestampLayout matches JavaScript's Date.prototype.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a UTC instant serialized with millisecond precision.
// A stored value that is not an RFC 3339 string is kept verbatim.
type Timestamp struct {
	time.Time
	raw json.RawMessage
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

// Valid reports whether the timestamp holds a parsed instant.
func (t Timestamp) Valid() bool {
	return t.raw == nil && !t.Time.IsZero()
}

func (t Timestamp) String() string {
	if t.raw != nil {
		var s string
		if err := json.Unmarshal(t.raw, &s); err == nil {
			return s
		}
		return string(t.raw)
	}
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.raw != nil {
		return t.raw, nil
	}
	return json.Marshal(t.UTC().Format(TimestampLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	t.raw = append(json.RawMessage(nil), data...)
	return nil
}

// TextEntry is one element of the text store file. Members other than id,
// content and timestamp survive a rewrite, and so does an element that is
// not an object at all.
type TextEntry struct {
	ID        string
	Content   string
	Timestamp Timestamp

	extra map[string]json.RawMessage
	raw   json.RawMessage
}

// Opaque reports whether the stored element was not a JSON object.
func (e TextEntry) Opaque() bool {
	return e.raw != nil
}

func (e TextEntry) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	member := func(key string, value any) error {
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		name, _ := json.Marshal(key)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(data)
		return nil
	}

	var err error
	switch {
	case e.ID != "":
		err = member("id", e.ID)
	case e.extra["id"] != nil:
		err = member("id", e.extra["id"])
	}
	if err != nil {
		return nil, err
	}

	if v, ok := e.extra["content"]; ok {
		err = member("content", v)
	} else {
		err = member("content", e.Content)
	}
	if err != nil {
		return nil, err
	}

	if e.Timestamp.raw != nil || !e.Timestamp.Time.IsZero() {
		if err := member("timestamp", e.Timestamp); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(e.extra))
	for k := range e.extra {
		if k != "id" && k != "content" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := member(k, e.extra[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON never fails on valid JSON: fields of the wrong type are kept
// as they were stored.
func (e *TextEntry) UnmarshalJSON(data []byte) error {
	*e = TextEntry{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		if !json.Valid(data) {
			return err
		}
		e.raw = append(json.RawMessage(nil), data...)
		return nil
	}

	for key, value := range fields {
		switch key {
		case "id":
			if s, ok := decodeString(value); ok {
				e.ID = s
				continue
			}
		case "content":
			if s, ok := decodeString(value); ok {
				e.Content = s
				continue
			}
		case "timestamp":
			if err := e.Timestamp.UnmarshalJSON(value); err == nil {
				continue
			}
		}
		if e.extra == nil {
			e.extra = map[string]json.RawMessage{}
		}
		e.extra[key] = value
	}
	return nil
}

func decodeString(value json.RawMessage) (string, bool) {
	var s *string
	if err := json.Unmarshal(value, &s); err != nil || s == nil {
		return "", false
	}
	return *s, true
}

// ValidateContent rejects blank content and the empty-markup sentinel.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" || content == EmptyMarkup {
		return ValidationError{Reason: "Text content cannot be empty."}
	}
	return nil
}

// TextSnapshot is the full sequence together with the version it was read at.
type TextSnapshot struct {
	Entries []TextEntry `json:"entries"`
	Version string      `json:"version"`
}
