package moodboard

import (
	"encoding/json"
	"io"
)

// JsonPrint writes v as indented JSON followed by a newline.
func JsonPrint(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}
