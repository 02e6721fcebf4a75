package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sadopc/timetracker/internal/store"
)

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []store.Entry) error {
	if entries == nil {
		entries = []store.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON array of entries. Anything but an array is
// rejected, as is an entry that would not pass Entry.Validate.
func ReadJSON(r io.Reader) ([]store.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("parse json: invalid syntax")
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	entries := make([]store.Entry, 0, len(raw))
	for i, item := range raw {
		var e store.Entry
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
