package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// KV is the string-valued storage the Repository persists into.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	DeleteAll(keys ...string) error
}

// Repository owns the entry collection and the initial hours offset.
// Both are loaded once and every mutation rewrites the whole collection.
// It is safe for concurrent use.
type Repository struct {
	mu      sync.Mutex
	kv      KV
	entries []Entry
	hours   float64
}

// NewRepository loads the collection from kv. Absent or malformed data
// yields an empty collection.
func NewRepository(kv KV) (*Repository, error) {
	r := &Repository{kv: kv}

	raw, ok, err := kv.Get(EntriesKey)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	if ok {
		var entries []Entry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			log.Warnf("stored entries are malformed, starting empty: %v", err)
		} else {
			r.entries = entries
		}
	}

	raw, ok, err = kv.Get(InitialHoursKey)
	if err != nil {
		return nil, fmt.Errorf("load initial hours: %w", err)
	}
	if ok {
		h, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			log.Warnf("stored initial hours %q ignored", raw)
		} else {
			r.hours = h
		}
	}

	log.Debugf("loaded %d entries, initial hours %.1f", len(r.entries), r.hours)
	return r, nil
}

// Entries returns a copy of the collection in insertion order.
func (r *Repository) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports the number of entries.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// InitialHours returns the offset added to the cumulative total.
func (r *Repository) InitialHours() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hours
}

// Add appends a validated entry.
func (r *Repository) Add(e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]Entry, 0, len(r.entries)+1)
	next = append(next, r.entries...)
	next = append(next, e)
	return r.persist(next)
}

// Remove deletes the entry at insertion index i.
func (r *Repository) Remove(i int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(i)
}

// RemoveAt deletes the entry at index i only if it still equals expected.
// A caller holding an index from an earlier snapshot gets ErrEntryChanged
// instead of deleting whatever has moved into that slot.
func (r *Repository) RemoveAt(i int, expected Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i >= 0 && i < len(r.entries) && r.entries[i] != expected {
		return fmt.Errorf("%w: %d", ErrEntryChanged, i)
	}
	return r.removeLocked(i)
}

func (r *Repository) removeLocked(i int) error {
	if i < 0 || i >= len(r.entries) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	next := make([]Entry, 0, len(r.entries)-1)
	next = append(next, r.entries[:i]...)
	next = append(next, r.entries[i+1:]...)
	return r.persist(next)
}

// SetDay commits a calendar cell edit. minutes <= 0 removes every entry of
// date; a positive value replaces them with one entry appended at the end,
// carrying the replaced notes.
func (r *Repository) SetDay(date string, minutes float64) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidValue, minutes)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]Entry, 0, len(r.entries)+1)
	var notes []string
	removed := 0
	for _, e := range r.entries {
		if e.Date == date {
			removed++
			if e.Note != "" {
				notes = append(notes, e.Note)
			}
			continue
		}
		next = append(next, e)
	}

	if minutes <= 0 {
		if removed == 0 {
			return nil
		}
		return r.persist(next)
	}

	next = append(next, Entry{Date: date, Value: minutes, Note: strings.Join(notes, "; ")})
	return r.persist(next)
}

// Replace swaps the whole collection, as an import does.
func (r *Repository) Replace(entries []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]Entry, len(entries))
	copy(next, entries)
	return r.persist(next)
}

// SetInitialHours stores the offset. Zero removes the stored key.
func (r *Repository) SetInitialHours(h float64) error {
	if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidHours, h)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == 0 {
		if err := r.kv.Delete(InitialHoursKey); err != nil {
			return err
		}
	} else if err := r.kv.Set(InitialHoursKey, strconv.FormatFloat(h, 'f', -1, 64)); err != nil {
		return err
	}
	r.hours = h
	return nil
}

// ClearAll wipes the collection and the initial hours together. On a
// failed write neither is touched.
func (r *Repository) ClearAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.kv.DeleteAll(EntriesKey, InitialHoursKey); err != nil {
		return err
	}
	r.entries = nil
	r.hours = 0
	log.Info("cleared all entries and initial hours")
	return nil
}

// persist must be called with r.mu held.
func (r *Repository) persist(next []Entry) error {
	if next == nil {
		next = []Entry{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}
	if err := r.kv.Set(EntriesKey, string(data)); err != nil {
		return fmt.Errorf("save entries: %w", err)
	}
	r.entries = next
	log.Debugf("saved %d entries", len(next))
	return nil
}

// ParseMinutes parses a minutes field of the new-entry form.
func ParseMinutes(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	return v, nil
}

// ParseCellInput parses the minutes typed into a calendar cell edit.
// Blank input means zero, which deletes the day.
func ParseCellInput(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	return v, nil
}

// ParseHours parses the initial hours field. Blank means zero.
func ParseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHours, s)
	}
	return v, nil
}
