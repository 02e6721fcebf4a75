package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestRepo(t *testing.T, s *Store) *Repository {
	t.Helper()
	r, err := NewRepository(s)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return r
}

// failingKV accepts reads and refuses every write.
type failingKV struct {
	data map[string]string
}

func (f *failingKV) Get(key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *failingKV) Set(string, string) error  { return errors.New("disk full") }
func (f *failingKV) Delete(string) error       { return errors.New("disk full") }
func (f *failingKV) DeleteAll(...string) error { return errors.New("disk full") }

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "timetracker.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(EntriesKey, `[{"date":"2024-01-01","value":5}]`); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration is not re-run destructively.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	r := newTestRepo(t, s2)
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", r.Len())
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "timetracker.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Key-value
// ============================================================

func TestKVRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := s.Set("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", "v2"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get("k")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("Get(k) = %q, %v, %v", v, ok, err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Fatal("key should be gone")
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("deleting absent key: %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	s := newTestStore(t)
	s.Set("a", "1")
	s.Set("b", "2")
	s.Set("c", "3")

	if err := s.DeleteAll("a", "b", "missing"); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"a", "b"} {
		if _, ok, _ := s.Get(key); ok {
			t.Fatalf("key %q should be gone", key)
		}
	}
	if v, ok, _ := s.Get("c"); !ok || v != "3" {
		t.Fatalf("untouched key changed: %q, %v", v, ok)
	}
}

// ============================================================
// Repository load
// ============================================================

func TestRepositoryEmptyStore(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))
	if r.Len() != 0 || r.InitialHours() != 0 {
		t.Fatalf("expected empty repository, got %d entries, %v hours", r.Len(), r.InitialHours())
	}
}

func TestRepositoryMalformedJSON(t *testing.T) {
	s := newTestStore(t)
	s.Set(EntriesKey, "{not json")
	s.Set(InitialHoursKey, "abc")

	r := newTestRepo(t, s)
	if r.Len() != 0 {
		t.Fatalf("malformed data should load empty, got %d", r.Len())
	}
	if r.InitialHours() != 0 {
		t.Fatalf("malformed hours should load 0, got %v", r.InitialHours())
	}
}

func TestRepositoryLoadsInitialHours(t *testing.T) {
	s := newTestStore(t)
	s.Set(InitialHoursKey, "12.5")
	r := newTestRepo(t, s)
	if r.InitialHours() != 12.5 {
		t.Fatalf("InitialHours = %v, want 12.5", r.InitialHours())
	}
}

// ============================================================
// Repository mutations
// ============================================================

func TestAddPersists(t *testing.T) {
	s := newTestStore(t)
	r := newTestRepo(t, s)

	if err := r.Add(Entry{Date: "2024-01-01", Value: 30, Note: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(Entry{Date: "2024-01-02", Value: 10}); err != nil {
		t.Fatal(err)
	}

	raw, _, _ := s.Get(EntriesKey)
	want := `[{"date":"2024-01-01","value":30,"note":"a"},{"date":"2024-01-02","value":10}]`
	if raw != want {
		t.Fatalf("stored blob = %s\nwant %s", raw, want)
	}

	reloaded := newTestRepo(t, s)
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded %d entries, want 2", reloaded.Len())
	}
}

func TestAddValidation(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))
	tests := []struct {
		e    Entry
		want error
	}{
		{Entry{Date: "2024-1-01", Value: 5}, ErrInvalidDate},
		{Entry{Date: "2024-02-30", Value: 5}, ErrInvalidDate},
		{Entry{Date: "", Value: 5}, ErrInvalidDate},
		{Entry{Date: "2024-02-01", Value: 0}, ErrInvalidValue},
		{Entry{Date: "2024-02-01", Value: -3}, ErrInvalidValue},
	}
	for _, tt := range tests {
		if err := r.Add(tt.e); !errors.Is(err, tt.want) {
			t.Errorf("Add(%+v) error = %v, want %v", tt.e, err, tt.want)
		}
	}
	if r.Len() != 0 {
		t.Fatalf("invalid entries must not be stored, got %d", r.Len())
	}
}

func TestRemove(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))
	r.Add(Entry{Date: "2024-01-01", Value: 1})
	r.Add(Entry{Date: "2024-01-02", Value: 2})
	r.Add(Entry{Date: "2024-01-03", Value: 3})

	if err := r.Remove(1); err != nil {
		t.Fatal(err)
	}
	got := r.Entries()
	if len(got) != 2 || got[0].Value != 1 || got[1].Value != 3 {
		t.Fatalf("unexpected entries after remove: %+v", got)
	}
	if err := r.Remove(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := r.Remove(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestRemoveAtStaleIndex(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))
	r.Add(Entry{Date: "2024-01-01", Value: 1})
	r.Add(Entry{Date: "2024-02-01", Value: 2})
	r.Add(Entry{Date: "2024-03-01", Value: 3})

	selected := r.Entries()[1]
	if err := r.RemoveAt(1, selected); err != nil {
		t.Fatal(err)
	}
	// Same index again: the slot now holds 2024-03-01.
	if err := r.RemoveAt(1, selected); !errors.Is(err, ErrEntryChanged) {
		t.Fatalf("expected ErrEntryChanged, got %v", err)
	}
	got := r.Entries()
	if len(got) != 2 || got[0].Date != "2024-01-01" || got[1].Date != "2024-03-01" {
		t.Fatalf("unexpected entries: %+v", got)
	}
	if err := r.RemoveAt(2, selected); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestRepositoryConcurrentMutations(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			date := fmt.Sprintf("2024-01-%02d", i+1)
			if err := r.Add(Entry{Date: date, Value: 1}); err != nil {
				t.Errorf("add %s: %v", date, err)
			}
			_ = r.Entries()
			_ = r.Len()
		}(i)
	}
	wg.Wait()

	if r.Len() != 20 {
		t.Fatalf("expected 20 entries, got %d", r.Len())
	}
	reloaded := newTestRepo(t, r.kv.(*Store))
	if reloaded.Len() != 20 {
		t.Fatalf("expected 20 persisted entries, got %d", reloaded.Len())
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))
	r.Add(Entry{Date: "2024-01-01", Value: 1})
	got := r.Entries()
	got[0].Value = 99
	if r.Entries()[0].Value != 1 {
		t.Fatal("Entries must not expose internal state")
	}
}

func TestSetDayZeroRemovesDate(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))
	r.Add(Entry{Date: "2024-01-01", Value: 30})
	r.Add(Entry{Date: "2024-01-01", Value: 15})
	r.Add(Entry{Date: "2024-01-02", Value: 10})

	if err := r.SetDay("2024-01-01", 0); err != nil {
		t.Fatal(err)
	}
	got := r.Entries()
	if len(got) != 1 || got[0].Date != "2024-01-02" {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestSetDayConsolidates(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))
	r.Add(Entry{Date: "2024-01-01", Value: 30, Note: "morning"})
	r.Add(Entry{Date: "2024-01-02", Value: 10})
	r.Add(Entry{Date: "2024-01-01", Value: 15, Note: "evening"})

	if err := r.SetDay("2024-01-01", 60); err != nil {
		t.Fatal(err)
	}
	got := r.Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %+v", got)
	}
	last := got[1]
	if last.Date != "2024-01-01" || last.Value != 60 || last.Note != "morning; evening" {
		t.Fatalf("unexpected consolidated entry: %+v", last)
	}
}

func TestSetDaySameValueKeepsTotal(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))
	r.Add(Entry{Date: "2024-01-01", Value: 30})
	r.Add(Entry{Date: "2024-01-01", Value: 15})

	if err := r.SetDay("2024-01-01", 45); err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, e := range r.Entries() {
		total += e.Value
	}
	if total != 45 {
		t.Fatalf("total = %v, want 45", total)
	}
}

func TestSetDayInvalidDate(t *testing.T) {
	r := newTestRepo(t, newTestStore(t))
	if err := r.SetDay("01/01/2024", 10); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestReplaceAndClearAll(t *testing.T) {
	s := newTestStore(t)
	r := newTestRepo(t, s)
	r.Add(Entry{Date: "2024-01-01", Value: 30})
	r.SetInitialHours(10)

	if err := r.Replace([]Entry{{Date: "2023-05-05", Value: 7}}); err != nil {
		t.Fatal(err)
	}
	if got := r.Entries(); len(got) != 1 || got[0].Date != "2023-05-05" {
		t.Fatalf("replace failed: %+v", got)
	}

	if err := r.ClearAll(); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 0 || r.InitialHours() != 0 {
		t.Fatal("clear all should wipe entries and hours")
	}
	if _, ok, _ := s.Get(EntriesKey); ok {
		t.Fatal("entries key should be removed")
	}
	if _, ok, _ := s.Get(InitialHoursKey); ok {
		t.Fatal("initial hours key should be removed")
	}
}

func TestSetInitialHours(t *testing.T) {
	s := newTestStore(t)
	r := newTestRepo(t, s)

	if err := r.SetInitialHours(12.5); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := s.Get(InitialHoursKey); v != "12.5" {
		t.Fatalf("stored hours = %q, want 12.5", v)
	}
	if err := r.SetInitialHours(0); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(InitialHoursKey); ok {
		t.Fatal("zero hours should remove the key")
	}
	if err := r.SetInitialHours(-1); !errors.Is(err, ErrInvalidHours) {
		t.Fatalf("expected ErrInvalidHours, got %v", err)
	}
}

func TestFailedWriteLeavesStateUntouched(t *testing.T) {
	kv := &failingKV{data: map[string]string{
		EntriesKey:      `[{"date":"2024-01-01","value":30}]`,
		InitialHoursKey: "12",
	}}
	r, err := NewRepository(kv)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Add(Entry{Date: "2024-01-02", Value: 5}); err == nil {
		t.Fatal("expected write error")
	}
	if err := r.Replace(nil); err == nil {
		t.Fatal("expected write error")
	}
	if err := r.SetDay("2024-01-01", 0); err == nil {
		t.Fatal("expected write error")
	}
	if err := r.ClearAll(); err == nil {
		t.Fatal("expected write error")
	}
	if r.Len() != 1 || r.Entries()[0].Value != 30 {
		t.Fatalf("state changed after failed writes: %+v", r.Entries())
	}
	if r.InitialHours() != 12 {
		t.Fatalf("initial hours changed after failed clear: %v", r.InitialHours())
	}
}

// ============================================================
// Input parsing
// ============================================================

func TestParseCellInput(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"   ", 0, false},
		{"0", 0, false},
		{"45", 45, false},
		{" 12.5 ", 12.5, false},
		{"-5", -5, false},
		{"abc", 0, true},
		{"NaN", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCellInput(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCellInput(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCellInput(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseMinutes(t *testing.T) {
	if v, err := ParseMinutes("30"); err != nil || v != 30 {
		t.Fatalf("ParseMinutes(30) = %v, %v", v, err)
	}
	for _, in := range []string{"", "0", "-1", "ten", "Inf"} {
		if _, err := ParseMinutes(in); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("ParseMinutes(%q) should fail, got %v", in, err)
		}
	}
}

func TestParseHours(t *testing.T) {
	if v, err := ParseHours(""); err != nil || v != 0 {
		t.Fatalf("blank hours = %v, %v", v, err)
	}
	if v, err := ParseHours("100.5"); err != nil || v != 100.5 {
		t.Fatalf("ParseHours(100.5) = %v, %v", v, err)
	}
	if _, err := ParseHours("-2"); !errors.Is(err, ErrInvalidHours) {
		t.Fatalf("negative hours should fail, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatal(err)
	}
	if FormatDate(d) != "2024-02-29" {
		t.Fatalf("FormatDate round trip = %q", FormatDate(d))
	}
	if _, err := ParseDate("2023-02-29"); err == nil {
		t.Fatal("2023-02-29 is not a real date")
	}
}
