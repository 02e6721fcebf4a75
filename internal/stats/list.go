package stats

import (
	"sort"

	"github.com/sadopc/timetracker/internal/store"
)

// IndexedEntry keeps the insertion index so a listed row can be removed.
type IndexedEntry struct {
	Index int
	store.Entry
}

// ReverseChronological lists entries newest date first; entries sharing a
// date keep reverse insertion order.
func ReverseChronological(entries []store.Entry) []IndexedEntry {
	out := make([]IndexedEntry, len(entries))
	for i, e := range entries {
		out[i] = IndexedEntry{Index: i, Entry: e}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Index > out[j].Index
	})
	return out
}
