// Package billing is the patient financial engine: temporal rate and
// status resolution, pro-rata monthly charges, bill splits and ledger
// aggregation. Every function is a pure computation over the records
// passed in; nothing here reads the clock, performs I/O or mutates its
// arguments, so callers may invoke it concurrently without locking.
package billing

import (
	"sort"
	"time"

	"github.com/maayanhealth/clinic-api/internal/model"
)

// ResolveRate returns the rate entry in effect on asOf: the entry with
// the latest start date not after asOf. It returns nil when the history
// is empty or every entry starts after asOf. Entries sharing a start
// date resolve to the one stored first (stable descending sort).
func ResolveRate(history []model.RateHistoryEntry, asOf time.Time) *model.RateHistoryEntry {
	if len(history) == 0 {
		return nil
	}
	sorted := make([]model.RateHistoryEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.After(sorted[j].StartDate)
	})
	for i := range sorted {
		if !sorted[i].StartDate.After(asOf) {
			return &sorted[i]
		}
	}
	return nil
}

// ResolveStatus returns the status entry in effect on asOf, under the
// same resolution rule as ResolveRate keyed on the entry date.
func ResolveStatus(history []model.StatusHistoryEntry, asOf time.Time) *model.StatusHistoryEntry {
	if len(history) == 0 {
		return nil
	}
	sorted := make([]model.StatusHistoryEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	for i := range sorted {
		if !sorted[i].Date.After(asOf) {
			return &sorted[i]
		}
	}
	return nil
}
