package model

import (
	"sort"
	"time"
)

// Summary is the condensed, human-oriented view of a filter run.
// It extracts the counts and groupings report writers render so that
// every output format works from the same numbers.
//
// Design decision: We build a separate summary rather than computing
// counts inside each writer because:
// 1. It gives all formats one consistent, curated view of the run
// 2. It serializes to JSON for tools that want structured but small output
// 3. It keeps presentation concerns out of the raw report data
type Summary struct {
	// PageURL is the filtered page, if known.
	PageURL string `json:"page_url,omitempty"`

	// SessionID identifies the filter run this summary condenses.
	SessionID string `json:"session_id"`

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `json:"generated_at"`

	// === Counters ===

	// Scanned is the number of candidates examined.
	Scanned int `json:"scanned"`

	// Masked is the number of candidates replaced with a placeholder.
	Masked int `json:"masked"`

	// PickerMasked is how many masked candidates sat in the GIF picker.
	PickerMasked int `json:"picker_masked"`

	// PickerSkipped is how many picker candidates were left visible
	// because picker blocking was off.
	PickerSkipped int `json:"picker_skipped"`

	// === Groupings ===

	// Patterns breaks the masked items down by the GIF pattern they
	// matched, largest group first.
	Patterns []LabelCount `json:"patterns,omitempty"`

	// Words breaks the masked items down by the blocked word they
	// matched, largest group first.
	Words []LabelCount `json:"words,omitempty"`

	// Items lists the masked candidates.
	Items []MaskedItem `json:"items,omitempty"`
}

// LabelCount is one group in a summary breakdown.
type LabelCount struct {
	// Label is the group key (a GIF pattern or a blocked word).
	Label string `json:"label"`

	// Count is the number of masked items in the group.
	Count int `json:"count"`
}

// NewSummary condenses a filter report.
func NewSummary(report *FilterReport) *Summary {
	s := &Summary{
		PageURL:       report.PageURL,
		SessionID:     report.SessionID,
		GeneratedAt:   report.FinishedAt,
		Scanned:       report.Scanned,
		Masked:        report.MaskedCount(),
		PickerMasked:  report.PickerCount(),
		PickerSkipped: report.PickerSkipped,
		Items:         report.Items,
	}

	patterns := make(map[string]int, len(report.Items))
	words := make(map[string]int, len(report.Items))
	for _, item := range report.Items {
		patterns[item.Pattern]++
		words[item.Word]++
	}
	s.Patterns = sortedCounts(patterns)
	s.Words = sortedCounts(words)

	return s
}

// HasItems reports whether the run masked anything.
func (s *Summary) HasItems() bool {
	return s.Masked > 0
}

// sortedCounts orders groups largest first, ties by label.
func sortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		if label == "" {
			continue
		}
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
