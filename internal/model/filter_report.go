package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/gifmask/internal/settings"
)

// MaskedItem is one media candidate the filter masked.
type MaskedItem struct {
	// ID ties the placeholder in the document to this entry.
	ID string `json:"id"`

	// URL is the candidate URL that classified as a blocked GIF.
	URL string `json:"url"`

	// Pattern is the GIF pattern the URL matched.
	Pattern string `json:"pattern"`

	// Word is the blocked word the URL matched, in its stored spelling.
	Word string `json:"word"`

	// Picker reports whether the candidate sat in the GIF picker.
	Picker bool `json:"picker"`

	// Owner summarizes the owner unit ("div.imageWrapper_af017a").
	Owner string `json:"owner"`
}

// FilterReport is the result of filtering one document.
type FilterReport struct {
	// SessionID uniquely identifies this filter run.
	SessionID string `json:"session_id"`

	// PageURL is the URL the document was captured from, if any.
	PageURL string `json:"page_url,omitempty"`

	// DocumentHash is the SHA3-256 fingerprint of the input document.
	DocumentHash string `json:"document_hash"`

	// StartedAt is when filtering began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when filtering completed.
	FinishedAt time.Time `json:"finished_at"`

	// Settings is the settings view the run scanned with.
	Settings settings.View `json:"settings"`

	// Scanned counts candidates examined.
	Scanned int `json:"scanned"`

	// PickerSkipped counts picker candidates skipped because picker
	// blocking was off.
	PickerSkipped int `json:"picker_skipped"`

	// Items lists every masked candidate.
	Items []MaskedItem `json:"items"`

	// Summary is the condensed view writers render. Generated on demand
	// when nil.
	Summary *Summary `json:"summary,omitempty"`
}

// NewFilterReport creates a report for one document.
func NewFilterReport(pageURL, documentHash string) *FilterReport {
	return &FilterReport{
		SessionID:    uuid.New().String(),
		PageURL:      pageURL,
		DocumentHash: documentHash,
		StartedAt:    time.Now(),
		Items:        make([]MaskedItem, 0),
	}
}

// AddItem records a masked candidate.
func (r *FilterReport) AddItem(item MaskedItem) {
	r.Items = append(r.Items, item)
}

// Finish stamps the completion time.
func (r *FilterReport) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns how long the run took.
func (r *FilterReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// MaskedCount returns the number of masked candidates.
func (r *FilterReport) MaskedCount() int {
	return len(r.Items)
}

// PatternCounts returns how many masked items each GIF pattern
// accounts for.
func (r *FilterReport) PatternCounts() map[string]int {
	counts := make(map[string]int, len(r.Items))
	for _, item := range r.Items {
		counts[item.Pattern]++
	}
	return counts
}

// PickerCount returns how many masked items came from the picker.
func (r *FilterReport) PickerCount() int {
	n := 0
	for _, item := range r.Items {
		if item.Picker {
			n++
		}
	}
	return n
}
