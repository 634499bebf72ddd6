package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/gifmask/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no masked items are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
// It generates a Summary from the FilterReport if not already present.
func (w *SimpleWriter) Write(report *model.FilterReport) (int, error) {
	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}

	return w.WriteSummary(summary)
}

// WriteSummary outputs the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeBreakdown(&sb, summary)
	w.writeItems(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         GIFMASK FILTER REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	page := summary.PageURL
	if page == "" {
		page = "(local document)"
	}
	sb.WriteString(fmt.Sprintf("Page:           %s\n", page))
	if !summary.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Filtered At:    %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	}
	sb.WriteString(fmt.Sprintf("Candidates:     %d\n", summary.Scanned))

	if summary.HasItems() {
		sb.WriteString(fmt.Sprintf("Status:         %d GIF(s) masked\n", summary.Masked))
	} else {
		sb.WriteString("Status:         Clean (nothing masked)\n")
	}

	sb.WriteString("\n")
}

// writeCounts writes the counter summary section.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FILTER SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  SCANNED:        %d\n", summary.Scanned))
	sb.WriteString(fmt.Sprintf("  MASKED:         %d\n", summary.Masked))
	sb.WriteString(fmt.Sprintf("  IN PICKER:      %d\n", summary.PickerMasked))
	sb.WriteString(fmt.Sprintf("  PICKER SKIPPED: %d\n", summary.PickerSkipped))
	sb.WriteString("\n")
}

// writeBreakdown writes the pattern and word groupings.
func (w *SimpleWriter) writeBreakdown(sb *strings.Builder, summary *model.Summary) {
	if len(summary.Patterns) == 0 && len(summary.Words) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("MATCH BREAKDOWN\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.Patterns) == 0 {
		sb.WriteString("  No patterns matched\n")
	}
	for _, group := range summary.Patterns {
		sb.WriteString(fmt.Sprintf("  [+] pattern %-14s %d\n", group.Label, group.Count))
	}
	for _, group := range summary.Words {
		sb.WriteString(fmt.Sprintf("  [+] word    %-14s %d\n", group.Label, group.Count))
	}
	sb.WriteString("\n")
}

// writeItems writes the masked item list.
func (w *SimpleWriter) writeItems(sb *strings.Builder, summary *model.Summary) {
	if !summary.HasItems() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("MASKED ITEMS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if !summary.HasItems() {
		sb.WriteString("  No items masked\n\n")
		return
	}

	for _, item := range summary.Items {
		surface := "message"
		if item.Picker {
			surface = "picker"
		}
		sb.WriteString(fmt.Sprintf("  * %s\n", item.URL))
		sb.WriteString(fmt.Sprintf("    Word: %s  Pattern: %s  Surface: %s\n", item.Word, item.Pattern, surface))
		if w.verbose {
			sb.WriteString(fmt.Sprintf("    Owner: %s\n", item.Owner))
			sb.WriteString(fmt.Sprintf("    ID: %s\n", item.ID))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by gifmask\n")
	sb.WriteString("https://github.com/nao1215/gifmask\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
