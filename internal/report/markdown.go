package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/gifmask/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.FilterReport) (int, error) {
	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}

	return w.WriteSummary(summary)
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeItems(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("GIF Filter Report")
	md.PlainText("")

	page := summary.PageURL
	if page == "" {
		page = "(local document)"
	}
	filtered := "-"
	if !summary.GeneratedAt.IsZero() {
		filtered = summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + page + "`"},
			{"Filtered At", filtered},
			{"Candidates Scanned", strconv.Itoa(summary.Scanned)},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on the summary state.
func (w *MarkdownWriter) getStatusText(summary *model.Summary) string {
	if summary.HasItems() {
		return "🙈 " + strconv.Itoa(summary.Masked) + " GIF(s) masked"
	}
	return "✅ Clean"
}

// writeCounts writes the counter summary section.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Filter Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Candidates scanned", strconv.Itoa(summary.Scanned)},
			{"Masked", strconv.Itoa(summary.Masked)},
			{"Masked in picker", strconv.Itoa(summary.PickerMasked)},
			{"Picker skipped", strconv.Itoa(summary.PickerSkipped)},
			{"**Total masked**", "**" + strconv.Itoa(summary.Masked) + "**"},
		},
	})
	md.PlainText("")

	// Add pie chart if anything was masked
	if summary.HasItems() {
		w.writePieChart(md, summary)
	}

	// Add alert based on the outcome
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart for the pattern breakdown.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Masked GIFs by Pattern"),
		piechart.WithShowData(true),
	)

	for _, group := range summary.Patterns {
		chart.LabelAndIntValue(group.Label, uint64(group.Count))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case summary.Masked > 0:
		md.Importantf(
			"%d GIF(s) matched your blocked words and were replaced with placeholders.",
			summary.Masked,
		)
	case summary.PickerSkipped > 0:
		md.Notef(
			"%d picker result(s) matched but stayed visible because picker blocking is off.",
			summary.PickerSkipped,
		)
	default:
		md.Tip("No GIFs matched the blocked words.")
	}
	md.PlainText("")
}

// writeItems writes the masked item table.
func (w *MarkdownWriter) writeItems(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Masked Items")
	md.PlainText("")

	if !summary.HasItems() {
		md.PlainText("No items were masked.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Items))
	for i, item := range summary.Items {
		surface := "message"
		if item.Picker {
			surface = "picker"
		}
		rows[i] = []string{
			truncateString(item.URL, 60),
			item.Word,
			item.Pattern,
			surface,
			truncateString(item.Owner, 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Word", "Pattern", "Surface", "Owner"},
		Rows:   rows,
	})
	md.PlainText("")

	// Full URLs for entries the table truncated
	for _, item := range summary.Items {
		if len(item.URL) > 60 {
			md.Details(truncateString(item.URL, 60), item.URL)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [gifmask](https://github.com/nao1215/gifmask)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
