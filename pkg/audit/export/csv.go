package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"oecs-hq/lusaka/pkg/audit"
)

// CSVExporter exports session snapshots to CSV, one row per audit entry.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes the snapshot's entries to w in CSV format. Nested exchange
// fields are flattened into columns.
func (e *CSVExporter) Export(ctx context.Context, snapshot *audit.Snapshot, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return audit.NewExportError("csv", len(snapshot.Entries), err)
		}
	}

	for i := range snapshot.Entries {
		if err := writer.Write(entryToRow(&snapshot.Entries[i])); err != nil {
			return audit.NewExportError("csv", len(snapshot.Entries), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return audit.NewExportError("csv", len(snapshot.Entries), err)
	}

	return nil
}

// headerRow returns the CSV column names.
func headerRow() []string {
	return []string{
		"sequence",
		"kind",
		"timestamp",
		"exchange_sequence",
		"mode_at_request",
		"estimated_cost",
		"prompt_digest",
		"decision",
		"charged_cost",
		"before_allocated",
		"before_spent",
		"before_remaining",
		"after_allocated",
		"after_spent",
		"after_remaining",
		"mode",
		"note",
		"transport_error",
	}
}

// entryToRow flattens one entry into a CSV row.
func entryToRow(entry *audit.Entry) []string {
	var exchangeSeq, exchangeMode, estimatedCost, promptDigest string
	if entry.Exchange != nil {
		exchangeSeq = strconv.Itoa(entry.Exchange.SequenceNo)
		exchangeMode = string(entry.Exchange.Mode)
		estimatedCost = formatFloat(entry.Exchange.EstimatedCost)
		promptDigest = entry.Exchange.PromptDigest
	}

	return []string{
		strconv.Itoa(entry.Sequence),
		string(entry.Kind),
		entry.Timestamp.Format(time.RFC3339Nano),
		exchangeSeq,
		exchangeMode,
		estimatedCost,
		promptDigest,
		string(entry.Decision),
		formatFloat(entry.ChargedCost),
		formatFloat(entry.BudgetBefore.Allocated),
		formatFloat(entry.BudgetBefore.Spent),
		formatFloat(entry.BudgetBefore.Remaining),
		formatFloat(entry.BudgetAfter.Allocated),
		formatFloat(entry.BudgetAfter.Spent),
		formatFloat(entry.BudgetAfter.Remaining),
		string(entry.Mode),
		entry.Note,
		entry.TransportError,
	}
}

// formatFloat renders a float without exponent notation.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
