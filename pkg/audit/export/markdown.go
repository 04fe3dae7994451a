package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"oecs-hq/lusaka/pkg/audit"
)

// MarkdownExporter renders a session snapshot as a human-readable session
// log. This is the format handed to users downloading their own trail.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export writes the snapshot to w as Markdown.
func (e *MarkdownExporter) Export(ctx context.Context, snapshot *audit.Snapshot, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("# OECS Session Log\n\n")
	fmt.Fprintf(&sb, "- **Session**: %s\n", snapshot.SessionID)
	fmt.Fprintf(&sb, "- **Mode**: %s\n", snapshot.Mode)
	fmt.Fprintf(&sb, "- **State**: %s\n", snapshot.State)
	fmt.Fprintf(&sb, "- **Budget**: allocated %g, spent %g, remaining %g\n",
		snapshot.Balance.Allocated, snapshot.Balance.Spent, snapshot.Balance.Remaining)
	fmt.Fprintf(&sb, "- **Exported**: %s\n\n", snapshot.ExportedAt.Format(time.RFC3339))

	sb.WriteString("## Trail\n\n")

	for i := range snapshot.Entries {
		writeEntry(&sb, &snapshot.Entries[i])
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return audit.NewExportError("markdown", len(snapshot.Entries), err)
	}

	return nil
}

// writeEntry renders one audit entry as a Markdown section.
func writeEntry(sb *strings.Builder, entry *audit.Entry) {
	switch entry.Kind {
	case audit.KindExchange:
		fmt.Fprintf(sb, "### %d. Exchange — %s\n\n", entry.Sequence, entry.Decision)
		if entry.Exchange != nil {
			fmt.Fprintf(sb, "- Mode at request: %s\n", entry.Exchange.Mode)
			fmt.Fprintf(sb, "- Estimated cost: %g\n", entry.Exchange.EstimatedCost)
			fmt.Fprintf(sb, "- Prompt digest: `%s`\n", entry.Exchange.PromptDigest)
		}
		fmt.Fprintf(sb, "- Charged: %g\n", entry.ChargedCost)

	case audit.KindModeChange:
		fmt.Fprintf(sb, "### %d. Mode change → %s\n\n", entry.Sequence, entry.Mode)

	case audit.KindTopUp:
		fmt.Fprintf(sb, "### %d. Budget top-up\n\n", entry.Sequence)

	default:
		fmt.Fprintf(sb, "### %d. %s\n\n", entry.Sequence, entry.Kind)
	}

	fmt.Fprintf(sb, "- Budget before: %g/%g (remaining %g)\n",
		entry.BudgetBefore.Spent, entry.BudgetBefore.Allocated, entry.BudgetBefore.Remaining)
	fmt.Fprintf(sb, "- Budget after: %g/%g (remaining %g)\n",
		entry.BudgetAfter.Spent, entry.BudgetAfter.Allocated, entry.BudgetAfter.Remaining)
	fmt.Fprintf(sb, "- Time: %s\n", entry.Timestamp.Format(time.RFC3339))

	if entry.Note != "" {
		fmt.Fprintf(sb, "- Note: %s\n", entry.Note)
	}
	if entry.TransportError != "" {
		fmt.Fprintf(sb, "- Transport error: %s\n", entry.TransportError)
	}

	sb.WriteString("\n")
}
