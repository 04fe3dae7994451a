package export

import (
	"context"
	"encoding/json"
	"io"

	"oecs-hq/lusaka/pkg/audit"
)

// JSONExporter exports session snapshots to JSON.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes the snapshot to w as a single JSON document.
func (e *JSONExporter) Export(ctx context.Context, snapshot *audit.Snapshot, w io.Writer) error {
	var data []byte
	var err error

	if e.Pretty {
		data, err = json.MarshalIndent(snapshot, "", "  ")
	} else {
		data, err = json.Marshal(snapshot)
	}
	if err != nil {
		return audit.NewExportError("json", len(snapshot.Entries), err)
	}

	if _, err := w.Write(data); err != nil {
		return audit.NewExportError("json", len(snapshot.Entries), err)
	}

	return nil
}

// ParseJSON reparses an exported JSON snapshot. Export followed by
// ParseJSON yields identical logical content, which is what makes the
// export format auditable offline.
func ParseJSON(r io.Reader) (*audit.Snapshot, error) {
	var snapshot audit.Snapshot

	dec := json.NewDecoder(r)
	if err := dec.Decode(&snapshot); err != nil {
		return nil, audit.NewExportError("json", 0, err)
	}

	return &snapshot, nil
}
