package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ============================================================================
// Errors
// ============================================================================

func TestConfigErrorMessage(t *testing.T) {
	err := NewConfigError("/etc/oecs.yaml", "missing api key")
	if !strings.Contains(err.Error(), "/etc/oecs.yaml") {
		t.Errorf("message omits path: %q", err.Error())
	}

	bare := NewConfigError("", "missing api key")
	if strings.Contains(bare.Error(), " in ") {
		t.Errorf("pathless message mentions a path: %q", bare.Error())
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := errors.New("listen failed")
	err := NewCommandError("run", cause)

	if !errors.Is(err, cause) {
		t.Error("CommandError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "run") {
		t.Errorf("message omits command name: %q", err.Error())
	}
}

// ============================================================================
// Output
// ============================================================================

func TestTableAlignsColumns(t *testing.T) {
	table := NewTable("MODE", "BASE COST")
	table.AddRow("DIAGNOSTIC", "1")
	table.AddRow("SIMULATION", "40")

	var buf bytes.Buffer
	if err := table.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("rendered %d lines, want 4 (header, rule, 2 rows)", len(lines))
	}
	if !strings.HasPrefix(lines[0], "MODE") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[3], "SIMULATION") || !strings.Contains(lines[3], "40") {
		t.Errorf("row line = %q", lines[3])
	}
}

func TestWriteJSONIndented(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]int{"allocated": 100}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), "  \"allocated\": 100") {
		t.Errorf("output not indented: %q", buf.String())
	}
}
