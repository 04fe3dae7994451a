package recorder

import (
	"context"
	"testing"
	"time"

	"oecs-hq/lusaka/pkg/audit"
	"oecs-hq/lusaka/pkg/audit/storage"
	"oecs-hq/lusaka/pkg/modes"
)

// ============================================================================
// Sequence Tests
// ============================================================================

func TestRecorder_ContiguousSequence(t *testing.T) {
	r := NewRecorder("sess-1", nil, nil)

	for i := 0; i < 25; i++ {
		r.Append(&audit.Entry{Kind: audit.KindExchange})
	}

	entries := r.Export()
	if len(entries) != 25 {
		t.Fatalf("Export() returned %d entries, want 25", len(entries))
	}
	for i, e := range entries {
		if e.Sequence != i+1 {
			t.Errorf("entry %d has sequence %d, want %d", i, e.Sequence, i+1)
		}
		if e.SessionID != "sess-1" {
			t.Errorf("entry %d has session %q, want sess-1", i, e.SessionID)
		}
		if e.ID == "" {
			t.Errorf("entry %d has no ID", i)
		}
		if e.Timestamp.IsZero() {
			t.Errorf("entry %d has zero timestamp", i)
		}
	}
}

func TestRecorder_AppendOnly(t *testing.T) {
	r := NewRecorder("sess-1", nil, nil)

	first := r.Append(&audit.Entry{Kind: audit.KindExchange, Note: "first"})
	r.Append(&audit.Entry{Kind: audit.KindModeChange, Mode: modes.Simulation})

	// Mutating the snapshot must not reach the trail.
	exported := r.Export()
	exported[0].Note = "tampered"

	fresh := r.Export()
	if fresh[0].Note != "first" {
		t.Errorf("trail entry mutated through export copy: note = %q", fresh[0].Note)
	}
	if fresh[0].Sequence != first.Sequence {
		t.Errorf("sequence changed from %d to %d", first.Sequence, fresh[0].Sequence)
	}

	// Length only grows.
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRecorder_Last(t *testing.T) {
	r := NewRecorder("sess-1", nil, nil)

	if _, ok := r.Last(); ok {
		t.Error("Last() on empty trail reported an entry")
	}

	r.Append(&audit.Entry{Kind: audit.KindExchange})
	r.Append(&audit.Entry{Kind: audit.KindTopUp})

	last, ok := r.Last()
	if !ok {
		t.Fatal("Last() reported no entry")
	}
	if last.Kind != audit.KindTopUp || last.Sequence != 2 {
		t.Errorf("Last() = kind %s sequence %d, want top_up 2", last.Kind, last.Sequence)
	}
}

// ============================================================================
// Durable Mirror Tests
// ============================================================================

func TestRecorder_MirrorsToStorage(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder("sess-1", store, nil)

	for i := 0; i < 5; i++ {
		r.Append(&audit.Entry{Kind: audit.KindExchange, Decision: audit.DecisionAdmit})
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	count, err := store.Count(context.Background(), &audit.Query{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 5 {
		t.Errorf("stored %d entries, want 5", count)
	}
}

func TestRecorder_CloseIdempotent(t *testing.T) {
	r := NewRecorder("sess-1", storage.NewMemoryStorage(), &Config{
		AsyncBuffer:  10,
		WriteTimeout: time.Second,
	})
	r.Append(&audit.Entry{Kind: audit.KindExchange})

	if err := r.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

// ============================================================================
// Digest Tests
// ============================================================================

func TestPromptDigest(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		empty  bool
	}{
		{"empty prompt", "", true},
		{"simple prompt", "is reality a construct", false},
		{"unicode prompt", "παράδοξο", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PromptDigest(tt.prompt)
			if tt.empty {
				if got != "" {
					t.Errorf("PromptDigest(%q) = %q, want empty", tt.prompt, got)
				}
				return
			}
			if len(got) != 64 {
				t.Errorf("PromptDigest(%q) length = %d, want 64 hex chars", tt.prompt, len(got))
			}
			// Digests are stable and content-addressed.
			if again := PromptDigest(tt.prompt); again != got {
				t.Errorf("digest not stable: %q vs %q", got, again)
			}
		})
	}

	if PromptDigest("a") == PromptDigest("b") {
		t.Error("distinct prompts produced identical digests")
	}
}
