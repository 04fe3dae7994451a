package modes

import (
	"math"
	"testing"
)

// ============================================================================
// Ordering Tests
// ============================================================================

func TestCompare_TotalOrdering(t *testing.T) {
	ordered := All()

	for i := 0; i < len(ordered); i++ {
		for j := 0; j < len(ordered); j++ {
			got := Compare(ordered[i], ordered[j])
			switch {
			case i < j && got >= 0:
				t.Errorf("Compare(%s, %s) = %d, want negative", ordered[i], ordered[j], got)
			case i == j && got != 0:
				t.Errorf("Compare(%s, %s) = %d, want 0", ordered[i], ordered[j], got)
			case i > j && got <= 0:
				t.Errorf("Compare(%s, %s) = %d, want positive", ordered[i], ordered[j], got)
			}
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{"diagnostic", "DIAGNOSTIC", Diagnostic, false},
		{"exploratory", "EXPLORATORY", Exploratory, false},
		{"dialectic", "DIALECTIC", Dialectic, false},
		{"simulation", "SIMULATION", Simulation, false},
		{"lowercase rejected", "simulation", "", true},
		{"unknown", "CONSENSUS_SAFE", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Catalog Tests
// ============================================================================

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name        string
		descriptors []Descriptor
		wantErr     bool
	}{
		{
			name:        "defaults valid",
			descriptors: DefaultDescriptors(),
			wantErr:     false,
		},
		{
			name:        "empty",
			descriptors: nil,
			wantErr:     true,
		},
		{
			name: "unknown mode",
			descriptors: []Descriptor{
				{Name: "CONSENSUS_SAFE", BaseCost: 1, EscalationFactor: 1},
			},
			wantErr: true,
		},
		{
			name: "duplicate mode",
			descriptors: []Descriptor{
				{Name: Diagnostic, BaseCost: 1, EscalationFactor: 1},
				{Name: Diagnostic, BaseCost: 2, EscalationFactor: 1},
			},
			wantErr: true,
		},
		{
			name: "negative base cost",
			descriptors: []Descriptor{
				{Name: Diagnostic, BaseCost: -1, EscalationFactor: 1},
			},
			wantErr: true,
		},
		{
			name: "escalation below one",
			descriptors: []Descriptor{
				{Name: Diagnostic, BaseCost: 1, EscalationFactor: 0.5},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.descriptors)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalog_EstimatedCost(t *testing.T) {
	catalog, err := NewCatalog([]Descriptor{
		{Name: Simulation, BaseCost: 40, EscalationFactor: 1.5, AllowPartial: true},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	tests := []struct {
		priorAdmitted int
		want          float64
	}{
		{0, 40},
		{1, 60},
		{2, 90},
		{3, 135},
	}

	for _, tt := range tests {
		got := catalog.EstimatedCost(Simulation, tt.priorAdmitted)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("EstimatedCost(SIMULATION, %d) = %g, want %g", tt.priorAdmitted, got, tt.want)
		}
	}
}

func TestCatalog_EscalationNeverDiscounts(t *testing.T) {
	catalog := DefaultCatalog()

	for _, m := range catalog.Modes() {
		prev := catalog.EstimatedCost(m, 0)
		for n := 1; n < 10; n++ {
			cost := catalog.EstimatedCost(m, n)
			if cost < prev {
				t.Errorf("mode %s: cost decreased from %g to %g at count %d", m, prev, cost, n)
			}
			prev = cost
		}
	}
}

func TestCatalog_UnknownModePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown mode lookup")
		}
	}()

	DefaultCatalog().CostOf("NOT_A_MODE")
}

func TestCatalog_AllowsPartial(t *testing.T) {
	catalog := DefaultCatalog()

	wantPartial := map[Mode]bool{
		Diagnostic:  false,
		Exploratory: false,
		Dialectic:   true,
		Simulation:  true,
	}

	for m, want := range wantPartial {
		if got := catalog.AllowsPartial(m); got != want {
			t.Errorf("AllowsPartial(%s) = %v, want %v", m, got, want)
		}
	}
}

func TestCatalog_ModesOrdered(t *testing.T) {
	got := DefaultCatalog().Modes()
	want := All()

	if len(got) != len(want) {
		t.Fatalf("Modes() returned %d modes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Modes()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

// ============================================================================
// Contract Tests
// ============================================================================

func TestContract_ContainsAcceptPhrase(t *testing.T) {
	for _, m := range All() {
		contract := Contract(m)
		if contract == "" {
			t.Errorf("Contract(%s) is empty", m)
		}
		phrase := AcceptPhrase(m)
		if phrase != "ACCEPT "+string(m) {
			t.Errorf("AcceptPhrase(%s) = %q", m, phrase)
		}
		if SystemPrompt(m) == "" {
			t.Errorf("SystemPrompt(%s) is empty", m)
		}
	}
}
