package budget

import (
	"errors"
	"sync"
	"testing"
)

// ============================================================================
// Allocation Tests
// ============================================================================

func TestLedger_Allocate(t *testing.T) {
	ledger := NewLedger()

	if err := ledger.Allocate(100); err != nil {
		t.Fatalf("Allocate(100) error = %v", err)
	}

	if got := ledger.Allocated(); got != 100 {
		t.Errorf("Allocated() = %g, want 100", got)
	}
	if got := ledger.Remaining(); got != 100 {
		t.Errorf("Remaining() = %g, want 100", got)
	}
}

func TestLedger_Allocate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*Ledger)
		amount float64
	}{
		{"zero amount", func(l *Ledger) {}, 0},
		{"negative amount", func(l *Ledger) {}, -5},
		{"second allocation", func(l *Ledger) { _ = l.Allocate(50) }, 100},
		{
			"after spend",
			func(l *Ledger) {
				_ = l.Allocate(50)
				_ = l.Charge(10)
			},
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger()
			tt.setup(ledger)

			err := ledger.Allocate(tt.amount)
			var invalid *InvalidAllocation
			if !errors.As(err, &invalid) {
				t.Errorf("Allocate(%g) error = %v, want *InvalidAllocation", tt.amount, err)
			}
		})
	}
}

func TestLedger_TopUp(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Allocate(100)
	_ = ledger.Charge(60)

	if err := ledger.TopUp(50); err != nil {
		t.Fatalf("TopUp(50) error = %v", err)
	}

	if got := ledger.Allocated(); got != 150 {
		t.Errorf("Allocated() = %g, want 150", got)
	}
	// Top-up never touches spent.
	if got := ledger.Spent(); got != 60 {
		t.Errorf("Spent() = %g, want 60", got)
	}
	if got := ledger.Remaining(); got != 90 {
		t.Errorf("Remaining() = %g, want 90", got)
	}
}

func TestLedger_TopUp_Invalid(t *testing.T) {
	ledger := NewLedger()

	var invalid *InvalidAllocation
	if err := ledger.TopUp(10); !errors.As(err, &invalid) {
		t.Errorf("TopUp before allocation error = %v, want *InvalidAllocation", err)
	}

	_ = ledger.Allocate(100)
	if err := ledger.TopUp(0); !errors.As(err, &invalid) {
		t.Errorf("TopUp(0) error = %v, want *InvalidAllocation", err)
	}
	if err := ledger.TopUp(-1); !errors.As(err, &invalid) {
		t.Errorf("TopUp(-1) error = %v, want *InvalidAllocation", err)
	}
}

// ============================================================================
// Charge Tests
// ============================================================================

func TestLedger_Charge(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Allocate(100)

	if !ledger.CanAfford(40) {
		t.Fatal("CanAfford(40) = false, want true")
	}
	if err := ledger.Charge(40); err != nil {
		t.Fatalf("Charge(40) error = %v", err)
	}

	if got := ledger.Spent(); got != 40 {
		t.Errorf("Spent() = %g, want 40", got)
	}
	if got := ledger.Remaining(); got != 60 {
		t.Errorf("Remaining() = %g, want 60", got)
	}
}

func TestLedger_Charge_Overdraft(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Allocate(50)
	_ = ledger.Charge(30)

	err := ledger.Charge(30)
	var overdraft *OverdraftAttempt
	if !errors.As(err, &overdraft) {
		t.Fatalf("Charge(30) error = %v, want *OverdraftAttempt", err)
	}
	if overdraft.Cost != 30 || overdraft.Remaining != 20 {
		t.Errorf("overdraft = %+v, want cost 30 remaining 20", overdraft)
	}

	// Failed charge must not mutate the ledger.
	if got := ledger.Spent(); got != 30 {
		t.Errorf("Spent() after failed charge = %g, want 30", got)
	}
}

func TestLedger_Charge_Negative(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Allocate(50)

	var overdraft *OverdraftAttempt
	if err := ledger.Charge(-1); !errors.As(err, &overdraft) {
		t.Errorf("Charge(-1) error = %v, want *OverdraftAttempt", err)
	}
}

func TestLedger_Charge_DrainsToExactlyZero(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Allocate(100)

	if err := ledger.Charge(100); err != nil {
		t.Fatalf("Charge(100) error = %v", err)
	}
	if got := ledger.Remaining(); got != 0 {
		t.Errorf("Remaining() = %g, want exactly 0", got)
	}
	if !ledger.CanAfford(0) {
		t.Error("CanAfford(0) = false at zero balance, want true")
	}
	if ledger.CanAfford(0.01) {
		t.Error("CanAfford(0.01) = true at zero balance, want false")
	}
}

// ============================================================================
// Invariant Tests
// ============================================================================

func TestLedger_MonotonicSpend(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Allocate(1000)

	prev := 0.0
	for i := 0; i < 100; i++ {
		_ = ledger.Charge(7.5)
		spent := ledger.Spent()
		if spent < prev {
			t.Fatalf("spent decreased from %g to %g", prev, spent)
		}
		if allocated := ledger.Allocated(); spent > allocated {
			t.Fatalf("spent %g exceeds allocated %g", spent, allocated)
		}
		prev = spent
	}
}

func TestLedger_ConcurrentCharges(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Allocate(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = ledger.Charge(1)
			}
		}()
	}
	wg.Wait()

	if got := ledger.Spent(); got != 100 {
		t.Errorf("Spent() = %g, want 100", got)
	}

	allocated, spent := ledger.Snapshot()
	if spent > allocated {
		t.Errorf("invariant violated: spent %g > allocated %g", spent, allocated)
	}
}
