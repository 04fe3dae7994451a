package govern

import (
	"oecs-hq/lusaka/pkg/audit"
	"oecs-hq/lusaka/pkg/modes"
)

// Evaluator decides whether a prospective exchange may proceed.
// It is pure: the same catalog, mode, prior-admitted count, and remaining
// balance always produce the same Evaluation, regardless of prompt content.
type Evaluator struct {
	catalog *modes.Catalog
}

// NewEvaluator creates an Evaluator over the given mode catalog.
func NewEvaluator(catalog *modes.Catalog) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Evaluate computes the admission decision for one exchange.
//
// priorAdmitted is the count of previously admitted exchanges in this mode
// within the session; it drives cost escalation. remaining is the ledger's
// current balance.
func (e *Evaluator) Evaluate(mode modes.Mode, priorAdmitted int, remaining float64) Evaluation {
	cost := e.catalog.EstimatedCost(mode, priorAdmitted)

	if remaining >= cost {
		return Evaluation{
			Decision:      audit.DecisionAdmit,
			EstimatedCost: cost,
			Charge:        cost,
		}
	}

	// Cannot afford the full cost. Allowing modes degrade instead of
	// denying: the charge is capped at the remaining balance, draining
	// the ledger to exactly zero. This holds even at zero balance, where
	// the charge is zero and only the warning is surfaced.
	if e.catalog.AllowsPartial(mode) {
		charge := remaining
		if charge < 0 {
			charge = 0
		}
		return Evaluation{
			Decision:      audit.DecisionAdmitWithWarning,
			EstimatedCost: cost,
			Charge:        charge,
			Message:       warningMessage(mode, cost, remaining),
		}
	}

	return Evaluation{
		Decision:      audit.DecisionDenyInsufficientBudget,
		EstimatedCost: cost,
		Charge:        0,
		Message:       denialMessage(mode, cost, remaining),
	}
}
