package modes

import "fmt"

// Mode identifies an epistemic operating mode.
type Mode string

const (
	// Diagnostic restricts the model to factual recall with no speculation.
	Diagnostic Mode = "DIAGNOSTIC"

	// Exploratory tolerates high uncertainty and non-consensus hypotheses.
	Exploratory Mode = "EXPLORATORY"

	// Dialectic sustains joint hypothesis building and holds paradoxes
	// without forced resolution.
	Dialectic Mode = "DIALECTIC"

	// Simulation has maximum tolerance for paradox, abstraction, and
	// unfalsifiable ontologies.
	Simulation Mode = "SIMULATION"
)

// All returns every known mode ordered by ascending risk.
func All() []Mode {
	return []Mode{Diagnostic, Exploratory, Dialectic, Simulation}
}

// Parse converts a mode name to a Mode. It accepts the exact uppercase
// names used on the wire ("DIAGNOSTIC", "EXPLORATORY", ...).
func Parse(name string) (Mode, error) {
	switch Mode(name) {
	case Diagnostic, Exploratory, Dialectic, Simulation:
		return Mode(name), nil
	}
	return "", fmt.Errorf("unknown mode %q", name)
}

// rank returns the position of a mode in the total risk ordering.
// Unknown modes rank below every known mode.
func rank(m Mode) int {
	switch m {
	case Diagnostic:
		return 0
	case Exploratory:
		return 1
	case Dialectic:
		return 2
	case Simulation:
		return 3
	}
	return -1
}

// Compare orders two modes by risk. It returns a negative value if a is
// lower risk than b, zero if equal, and a positive value otherwise.
func Compare(a, b Mode) int {
	return rank(a) - rank(b)
}

// Descriptor is the immutable description of one mode. Descriptors never
// change for the lifetime of a session.
type Descriptor struct {
	// Name is the mode identifier.
	Name Mode `yaml:"name" json:"name"`

	// BaseCost is the risk cost of the first exchange in this mode.
	BaseCost float64 `yaml:"base_cost" json:"base_cost"`

	// EscalationFactor is the multiplier applied per prior admitted
	// exchange in this mode. Must be >= 1.
	EscalationFactor float64 `yaml:"escalation_factor" json:"escalation_factor"`

	// AllowPartial permits degraded continuation when the remaining
	// budget cannot cover the full estimated cost. In allowing modes the
	// exchange is admitted with a warning and the charge drains the
	// ledger to exactly zero instead of being rejected.
	AllowPartial bool `yaml:"allow_partial" json:"allow_partial"`

	// Description is a short human-readable summary.
	Description string `yaml:"description" json:"description"`
}
