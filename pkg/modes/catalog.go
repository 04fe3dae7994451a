package modes

import (
	"fmt"
	"math"
	"sort"
)

// Catalog is the static registry of operating modes and their risk-cost
// schedules. It is a pure lookup structure with no mutation after
// construction.
type Catalog struct {
	descriptors map[Mode]Descriptor
}

// NewCatalog builds a catalog from the given descriptors.
// It returns an error for duplicate modes, unknown mode names, base costs
// below zero, or escalation factors below one. A malformed catalog is a
// fatal configuration error, not a runtime condition.
func NewCatalog(descriptors []Descriptor) (*Catalog, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("mode catalog is empty")
	}

	byMode := make(map[Mode]Descriptor, len(descriptors))
	for _, d := range descriptors {
		if rank(d.Name) < 0 {
			return nil, fmt.Errorf("unknown mode %q in catalog", d.Name)
		}
		if _, dup := byMode[d.Name]; dup {
			return nil, fmt.Errorf("duplicate mode %q in catalog", d.Name)
		}
		if d.BaseCost < 0 {
			return nil, fmt.Errorf("mode %s: base_cost must be >= 0, got %g", d.Name, d.BaseCost)
		}
		if d.EscalationFactor < 1 {
			return nil, fmt.Errorf("mode %s: escalation_factor must be >= 1, got %g", d.Name, d.EscalationFactor)
		}
		byMode[d.Name] = d
	}

	return &Catalog{descriptors: byMode}, nil
}

// DefaultCatalog returns the built-in mode schedule.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultDescriptors())
	if err != nil {
		// The built-in schedule is validated by tests; failure here is a bug.
		panic(err)
	}
	return c
}

// DefaultDescriptors returns the built-in descriptors for all four modes,
// ordered by ascending risk.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			Name:             Diagnostic,
			BaseCost:         1,
			EscalationFactor: 1.0,
			AllowPartial:     false,
			Description:      "Factual recall only. No speculation.",
		},
		{
			Name:             Exploratory,
			BaseCost:         4,
			EscalationFactor: 1.15,
			AllowPartial:     false,
			Description:      "High uncertainty tolerated. Non-consensus hypotheses explored when substantively supported.",
		},
		{
			Name:             Dialectic,
			BaseCost:         12,
			EscalationFactor: 1.25,
			AllowPartial:     true,
			Description:      "Joint hypothesis building with the model as an epistemic peer. Paradoxes held without forced resolution.",
		},
		{
			Name:             Simulation,
			BaseCost:         40,
			EscalationFactor: 1.5,
			AllowPartial:     true,
			Description:      "Maximum tolerance for paradox, abstraction, and unfalsifiable ontologies.",
		},
	}
}

// Descriptor returns the descriptor for a mode.
// Looking up a mode not present in the catalog is a programming error.
func (c *Catalog) Descriptor(m Mode) Descriptor {
	d, ok := c.descriptors[m]
	if !ok {
		panic(fmt.Sprintf("modes: mode %q not in catalog", m))
	}
	return d
}

// Has reports whether the catalog contains a descriptor for m.
func (c *Catalog) Has(m Mode) bool {
	_, ok := c.descriptors[m]
	return ok
}

// CostOf returns the base cost of a mode.
func (c *Catalog) CostOf(m Mode) float64 {
	return c.Descriptor(m).BaseCost
}

// Escalation returns the cost multiplier after priorAdmitted admitted
// exchanges in mode m within the current session.
func (c *Catalog) Escalation(m Mode, priorAdmitted int) float64 {
	if priorAdmitted <= 0 {
		return 1
	}
	return math.Pow(c.Descriptor(m).EscalationFactor, float64(priorAdmitted))
}

// EstimatedCost returns the full estimated cost of the next exchange in
// mode m after priorAdmitted admitted exchanges in that mode.
func (c *Catalog) EstimatedCost(m Mode, priorAdmitted int) float64 {
	return c.CostOf(m) * c.Escalation(m, priorAdmitted)
}

// AllowsPartial reports whether mode m permits degraded continuation when
// the remaining budget cannot cover the estimated cost.
func (c *Catalog) AllowsPartial(m Mode) bool {
	return c.Descriptor(m).AllowPartial
}

// Modes returns the catalog's modes ordered by ascending risk.
func (c *Catalog) Modes() []Mode {
	out := make([]Mode, 0, len(c.descriptors))
	for m := range c.descriptors {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })
	return out
}
