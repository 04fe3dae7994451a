// Package modes defines the catalog of epistemic operating modes.
//
// # Overview
//
// Every session runs in exactly one mode at a time. A mode is an immutable
// descriptor carrying a base risk cost, an escalation factor applied to
// repeated exchanges in the same mode, and a continuation policy that
// decides what happens when the session's risk budget cannot cover the
// next exchange.
//
// The four modes, ordered by ascending risk:
//
//   - DIAGNOSTIC: factual recall, no speculation
//   - EXPLORATORY: high uncertainty, non-consensus hypotheses
//   - DIALECTIC: joint hypothesis building, paradox tolerant
//   - SIMULATION: radical ontology, maximum paradox tolerance
//
// # Escalation
//
// Repeated high-risk exchanges within one session cost progressively more:
//
//	cost = BaseCost × EscalationFactor^(prior admitted exchanges in mode)
//
// # Usage
//
//	catalog := modes.DefaultCatalog()
//	cost := catalog.CostOf(modes.Simulation)          // 40
//	cost = catalog.EstimatedCost(modes.Simulation, 1) // 60 (40 × 1.5)
//
// # Immutability
//
// A Catalog never mutates after construction. Looking up a mode the catalog
// does not contain is a programming error and panics.
package modes
