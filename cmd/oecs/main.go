// Oecs is a risk budget and mode governance engine for unfiltered
// model conversations.
//
// It fronts a raw model API with an explicit governance layer:
//   - Pre-selected epistemic modes with informed-consent contracts
//   - A finite per-session risk budget with escalating exchange costs
//   - Warn-and-admit semantics instead of content refusal
//   - A tamper-evident, exportable audit trail of every decision
//
// Usage:
//
//	# Start the server with default configuration
//	oecs run
//
//	# Start with a custom configuration file
//	oecs run --config /path/to/oecs.yaml
//
//	# Validate configuration without starting
//	oecs validate
//
//	# Show the mode catalog
//	oecs modes
//
//	# Export an archived session's audit trail
//	oecs export <session-id> --format markdown
package main

func main() {
	Execute()
}
