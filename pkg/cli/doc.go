// Package cli provides shared helpers for the oecs command line:
// typed command errors, shutdown signal handling, and tabular output
// for catalog and session listings.
package cli
