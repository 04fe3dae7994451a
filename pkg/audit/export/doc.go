// Package export serializes session audit snapshots for offline audit.
//
// All formats are transparent and field-labeled so a third party can
// reconstruct every decision and the exact ledger state before and after
// it without access to the running process:
//
//   - JSON: canonical format; round-trips losslessly via ParseJSON
//   - CSV: one row per audit entry for spreadsheet analysis
//   - Markdown: the human-readable session log
package export
