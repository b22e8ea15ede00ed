// Package diag defines the diagnostic model shared by the parser, the
// checker and the driver.
//
// A Diagnostic carries a Severity, a stable Code (rendered as SYN2001,
// SEM3001, ...), a short message, a primary source.Span and optional notes.
// Producers emit through a Reporter; the driver usually backs it with a Bag
// that enforces the --max-diagnostics limit. Rendering lives in
// internal/diagfmt.
package diag
