// Package diag defines the diagnostic model shared by the lexer, the
// declaration parser, the composer and the driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error.
//   - Code – numeric identifier with a stable string form (LEX1001, CMP3001 …).
//   - Message – short, actionable text.
//   - Primary – the source.Span the finding is attributed to. For grammar
//     errors this is the span recovered through the composition offset map.
//   - Notes – secondary spans ("first registered here", "did you mean …").
//
// # Emitting
//
// Producers talk to a Reporter. BagReporter collects into a Bag, which keeps
// a limit, sorts deterministically and deduplicates. DedupReporter drops
// repeated findings before they reach the next reporter.
//
// Package diag performs no IO and no formatting beyond the single-line
// "short" form; rendering lives in internal/diagfmt.
package diag
