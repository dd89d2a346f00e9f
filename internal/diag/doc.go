// Package diag defines the diagnostic model shared by all analysis passes.
//
// # Data model
//
// Diagnostic is inert data. It contains:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric identifier whose thousands digit is the category
//     (1xxx scope, 2xxx type, 3xxx modifier, 4xxx configuration). ID() gives
//     the stable string form (SCP1001, TYP2003, ...).
//   - Args: positional arguments for the code's message template.
//   - Message: the template rendered by Format.
//   - Primary: the source.Span the finding points at.
//   - Notes: optional secondary spans.
//   - Suggestion: optional hint with its own code and arguments.
//
// Format and FormatSuggestion are pure functions of (code, args); there is
// no mutable formatting state.
//
// # Emitting diagnostics
//
// Passes report through a Reporter. ReportError/ReportWarning return a
// ReportBuilder that can attach notes and a suggestion before Emit.
// BagReporter collects into a Bag (sort, dedup, limit, counts).
//
// Batch runs collect everything and decide afterwards. Interactive runs wrap
// the sink in RaiseReporter, which panics with *Raised on the first error;
// the pipeline session recovers it at the statement boundary and hands it to
// the caller as an error. No other code recovers *Raised.
package diag
