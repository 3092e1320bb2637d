// Package output renders tool results and keeps responses within limits.
//
// Results are rendered as pretty-printed JSON, YAML or a bordered text
// table. YAML is produced from the JSON encoding so field names and order
// match across formats. Values that do not implement [Tabular] are
// flattened into path/value rows for the table format.
//
// # Limits
//
// Query matches are capped per request ([EffectiveLimit], [TruncateGeneric])
// before rendering, which reports a [TruncationWarning]. The byte budget
// cuts table output ([TruncateText]) but never JSON or YAML: those stay
// parseable and fail with [ErrResponseTooLarge] when they do not fit.
//
// # Secret masking
//
// [Masker] replaces values under sensitive keys, such as an external
// database dataSource, with "***REDACTED***" before they are returned.
//
//	r := output.NewRenderer(output.DefaultConfig())
//	text, warning, err := r.Render(result, output.FormatYAML)
package output
