// Package token defines the token-tree model shared by every stage of the
// fragment pipeline.
//
// A token is one of four kinds:
//
//   - Ident   – a bare identifier (`sin_cos`, `vec2`, `fn`).
//   - Punct   – a single punctuation character with a spacing flag.
//   - Literal – a numeric or string literal, kept verbatim.
//   - Group   – a delimited subtree (`(..)`, `[..]`, `{..}`).
//
// Every token carries the source.Span it was lexed from. Stages copy spans,
// they never recompute them: the spans are what diagnostics point at once the
// emitted WGSL text is mapped back through the offset map.
//
// Sequences ([]Token) are treated as values. A stage either returns its
// input untouched or builds a new slice; Clone is used whenever a registered
// body is spliced so the registry copy is never aliased.
package token
