package cst

import "fmt"

// Kind identifies a stable diagnostic kind emitted anywhere in the pipeline
// (lexer, builder, DOM, schema compiler, validator). Kinds are part of the
// wire contract described by the host interface and must not be renamed.
type Kind string

// Lexing diagnostic kinds.
const (
	KindUnterminatedString Kind = "UnterminatedString"
	KindInvalidEscape      Kind = "InvalidEscape"
	KindInvalidNumber      Kind = "InvalidNumber"
	KindUnexpectedChar     Kind = "UnexpectedChar"
)

// Parsing diagnostic kinds.
const (
	KindUnexpectedToken          Kind = "UnexpectedToken"
	KindMissingDelimiter         Kind = "MissingDelimiter"
	KindTrailingAnnotationInValue Kind = "TrailingAnnotationInValue"
	KindAnnotationInsideAnnotation Kind = "AnnotationInsideAnnotation"
)

// DOM diagnostic kinds.
const (
	KindDuplicateKey    Kind = "DuplicateKey"
	KindNumberOutOfRange Kind = "NumberOutOfRange"
	KindMissingValue    Kind = "MissingValue"
)

// Schema compile diagnostic kinds.
const (
	KindInvalidSchemaAnnotation Kind = "InvalidSchemaAnnotation"
	KindUnresolvedRef           Kind = "UnresolvedRef"
	KindBadPatternRegex         Kind = "BadPatternRegex"
)

// Validation diagnostic kinds.
const (
	KindTypeMismatch    Kind = "TypeMismatch"
	KindMissingRequired Kind = "MissingRequired"
	KindUnknownProperty Kind = "UnknownProperty"
	KindConstraintFailed Kind = "ConstraintFailed"
	KindOneOfFailed     Kind = "OneOfFailed"
)

// Position is a byte offset paired with 0-indexed line/column. Column counts
// UTF-8 code units (bytes) from the start of the line, per the source
// position contract.
type Position struct {
	Index  int `json:"index"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a half-open [Start, End) span over source text.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Cover returns the smallest range containing both r and other.
func (r Range) Cover(other Range) Range {
	out := r
	if other.Start.Index < out.Start.Index {
		out.Start = other.Start
	}
	if other.End.Index > out.End.Index {
		out.End = other.End
	}
	return out
}

// Diagnostic is a stable, source-anchored error or warning record. Every
// stage of the pipeline (lexer, builder, DOM, schema compiler, validator)
// accumulates diagnostics instead of aborting, per the propagation policy in
// the error handling design.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Range   Range  `json:"range"`
	// SchemaPath is non-empty for validator diagnostics: the path within the
	// compiled schema that failed (e.g. "properties.value.properties.integer").
	SchemaPath string `json:"schemaPath,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		"<source>", d.Range.Start.Line+1, d.Range.Start.Column+1, d.Kind, d.Message)
}

// Error implements the error interface so a Diagnostic can be returned or
// wrapped directly where a single fatal error is required.
func (d Diagnostic) Error() string { return d.String() }
