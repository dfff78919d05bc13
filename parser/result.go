package parser

// Confidence flags whether an extracted value needed a disambiguation
// tie-break. Low confidence is informational, never an error.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Span is the byte range in the normalized text that an extractor matched.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Result is the outcome of a single field extractor: a value or "absent",
// plus the matched span and a confidence flag.
type Result[T any] struct {
	Value      T
	Found      bool
	Span       Span
	Confidence Confidence
}

func found[T any](value T, span Span, conf Confidence) Result[T] {
	return Result[T]{Value: value, Found: true, Span: span, Confidence: conf}
}

func absent[T any]() Result[T] {
	return Result[T]{Confidence: ConfidenceHigh}
}
