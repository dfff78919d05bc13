package parser

import "errors"

var (
	// ErrEmptyInput means the normalized receipt text had no content.
	ErrEmptyInput = errors.New("receipt text is empty")
	// ErrAmountNotFound means no amount-shaped token was located. Amount is
	// the one mandatory field, so this fails the whole parse.
	ErrAmountNotFound = errors.New("no amount found in receipt text")
)

// ParseError is the terminal failure emitted by Parse. It retains the
// verbatim input so the caller can surface it for manual entry; losing the
// raw text on failure is not allowed at any layer.
type ParseError struct {
	Err     error
	RawText string
}

func (e *ParseError) Error() string { return e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }
