package cmd

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Outcome tags a parse Result.
type Outcome int

const (
	Success Outcome = iota
	NotEnoughParameters
	TooManyParameters
	InvalidParameter
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case NotEnoughParameters:
		return "not enough parameters"
	case TooManyParameters:
		return "too many parameters"
	case InvalidParameter:
		return "invalid parameter"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the outcome of parsing a body against a parameter list. Args is
// set only on Success; Position (1-based) and Preview only on
// InvalidParameter.
type Result struct {
	Outcome  Outcome
	Args     Args
	Position int
	Preview  string
}

func (r Result) OK() bool { return r.Outcome == Success }

// Describe renders a one-line, user-facing explanation of a failed result.
func Describe(r Result) string {
	switch r.Outcome {
	case NotEnoughParameters:
		return "Not enough parameters."
	case TooManyParameters:
		return "Too many parameters."
	case InvalidParameter:
		return fmt.Sprintf("Parameter %d is invalid: `%s`.", r.Position, r.Preview)
	}
	return ""
}

// ResolveError reports that a type parser failed for reasons other than bad
// input (cancellation, network errors). It is never turned into a Result.
type ResolveError struct {
	Param string
	Token Token
	Err   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s from %q: %v", e.Param, e.Token.Value, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// RejectError is returned by type parsers and validators for input that does
// not fit a parameter.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return e.Reason }

// Reject returns a rejection with the given reason.
func Reject(reason string) error { return &RejectError{Reason: reason} }

// Rejectf formats a rejection reason.
func Rejectf(format string, args ...any) error {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err, or an error it wraps, is a rejection.
func IsRejection(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

// DefaultPreviewLength is the number of runes kept when previewing an invalid
// token.
const DefaultPreviewLength = 24

var fullPreview = regexp.MustCompile(`^(?:<(?:@!?|@&|#)\d+>|\d{15,21})$`)

// Preview shortens raw for display. Mentions and snowflake IDs are kept whole.
func Preview(raw string, max int) string {
	if max <= 0 || fullPreview.MatchString(raw) || utf8.RuneCountInString(raw) <= max {
		return raw
	}
	var b strings.Builder
	n := 0
	for _, r := range raw {
		if n == max {
			break
		}
		b.WriteRune(r)
		n++
	}
	b.WriteString("…")
	return b.String()
}
