package cmd

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Validator checks a parsed value. A returned rejection makes the token
// invalid for the parameter; any other error aborts parsing.
type Validator func(ctx context.Context, value any, p Param) error

// Matches rejects string values that do not match pattern. It panics if
// pattern does not compile.
func Matches(pattern string) Validator {
	re := regexp.MustCompile(pattern)
	return func(_ context.Context, value any, p Param) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("cmd: %s: pattern check on %T", p.Name, value)
		}
		if !re.MatchString(s) {
			return Rejectf("%s must match %s", p.Name, pattern)
		}
		return nil
	}
}

// Range rejects numbers outside [min, max].
func Range(min, max float64) Validator {
	return func(_ context.Context, value any, p Param) error {
		var n float64
		switch v := value.(type) {
		case int:
			n = float64(v)
		case int64:
			n = float64(v)
		case float64:
			n = v
		default:
			return fmt.Errorf("cmd: %s: range check on %T", p.Name, value)
		}
		if n < min || n > max {
			return Rejectf("%s must be between %g and %g", p.Name, min, max)
		}
		return nil
	}
}

// Length rejects strings whose rune count is outside [min, max]. A max of
// zero means no upper bound.
func Length(min, max int) Validator {
	return func(_ context.Context, value any, p Param) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("cmd: %s: length check on %T", p.Name, value)
		}
		n := utf8.RuneCountInString(s)
		if n < min || (max > 0 && n > max) {
			return Rejectf("%s has length %d", p.Name, n)
		}
		return nil
	}
}

// OneOf accepts only the listed strings, compared case-insensitively.
func OneOf(values ...string) Validator {
	return func(_ context.Context, value any, p Param) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("cmd: %s: choice check on %T", p.Name, value)
		}
		fold := cases.Fold()
		key := fold.String(s)
		for _, v := range values {
			if fold.String(v) == key {
				return nil
			}
		}
		return Rejectf("%s must be one of %v", p.Name, values)
	}
}
