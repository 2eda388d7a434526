package model

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Span is a half-open range [StartIndex, EndIndex) over the runes of a
// segment's source text.
type Span struct {
	ID         string
	StartIndex int
	EndIndex   int
	CreatedAt  time.Time
	CreatedBy  string
}

// Annotation is a comment attached to a span of source text.
type Annotation struct {
	Span
	Text string
}

// Redaction suppresses a span of source text.
type Redaction struct {
	Span
	Reason *string
}

// ValidateSpan checks 0 <= start < end <= textLength.
func ValidateSpan(start, end, textLength int) error {
	switch {
	case start < 0:
		return fmt.Errorf("%w: start %d is negative", ErrInvalidSpan, start)
	case start >= end:
		return fmt.Errorf("%w: start %d is not before end %d", ErrInvalidSpan, start, end)
	case end > textLength:
		return fmt.Errorf("%w: end %d exceeds text length %d", ErrInvalidSpan, end, textLength)
	}
	return nil
}

// TextLength is the length used for span bounds: the number of runes.
func TextLength(s string) int {
	return utf8.RuneCountInString(s)
}

// Slice returns the runes of s covered by the span. The span must be valid for s.
func (sp Span) Slice(s string) string {
	r := []rune(s)
	return string(r[sp.StartIndex:sp.EndIndex])
}
