package jdoc

import "fmt"

// SpanReason identifies why an element span is invalid.
type SpanReason string

// Span validation reasons.
const (
	ErrSpanOutOfRange    SpanReason = "out_of_range"
	ErrSpanUnordered     SpanReason = "unordered"
	ErrSpanOverlap       SpanReason = "overlap"
	ErrSpanOutsideParent SpanReason = "outside_parent"
	ErrSpanBadParent     SpanReason = "bad_parent"
)

// SpanError describes a single invalid span.
type SpanError struct {
	Index  int // Index of the offending span
	Other  int // Index of the span it conflicts with, -1 if none
	Reason SpanReason
}

// Error implements the error interface.
func (e SpanError) Error() string {
	switch e.Reason {
	case ErrSpanOutOfRange:
		return fmt.Sprintf("span %d: offsets outside the text", e.Index)
	case ErrSpanUnordered:
		return fmt.Sprintf("span %d: starts before span %d", e.Index, e.Other)
	case ErrSpanOverlap:
		return fmt.Sprintf("span %d: overlaps sibling span %d", e.Index, e.Other)
	case ErrSpanOutsideParent:
		return fmt.Sprintf("span %d: not strictly inside parent span %d", e.Index, e.Other)
	case ErrSpanBadParent:
		return fmt.Sprintf("span %d: parent index %d is invalid", e.Index, e.Other)
	default:
		return fmt.Sprintf("span %d: invalid", e.Index)
	}
}

// ValidateSpans checks the ordering and nesting invariants of spans over a
// text of length n. Returns nil if the spans are valid.
func ValidateSpans(n int, spans []ElementSpan) []SpanError {
	var errs []SpanError
	for i, s := range spans {
		if s.Start < 0 || s.Start > s.End || s.End > n || s.SignatureEnd < s.Start || s.SignatureEnd > s.End {
			errs = append(errs, SpanError{Index: i, Other: -1, Reason: ErrSpanOutOfRange})
			continue
		}
		if i > 0 && s.Start < spans[i-1].Start {
			errs = append(errs, SpanError{Index: i, Other: i - 1, Reason: ErrSpanUnordered})
		}
		if s.Parent != -1 {
			if s.Parent < 0 || s.Parent >= i {
				errs = append(errs, SpanError{Index: i, Other: s.Parent, Reason: ErrSpanBadParent})
				continue
			}
			p := spans[s.Parent]
			if s.Start <= p.Start || s.End >= p.End {
				errs = append(errs, SpanError{Index: i, Other: s.Parent, Reason: ErrSpanOutsideParent})
			}
		}
		// The closest earlier sibling must end before this span starts.
		for j := i - 1; j >= 0; j-- {
			if spans[j].Parent == s.Parent {
				if spans[j].End > s.Start {
					errs = append(errs, SpanError{Index: i, Other: j, Reason: ErrSpanOverlap})
				}
				break
			}
		}
	}
	return errs
}
