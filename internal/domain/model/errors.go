package model

import (
	"errors"
	"fmt"
)

// ErrUnsupportedAnchor is returned by backends that cannot express a
// comment's anchor, such as a character-level range on a line-based API.
var ErrUnsupportedAnchor = errors.New("comment anchor not supported by backend")

// ErrInvalidChangeRef is returned when a ChangeRef cannot address anything on
// the configured backend, such as a non-numeric pull request number.
var ErrInvalidChangeRef = errors.New("invalid change reference")

// InvalidRangeError reports a comment whose range fails Range.IsValid.
type InvalidRangeError struct {
	Range Range
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %s", e.Range)
}

// Field names the offending comment field.
func (e *InvalidRangeError) Field() string { return "range" }

// InconsistentAnchorError reports anchoring fields that contradict each other,
// such as a non-positive parent index or a range that does not cover the line.
type InconsistentAnchorError struct {
	FieldName string
	Reason    string
}

func (e *InconsistentAnchorError) Error() string {
	return fmt.Sprintf("inconsistent anchor: %s: %s", e.FieldName, e.Reason)
}

// Field names the offending comment field.
func (e *InconsistentAnchorError) Field() string { return e.FieldName }
