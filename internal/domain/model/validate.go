package model

import "fmt"

// Validate checks that c is anchored consistently. It never modifies c and
// returns the first failure as an *InvalidRangeError or
// *InconsistentAnchorError.
func Validate(c Comment) error {
	switch c.Side {
	case SideRevision, SideParent:
	default:
		return &InconsistentAnchorError{
			FieldName: "side",
			Reason:    fmt.Sprintf("unknown side %q", c.Side),
		}
	}

	if c.Side == SideParent && c.Parent != nil && *c.Parent <= 0 {
		return &InconsistentAnchorError{
			FieldName: "parent",
			Reason:    fmt.Sprintf("parent index must be positive, got %d", *c.Parent),
		}
	}

	if c.Line != nil && *c.Line < 0 {
		return &InconsistentAnchorError{
			FieldName: "line",
			Reason:    fmt.Sprintf("line must not be negative, got %d", *c.Line),
		}
	}

	if c.Range == nil {
		return nil
	}
	if !c.Range.IsValid() {
		return &InvalidRangeError{Range: *c.Range}
	}
	if line := c.AnchorLine(); line != 0 && (line < c.Range.StartLine || line > c.Range.EndLine) {
		return &InconsistentAnchorError{
			FieldName: "range",
			Reason:    fmt.Sprintf("line %d outside %s", line, c.Range),
		}
	}
	return nil
}

// ValidateDraft applies Validate and additionally requires the fields a new
// draft cannot be created without.
func ValidateDraft(c Comment) error {
	if err := Validate(c); err != nil {
		return err
	}
	if c.Path == "" {
		return &InconsistentAnchorError{FieldName: "path", Reason: "path is required"}
	}
	return nil
}
