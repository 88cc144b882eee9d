package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	tests := map[string]Comment{
		"full":            fullComment(),
		"file comment":    {Path: "a.go", Side: SideRevision},
		"line zero":       {Path: "a.go", Side: SideRevision, Line: intPtr(0)},
		"primary parent":  {Path: "a.go", Side: SideParent, Line: intPtr(3)},
		"range no line":   {Path: "a.go", Side: SideRevision, Range: rangePtr(Range{1, 0, 2, 0})},
		"line at start":   {Path: "a.go", Side: SideRevision, Line: intPtr(1), Range: rangePtr(Range{1, 0, 2, 0})},
		"revision parent": {Path: "a.go", Side: SideRevision, Parent: intPtr(1)},
	}

	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Validate(c))
		})
	}
}

func TestValidate_InvalidRange(t *testing.T) {
	c := fullComment()
	c.Range = rangePtr(Range{1, 5, 1, 3})

	err := Validate(c)

	var rangeErr *InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, Range{1, 5, 1, 3}, rangeErr.Range)
	assert.Equal(t, "range", rangeErr.Field())
	assert.Contains(t, err.Error(), "startCharacter=5")
}

func TestValidate_InconsistentAnchor(t *testing.T) {
	tests := []struct {
		name  string
		c     Comment
		field string
	}{
		{"parent zero", Comment{Side: SideParent, Parent: intPtr(0)}, "parent"},
		{"parent negative", Comment{Side: SideParent, Parent: intPtr(-1)}, "parent"},
		{"unknown side", Comment{Side: "LEFT"}, "side"},
		{"empty side", Comment{}, "side"},
		{"negative line", Comment{Side: SideRevision, Line: intPtr(-2)}, "line"},
		{"line before range", Comment{Side: SideRevision, Line: intPtr(4), Range: rangePtr(Range{5, 0, 6, 0})}, "range"},
		{"line after range", Comment{Side: SideRevision, Line: intPtr(9), Range: rangePtr(Range{5, 0, 6, 0})}, "range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.c)

			var anchorErr *InconsistentAnchorError
			require.ErrorAs(t, err, &anchorErr)
			assert.Equal(t, tt.field, anchorErr.Field())
		})
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	c := fullComment()
	c.Range = rangePtr(Range{0, 0, 0, 0})
	before := *c.Range

	err := Validate(c)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedAnchor))
	assert.Equal(t, before, *c.Range)
}

func TestValidateDraft_RequiresPath(t *testing.T) {
	err := ValidateDraft(Comment{Side: SideRevision, Line: intPtr(3), Message: "hi"})

	var anchorErr *InconsistentAnchorError
	require.ErrorAs(t, err, &anchorErr)
	assert.Equal(t, "path", anchorErr.Field())

	assert.NoError(t, ValidateDraft(Comment{Side: SideRevision, Path: "a.go", Message: "hi"}))
}
