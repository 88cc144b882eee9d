package model

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
func rangePtr(r Range) *Range { return &r }

func fullComment() Comment {
	return Comment{
		Kind:       CommentKindPublished,
		PatchSet:   intPtr(3),
		ID:         "c0ffee01",
		Path:       "src/main.go",
		Side:       SideParent,
		Parent:     intPtr(2),
		Line:       intPtr(12),
		Range:      rangePtr(Range{StartLine: 10, StartCharacter: 4, EndLine: 12, EndCharacter: 8}),
		InReplyTo:  strPtr("deadbeef"),
		Updated:    time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC),
		Message:    "Consider extracting this.",
		Unresolved: boolPtr(true),
	}
}

func TestRange_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		r     Range
		valid bool
	}{
		{"single line forward", Range{1, 2, 1, 5}, true},
		{"single line empty", Range{4, 3, 4, 3}, true},
		{"multi line", Range{1, 0, 3, 0}, true},
		{"same line start after end", Range{1, 5, 1, 3}, false},
		{"different lines chars irrelevant", Range{1, 5, 2, 3}, true},
		{"start line zero", Range{0, 0, 1, 0}, false},
		{"start line negative", Range{-1, 0, 1, 0}, false},
		{"start character negative", Range{1, -1, 2, 0}, false},
		{"end line zero", Range{1, 0, 0, 0}, false},
		{"end character negative", Range{1, 0, 2, -1}, false},
		{"start line after end line", Range{5, 0, 4, 9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.r.IsValid())
		})
	}
}

func TestRange_IsValid_CharactersIgnoredAcrossLines(t *testing.T) {
	for sc := 0; sc < 5; sc++ {
		for ec := 0; ec < 5; ec++ {
			assert.True(t, Range{2, sc, 3, ec}.IsValid(), "sc=%d ec=%d", sc, ec)
			assert.Equal(t, sc <= ec, Range{2, sc, 2, ec}.IsValid(), "sc=%d ec=%d", sc, ec)
		}
	}
}

func TestRange_EqualAndHash(t *testing.T) {
	a := Range{1, 2, 3, 4}
	b := Range{1, 2, 3, 4}
	c := Range{1, 2, 3, 4}

	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.True(t, b.Equal(c))
	assert.True(t, a.Equal(c))
	assert.Equal(t, a.Hash(), b.Hash())

	// Swapping field values must change the hash.
	assert.NotEqual(t, Range{1, 2, 3, 4}.Hash(), Range{2, 1, 3, 4}.Hash())
	assert.NotEqual(t, Range{1, 2, 3, 4}.Hash(), Range{3, 4, 1, 2}.Hash())
	assert.False(t, a.Equal(Range{1, 2, 3, 5}))
}

func TestRange_String(t *testing.T) {
	assert.Equal(t,
		"Range{startLine=1, startCharacter=2, endLine=3, endCharacter=4}",
		Range{1, 2, 3, 4}.String(),
	)
}

func TestRange_Compare(t *testing.T) {
	ranges := []Range{
		{2, 0, 3, 0},
		{1, 5, 2, 0},
		{1, 5, 1, 9},
		{1, 0, 4, 0},
		{1, 5, 1, 7},
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Compare(ranges[j]) < 0 })

	assert.Equal(t, []Range{
		{1, 0, 4, 0},
		{1, 5, 1, 7},
		{1, 5, 1, 9},
		{1, 5, 2, 0},
		{2, 0, 3, 0},
	}, ranges)
	assert.Equal(t, 0, Range{1, 2, 3, 4}.Compare(Range{1, 2, 3, 4}))
}

func TestComment_Polarity(t *testing.T) {
	tests := []struct {
		name   string
		side   Side
		parent *int
		want   int16
	}{
		{"revision", SideRevision, nil, 1},
		{"revision ignores parent", SideRevision, intPtr(2), 1},
		{"parent absent", SideParent, nil, 0},
		{"parent three", SideParent, intPtr(3), -3},
		{"parent one", SideParent, intPtr(1), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Comment{Side: tt.side, Parent: tt.parent}
			assert.Equal(t, tt.want, c.Polarity())
		})
	}
}

func TestComment_IsFileComment(t *testing.T) {
	absent := Comment{Path: "README.md"}
	zero := Comment{Path: "README.md", Line: intPtr(0)}
	line := Comment{Path: "README.md", Line: intPtr(1)}

	// Line 0 and an absent line are distinct values but the same anchor.
	assert.False(t, absent.Equal(zero))
	assert.True(t, absent.IsFileComment())
	assert.True(t, zero.IsFileComment())
	assert.Equal(t, absent.IsFileComment(), zero.IsFileComment())
	assert.Equal(t, 0, absent.AnchorLine())
	assert.Equal(t, 0, zero.AnchorLine())

	assert.False(t, line.IsFileComment())
	assert.Equal(t, 1, line.AnchorLine())
}

func TestComment_EqualLaws(t *testing.T) {
	a := fullComment()
	b := fullComment()
	c := fullComment()

	assert.True(t, a.Equal(a), "reflexive")
	assert.True(t, a.Equal(b) && b.Equal(a), "symmetric")
	assert.True(t, a.Equal(b) && b.Equal(c) && a.Equal(c), "transitive")
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestComment_EqualComparesValuesNotPointers(t *testing.T) {
	a := fullComment()
	b := fullComment()
	require.NotSame(t, a.Range, b.Range)
	require.NotSame(t, a.Line, b.Line)

	assert.True(t, a.Equal(b))
}

func TestComment_EqualUpdatedByInstant(t *testing.T) {
	a := fullComment()
	b := fullComment()
	b.Updated = a.Updated.In(time.FixedZone("CET", 3600))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestComment_EqualKindSensitive(t *testing.T) {
	a := fullComment()
	b := fullComment()
	b.Kind = CommentKindDraft

	assert.False(t, a.Equal(b))
	assert.False(t, b.Equal(a))
}

func TestComment_EqualEachField(t *testing.T) {
	mutations := map[string]func(*Comment){
		"patch set":     func(c *Comment) { c.PatchSet = intPtr(4) },
		"patch set nil": func(c *Comment) { c.PatchSet = nil },
		"id":            func(c *Comment) { c.ID = "other" },
		"path":          func(c *Comment) { c.Path = "src/other.go" },
		"side":          func(c *Comment) { c.Side = SideRevision },
		"parent":        func(c *Comment) { c.Parent = intPtr(1) },
		"line":          func(c *Comment) { c.Line = intPtr(11) },
		"range":         func(c *Comment) { c.Range = rangePtr(Range{10, 4, 12, 9}) },
		"range nil":     func(c *Comment) { c.Range = nil },
		"in reply to":   func(c *Comment) { c.InReplyTo = strPtr("cafe") },
		"updated":       func(c *Comment) { c.Updated = c.Updated.Add(time.Nanosecond) },
		"message":       func(c *Comment) { c.Message = "LGTM" },
		"unresolved":    func(c *Comment) { c.Unresolved = boolPtr(false) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			a := fullComment()
			b := fullComment()
			mutate(&b)
			assert.False(t, a.Equal(b))
			assert.False(t, b.Equal(a))
		})
	}
}

func TestComment_HashIgnoresUnresolved(t *testing.T) {
	a := fullComment()
	b := fullComment()
	b.Unresolved = boolPtr(false)
	c := fullComment()
	c.Unresolved = nil

	assert.False(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, a.Hash(), c.Hash())
}

func TestComment_HashIgnoresVariantExtras(t *testing.T) {
	a := fullComment()
	b := fullComment()
	b.Author = &AccountInfo{AccountID: 1000096, Name: "Jane Roe"}
	b.Tag = "autogenerated:ci"

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestComment_HashDistinguishesFields(t *testing.T) {
	a := fullComment()
	b := fullComment()
	b.Message = "different"
	c := fullComment()
	c.Kind = CommentKindRobot

	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}
