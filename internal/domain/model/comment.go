package model

import (
	"fmt"
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// Side identifies which side of a diff a comment is anchored to.
type Side string

const (
	SideRevision Side = "REVISION" // The patch set under review.
	SideParent   Side = "PARENT"   // The base commit the patch set is diffed against.
)

// CommentKind discriminates the concrete comment variants. Comments of
// different kinds are never equal, even when every shared field matches.
type CommentKind string

const (
	CommentKindPublished CommentKind = "published"
	CommentKindDraft     CommentKind = "draft"
	CommentKindRobot     CommentKind = "robot"
)

// Range is a character span within a file. Lines are 1-based and characters
// are 0-based; the start position is inclusive and the end position exclusive.
type Range struct {
	StartLine      int
	StartCharacter int
	EndLine        int
	EndCharacter   int
}

// IsValid reports whether r describes a well-formed span. When the span sits
// on a single line the start character must not come after the end character;
// across lines the characters may relate in any way.
func (r Range) IsValid() bool {
	return r.StartLine > 0 &&
		r.StartCharacter >= 0 &&
		r.EndLine > 0 &&
		r.EndCharacter >= 0 &&
		r.StartLine <= r.EndLine &&
		(r.StartLine != r.EndLine || r.StartCharacter <= r.EndCharacter)
}

// Equal reports whether r and o describe the same span.
func (r Range) Equal(o Range) bool {
	return r == o
}

// Hash returns an order-sensitive hash of the four bounds.
func (r Range) Hash() uint64 {
	// hashstructure only fails on channels, funcs and the like; Range holds ints.
	h, _ := hashstructure.Hash(r, hashstructure.FormatV2, nil)
	return h
}

// Compare orders spans by start line, start character, end line and end
// character, in that order. It returns -1, 0 or +1.
func (r Range) Compare(o Range) int {
	switch {
	case r.StartLine != o.StartLine:
		return cmpInt(r.StartLine, o.StartLine)
	case r.StartCharacter != o.StartCharacter:
		return cmpInt(r.StartCharacter, o.StartCharacter)
	case r.EndLine != o.EndLine:
		return cmpInt(r.EndLine, o.EndLine)
	default:
		return cmpInt(r.EndCharacter, o.EndCharacter)
	}
}

func (r Range) String() string {
	return fmt.Sprintf("Range{startLine=%d, startCharacter=%d, endLine=%d, endCharacter=%d}",
		r.StartLine, r.StartCharacter, r.EndLine, r.EndCharacter)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Comment is an inline review comment anchored to a file, a line, or a range
// within a patch set. Construction does not validate; call Validate before
// sending a comment anywhere.
type Comment struct {
	Kind CommentKind

	PatchSet   *int // Only set where comments from several patch sets are mixed.
	ID         string
	Path       string
	Side       Side
	Parent     *int // 1-based merge parent index; only meaningful on SideParent.
	Line       *int // nil or 0 marks a file comment; real lines start at 1.
	Range      *Range
	InReplyTo  *string
	Updated    time.Time
	Message    string
	Unresolved *bool

	// Variant-specific fields. They do not take part in Equal or Hash.
	Author     *AccountInfo
	Tag        string
	RobotID    string
	RobotRunID string
}

// Polarity encodes Side and Parent as a single signed integer for legacy
// protocols: 1 for the revision side, the negated parent index for a merge
// parent, and 0 for the primary parent.
func (c Comment) Polarity() int16 {
	if c.Side == SideParent {
		if c.Parent == nil {
			return 0
		}
		return -int16(*c.Parent)
	}
	return 1
}

// IsFileComment reports whether c is attached to the file as a whole. An
// absent line and line 0 are treated the same.
func (c Comment) IsFileComment() bool {
	return c.Line == nil || *c.Line == 0
}

// AnchorLine returns the line c is attached to, or 0 for a file comment.
func (c Comment) AnchorLine() int {
	if c.Line == nil {
		return 0
	}
	return *c.Line
}

// Equal reports whether c and o are the same comment. Kinds must match, then
// every anchoring and content field is compared, Unresolved included.
func (c Comment) Equal(o Comment) bool {
	return c.Kind == o.Kind &&
		equalPtr(c.PatchSet, o.PatchSet) &&
		c.ID == o.ID &&
		c.Path == o.Path &&
		c.Side == o.Side &&
		equalPtr(c.Parent, o.Parent) &&
		equalPtr(c.Line, o.Line) &&
		equalRange(c.Range, o.Range) &&
		equalPtr(c.InReplyTo, o.InReplyTo) &&
		c.Updated.Equal(o.Updated) &&
		c.Message == o.Message &&
		equalPtr(c.Unresolved, o.Unresolved)
}

// commentKey is the hashed projection of a Comment. Unresolved is left out,
// so two comments differing only in resolution state hash the same.
type commentKey struct {
	Kind      CommentKind
	PatchSet  *int
	ID        string
	Path      string
	Side      Side
	Parent    *int
	Line      *int
	Range     *Range
	InReplyTo *string
	Updated   int64
	Message   string
}

// Hash returns a hash consistent with Equal.
func (c Comment) Hash() uint64 {
	key := commentKey{
		Kind:      c.Kind,
		PatchSet:  c.PatchSet,
		ID:        c.ID,
		Path:      c.Path,
		Side:      c.Side,
		Parent:    c.Parent,
		Line:      c.Line,
		Range:     c.Range,
		InReplyTo: c.InReplyTo,
		Updated:   c.Updated.UnixNano(),
		Message:   c.Message,
	}
	h, _ := hashstructure.Hash(key, hashstructure.FormatV2, nil)
	return h
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalRange(a, b *Range) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
