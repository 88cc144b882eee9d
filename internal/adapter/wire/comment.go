package wire

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
)

// TimestampLayout is the server's timestamp format. Values are always UTC.
const TimestampLayout = "2006-01-02 15:04:05.000000000"

// timestampParseLayout accepts any number of fractional digits, including none.
const timestampParseLayout = "2006-01-02 15:04:05.999999999"

// Timestamp is a time.Time in the server's quoted timestamp format.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := time.ParseInLocation(timestampParseLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	*t = Timestamp(parsed)
	return nil
}

// RangeJSON is the wire form of model.Range.
type RangeJSON struct {
	StartLine      int `json:"start_line"`
	StartCharacter int `json:"start_character"`
	EndLine        int `json:"end_line"`
	EndCharacter   int `json:"end_character"`
}

// CommentJSON is the wire form of model.Comment. Optional fields are omitted
// rather than sent as null.
type CommentJSON struct {
	PatchSet   *int       `json:"patch_set,omitempty"`
	ID         string     `json:"id,omitempty"`
	Path       string     `json:"path,omitempty"`
	Side       string     `json:"side,omitempty"`
	Parent     *int       `json:"parent,omitempty"`
	Line       *int       `json:"line,omitempty"`
	Range      *RangeJSON `json:"range,omitempty"`
	InReplyTo  *string    `json:"in_reply_to,omitempty"`
	Updated    *Timestamp `json:"updated,omitempty"`
	Message    string     `json:"message,omitempty"`
	Unresolved *bool      `json:"unresolved,omitempty"`

	Author     *model.AccountInfo `json:"author,omitempty"`
	Tag        string             `json:"tag,omitempty"`
	RobotID    string             `json:"robot_id,omitempty"`
	RobotRunID string             `json:"robot_run_id,omitempty"`
}

// FromComment converts a domain comment to its wire form. An empty side is
// written as REVISION, the value it decodes to.
func FromComment(c model.Comment) CommentJSON {
	side := c.Side
	if side == "" {
		side = model.SideRevision
	}
	out := CommentJSON{
		PatchSet:   c.PatchSet,
		ID:         c.ID,
		Path:       c.Path,
		Side:       string(side),
		Parent:     c.Parent,
		Line:       c.Line,
		InReplyTo:  c.InReplyTo,
		Message:    c.Message,
		Unresolved: c.Unresolved,
		Author:     c.Author,
		Tag:        c.Tag,
		RobotID:    c.RobotID,
		RobotRunID: c.RobotRunID,
	}
	if c.Range != nil {
		out.Range = &RangeJSON{
			StartLine:      c.Range.StartLine,
			StartCharacter: c.Range.StartCharacter,
			EndLine:        c.Range.EndLine,
			EndCharacter:   c.Range.EndCharacter,
		}
	}
	if !c.Updated.IsZero() {
		ts := Timestamp(c.Updated)
		out.Updated = &ts
	}
	return out
}

// ToComment converts the wire form to a domain comment of the given kind.
// An omitted side means the revision side.
func (j CommentJSON) ToComment(kind model.CommentKind) model.Comment {
	c := model.Comment{
		Kind:       kind,
		PatchSet:   j.PatchSet,
		ID:         j.ID,
		Path:       j.Path,
		Side:       model.Side(j.Side),
		Parent:     j.Parent,
		Line:       j.Line,
		InReplyTo:  j.InReplyTo,
		Message:    j.Message,
		Unresolved: j.Unresolved,
		Author:     j.Author,
		Tag:        j.Tag,
		RobotID:    j.RobotID,
		RobotRunID: j.RobotRunID,
	}
	if c.Side == "" {
		c.Side = model.SideRevision
	}
	if j.Range != nil {
		c.Range = &model.Range{
			StartLine:      j.Range.StartLine,
			StartCharacter: j.Range.StartCharacter,
			EndLine:        j.Range.EndLine,
			EndCharacter:   j.Range.EndCharacter,
		}
	}
	if j.Updated != nil {
		c.Updated = time.Time(*j.Updated)
	}
	return c
}

// DecodeComment decodes a single comment of the given kind.
func DecodeComment(data []byte, kind model.CommentKind) (model.Comment, error) {
	j, err := Decode[CommentJSON](data)
	if err != nil {
		return model.Comment{}, err
	}
	return j.ToComment(kind), nil
}

// DecodeCommentMap decodes a path-keyed comment listing. Entries in such
// listings omit their path, so it is filled in from the key.
func DecodeCommentMap(data []byte, kind model.CommentKind) ([]model.Comment, error) {
	byPath, err := Decode[map[string][]CommentJSON](data)
	if err != nil {
		return nil, err
	}

	comments := make([]model.Comment, 0, len(byPath))
	for path, entries := range byPath {
		for _, j := range entries {
			if j.Path == "" {
				j.Path = path
			}
			comments = append(comments, j.ToComment(kind))
		}
	}
	return comments, nil
}

// ParseAddReviewerResult decodes the response to adding a single reviewer.
func ParseAddReviewerResult(data []byte) (model.AddReviewerResult, error) {
	return Decode[model.AddReviewerResult](data)
}

// ParseReviewerResults decodes the "reviewers" element of a review result.
func ParseReviewerResults(data []byte) (model.ReviewerResults, error) {
	return DecodeAt[model.ReviewerResults](data, "reviewers")
}
