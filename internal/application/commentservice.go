package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
	"github.com/ericfisherdev/gerritpanel/internal/domain/port/driven"
)

// ErrReviewersUnsupported is returned by AddReviewer when the configured
// backend cannot manage reviewers.
var ErrReviewersUnsupported = errors.New("backend does not support adding reviewers")

// ErrReviewerRequired is returned when a reviewer request names nobody.
var ErrReviewerRequired = errors.New("reviewer is required")

// ErrRobotCommentsUnsupported is returned by ListRobotComments when the
// configured backend has no robot comments.
var ErrRobotCommentsUnsupported = errors.New("backend does not support robot comments")

// CommentService reads comments for display and guards the posting boundary.
// It depends only on port interfaces.
type CommentService struct {
	source    driven.CommentSource
	writer    driven.CommentWriter
	reviewers driven.ReviewerManager    // nil when the backend has no reviewer API.
	robots    driven.RobotCommentSource // nil when the backend has no robot comments.
}

// NewCommentService creates a new CommentService. reviewers and robots may be nil.
func NewCommentService(
	source driven.CommentSource,
	writer driven.CommentWriter,
	reviewers driven.ReviewerManager,
	robots driven.RobotCommentSource,
) *CommentService {
	return &CommentService{
		source:    source,
		writer:    writer,
		reviewers: reviewers,
		robots:    robots,
	}
}

// ListComments returns the published comments on a revision in display order.
func (s *CommentService) ListComments(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error) {
	comments, err := s.source.ListComments(ctx, ref)
	if err != nil {
		return nil, err
	}
	SortComments(comments)
	return comments, nil
}

// ListDrafts returns the caller's draft comments on a revision in display order.
func (s *CommentService) ListDrafts(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error) {
	drafts, err := s.source.ListDrafts(ctx, ref)
	if err != nil {
		return nil, err
	}
	SortComments(drafts)
	return drafts, nil
}

// ListRobotComments returns the robot comments on a revision in display order.
func (s *CommentService) ListRobotComments(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error) {
	if s.robots == nil {
		return nil, ErrRobotCommentsUnsupported
	}
	comments, err := s.robots.ListRobotComments(ctx, ref)
	if err != nil {
		return nil, err
	}
	SortComments(comments)
	return comments, nil
}

// SaveDraft validates comment and hands it to the writer. Invalid comments
// are rejected here and never reach the server.
func (s *CommentService) SaveDraft(ctx context.Context, ref model.ChangeRef, comment model.Comment) (model.Comment, error) {
	if err := model.ValidateDraft(comment); err != nil {
		slog.Info("draft comment rejected",
			"change", ref.Change,
			"path", comment.Path,
			"error", err,
		)
		return model.Comment{}, err
	}

	comment.Kind = model.CommentKindDraft
	saved, err := s.writer.SaveDraft(ctx, ref, comment)
	if err != nil {
		return model.Comment{}, fmt.Errorf("saving draft: %w", err)
	}

	slog.Debug("draft comment saved",
		"change", ref.Change,
		"id", saved.ID,
		"path", saved.Path,
		"line", saved.AnchorLine(),
	)
	return saved, nil
}

// AddReviewer adds reviewer to the change. The result mirrors the server's
// answer, including per-reviewer errors that are not Go errors.
func (s *CommentService) AddReviewer(ctx context.Context, ref model.ChangeRef, reviewer string) (model.AddReviewerResult, error) {
	if s.reviewers == nil {
		return model.AddReviewerResult{}, ErrReviewersUnsupported
	}
	if reviewer == "" {
		return model.AddReviewerResult{}, ErrReviewerRequired
	}

	result, err := s.reviewers.AddReviewer(ctx, ref, reviewer)
	if err != nil {
		return model.AddReviewerResult{}, err
	}
	if result.Error != "" {
		slog.Warn("reviewer not added",
			"change", ref.Change,
			"reviewer", reviewer,
			"confirm", result.Confirm,
			"reason", result.Error,
		)
	}
	return result, nil
}

// AddReviewers adds every identifier in reviewers in a single request.
// Refused reviewers are reported in their entry of the result.
func (s *CommentService) AddReviewers(ctx context.Context, ref model.ChangeRef, reviewers []string) (model.ReviewerResults, error) {
	if s.reviewers == nil {
		return nil, ErrReviewersUnsupported
	}
	if len(reviewers) == 0 {
		return nil, ErrReviewerRequired
	}
	for i, r := range reviewers {
		if r == "" {
			return nil, fmt.Errorf("reviewers[%d]: %w", i, ErrReviewerRequired)
		}
	}

	results, err := s.reviewers.AddReviewers(ctx, ref, reviewers)
	if err != nil {
		return nil, err
	}
	for input, result := range results {
		if result.Error != "" {
			slog.Warn("reviewer not added",
				"change", ref.Change,
				"reviewer", input,
				"confirm", result.Confirm,
				"reason", result.Error,
			)
		}
	}
	return results, nil
}

// SortComments orders comments for display: by path, file comments before
// line comments, then by anchor line, range and update time. Comments
// without a range sort before ranged comments on the same line.
func SortComments(comments []model.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.IsFileComment() != b.IsFileComment() {
			return a.IsFileComment()
		}
		if a.AnchorLine() != b.AnchorLine() {
			return a.AnchorLine() < b.AnchorLine()
		}
		if (a.Range == nil) != (b.Range == nil) {
			return a.Range == nil
		}
		if a.Range != nil {
			if c := a.Range.Compare(*b.Range); c != 0 {
				return c < 0
			}
		}
		return a.Updated.Before(b.Updated)
	})
}
