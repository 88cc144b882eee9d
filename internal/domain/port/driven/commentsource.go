package driven

import (
	"context"

	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
)

// CommentSource defines the driven port for reading comments from a review server.
type CommentSource interface {
	// ListComments returns the published comments on a revision.
	ListComments(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error)
	// ListDrafts returns the caller's unpublished draft comments on a revision.
	ListDrafts(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error)
}
