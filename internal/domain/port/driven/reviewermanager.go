package driven

import (
	"context"

	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
)

// ReviewerManager defines the driven port for adding reviewers to a change.
type ReviewerManager interface {
	// AddReviewer adds a single account or group.
	AddReviewer(ctx context.Context, ref model.ChangeRef, reviewer string) (model.AddReviewerResult, error)
	// AddReviewers adds several in one request, keyed by identifier as given.
	AddReviewers(ctx context.Context, ref model.ChangeRef, reviewers []string) (model.ReviewerResults, error)
}
