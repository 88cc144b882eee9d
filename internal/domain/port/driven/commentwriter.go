package driven

import (
	"context"

	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
)

// CommentWriter defines the driven port for sending comments to a review server.
// Implementations must reject comments that fail model.ValidateDraft without
// contacting the server.
type CommentWriter interface {
	// SaveDraft creates a draft comment and returns it as stored by the server.
	SaveDraft(ctx context.Context, ref model.ChangeRef, comment model.Comment) (model.Comment, error)
}
