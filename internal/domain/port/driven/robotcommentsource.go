package driven

import (
	"context"

	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
)

// RobotCommentSource defines the driven port for reading comments left by
// automated analyzers. Only some review servers have them.
type RobotCommentSource interface {
	ListRobotComments(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error)
}
