package database

import (
	"context"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"
)

type Repository interface {
	Create(ctx context.Context, comment entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	// ListByThread returns every comment of the thread with LikesCount filled
	// and IsLiked resolved for the given viewer. Sorting and pagination are
	// the service's job.
	ListByThread(ctx context.Context, threadID, viewerID string) ([]entity.Comment, error)
	// ToggleLike adds or removes the viewer's like and reports the new state.
	ToggleLike(ctx context.Context, id, viewerID string) (*entity.LikeResult, error)
	// Delete removes the comment together with all its descendants.
	Delete(ctx context.Context, id string) error
}
