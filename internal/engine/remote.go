package engine

import (
	"context"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"
)

// Remote is the transport the engine syncs through. The server side owns
// ids, like counts and page boundaries; everything returned from it is
// authoritative over local guesses.
type Remote interface {
	FetchPage(ctx context.Context, threadID string, page, pageSize int, policy entity.SortPolicy) (*entity.CommentsPage, error)
	CreateComment(ctx context.Context, threadID string, req entity.CreateCommentRequest) (*entity.Comment, error)
	CreateReply(ctx context.Context, threadID, parentID string, req entity.CreateCommentRequest) (*entity.Comment, error)
	ToggleLike(ctx context.Context, commentID string) (*entity.LikeResult, error)
	DeleteComment(ctx context.Context, commentID string) error
}
