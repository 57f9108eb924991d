package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"

	"github.com/google/uuid"
)

func (s *CommentService) CreateComment(ctx context.Context, threadID, parentID string, req entity.CreateCommentRequest) (*entity.Comment, error) {
	if req.Author == "" || req.Content == "" {
		return nil, fmt.Errorf("%w: author and content are required", entity.ErrInvalidInput)
	}
	if threadID == "" {
		return nil, fmt.Errorf("%w: thread id is required", entity.ErrInvalidInput)
	}

	// Если указан parent_id, проверяем что родитель существует и лежит в том же треде
	if parentID != "" {
		parent, err := s.repo.GetByID(ctx, parentID)
		if err != nil {
			return nil, entity.ErrParentNotFound
		}
		if parent.ThreadID != threadID {
			return nil, entity.ErrThreadMismatch
		}
	}

	comment := entity.Comment{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		ParentID:  parentID,
		Author:    req.Author,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return &comment, nil
}

func (s *CommentService) GetComments(ctx context.Context, threadID, viewerID string, page, pageSize int, policy entity.SortPolicy) (*entity.CommentsPage, error) {
	if !policy.Valid() {
		return nil, entity.ErrInvalidSortPolicy
	}

	comments, err := s.repo.ListByThread(ctx, threadID, viewerID)
	if err != nil {
		return nil, err
	}

	// Стабильный порядок до сортировки по политике, чтобы страницы
	// не зависели от порядка выдачи хранилища
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	switch policy {
	case entity.SortNewest:
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		})
	case entity.SortOldest:
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		})
	case entity.SortMostLiked:
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].LikesCount > comments[j].LikesCount
		})
	}

	// Пагинация
	total := len(comments)
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	start := (page - 1) * pageSize
	end := start + pageSize

	if start >= total {
		return &entity.CommentsPage{
			Comments: []entity.Comment{},
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			HasNext:  false,
		}, nil
	}
	if end > total {
		end = total
	}

	return &entity.CommentsPage{
		Comments: comments[start:end],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < total,
	}, nil
}

func (s *CommentService) ToggleLike(ctx context.Context, id, viewerID string) (*entity.LikeResult, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("%w: viewer id is required", entity.ErrInvalidInput)
	}
	return s.repo.ToggleLike(ctx, id, viewerID)
}

func (s *CommentService) DeleteComment(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
