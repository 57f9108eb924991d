package database

import (
	"context"
	"sync"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"
)

// MemoryRepository keeps everything in process memory. Used as the default
// storage and as the repository for tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	order    []string
	comments map[string]entity.Comment
	likes    map[string]map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		comments: make(map[string]entity.Comment),
		likes:    make(map[string]map[string]struct{}),
	}
}

func (r *MemoryRepository) Create(_ context.Context, comment entity.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment.Children = nil
	comment.Depth = 0
	r.comments[comment.ID] = comment
	r.order = append(r.order, comment.ID)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*entity.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, ok := r.comments[id]
	if !ok {
		return nil, entity.ErrCommentNotFound
	}
	return &comment, nil
}

func (r *MemoryRepository) ListByThread(_ context.Context, threadID, viewerID string) ([]entity.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.Comment
	for _, id := range r.order {
		comment := r.comments[id]
		if comment.ThreadID != threadID {
			continue
		}
		comment.LikesCount = len(r.likes[id])
		_, comment.IsLiked = r.likes[id][viewerID]
		out = append(out, comment)
	}
	return out, nil
}

func (r *MemoryRepository) ToggleLike(_ context.Context, id, viewerID string) (*entity.LikeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return nil, entity.ErrCommentNotFound
	}

	viewers := r.likes[id]
	if viewers == nil {
		viewers = make(map[string]struct{})
		r.likes[id] = viewers
	}

	var liked bool
	if _, ok := viewers[viewerID]; ok {
		delete(viewers, viewerID)
	} else {
		viewers[viewerID] = struct{}{}
		liked = true
	}

	return &entity.LikeResult{Liked: liked, LikesCount: len(viewers)}, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return entity.ErrCommentNotFound
	}
	r.deleteSubtree(id)
	return nil
}

func (r *MemoryRepository) deleteSubtree(id string) {
	for _, held := range r.order {
		if comment := r.comments[held]; comment.ParentID == id {
			r.deleteSubtree(held)
		}
	}
	delete(r.comments, id)
	delete(r.likes, id)
	for i, held := range r.order {
		if held == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
