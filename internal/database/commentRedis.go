package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"

	"github.com/redis/go-redis/v9"
)

// RedisRepository stores comments as JSON values with set indexes per thread
// and per parent, plus a viewer set per comment for likes.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(ctx context.Context, redisClient *redis.Client) (*RedisRepository, error) {
	// Проверка подключения
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisRepository{client: redisClient}, nil
}

func commentKey(id string) string  { return fmt.Sprintf("comment:%s", id) }
func childrenKey(id string) string { return fmt.Sprintf("comment:%s:children", id) }
func likesKey(id string) string    { return fmt.Sprintf("comment:%s:likes", id) }
func threadKey(id string) string   { return fmt.Sprintf("thread:%s:comments", id) }

func (r *RedisRepository) Create(ctx context.Context, comment entity.Comment) error {
	comment.Children = nil
	comment.Depth = 0

	// Сохраняем комментарий
	if err := r.client.Set(ctx, commentKey(comment.ID), &comment, 0).Err(); err != nil {
		return err
	}

	// Индекс по треду
	if err := r.client.SAdd(ctx, threadKey(comment.ThreadID), comment.ID).Err(); err != nil {
		return err
	}

	// Индекс по родителю, нужен для каскадного удаления
	if comment.ParentID != "" {
		if err := r.client.SAdd(ctx, childrenKey(comment.ParentID), comment.ID).Err(); err != nil {
			return err
		}
	}

	return nil
}

func (r *RedisRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	data, err := r.client.Get(ctx, commentKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, entity.ErrCommentNotFound
		}
		return nil, err
	}

	var comment entity.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *RedisRepository) ListByThread(ctx context.Context, threadID, viewerID string) ([]entity.Comment, error) {
	ids, err := r.client.SMembers(ctx, threadKey(threadID)).Result()
	if err != nil {
		return nil, err
	}

	var comments []entity.Comment
	for _, id := range ids {
		comment, err := r.GetByID(ctx, id)
		if err != nil {
			if err == entity.ErrCommentNotFound {
				continue
			}
			return nil, err
		}

		count, err := r.client.SCard(ctx, likesKey(id)).Result()
		if err != nil {
			return nil, err
		}
		liked, err := r.client.SIsMember(ctx, likesKey(id), viewerID).Result()
		if err != nil {
			return nil, err
		}

		comment.LikesCount = int(count)
		comment.IsLiked = liked
		comments = append(comments, *comment)
	}

	return comments, nil
}

func (r *RedisRepository) ToggleLike(ctx context.Context, id, viewerID string) (*entity.LikeResult, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	liked, err := r.client.SIsMember(ctx, likesKey(id), viewerID).Result()
	if err != nil {
		return nil, err
	}

	if liked {
		err = r.client.SRem(ctx, likesKey(id), viewerID).Err()
	} else {
		err = r.client.SAdd(ctx, likesKey(id), viewerID).Err()
	}
	if err != nil {
		return nil, err
	}

	count, err := r.client.SCard(ctx, likesKey(id)).Result()
	if err != nil {
		return nil, err
	}

	return &entity.LikeResult{Liked: !liked, LikesCount: int(count)}, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Рекурсивное удаление поддерева
	var deleteRecursive func(string) error
	deleteRecursive = func(commentID string) error {
		childIDs, err := r.client.SMembers(ctx, childrenKey(commentID)).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		for _, childID := range childIDs {
			if err := deleteRecursive(childID); err != nil {
				return err
			}
		}

		if child, err := r.GetByID(ctx, commentID); err == nil {
			r.client.SRem(ctx, threadKey(child.ThreadID), commentID)
			if child.ParentID != "" {
				r.client.SRem(ctx, childrenKey(child.ParentID), commentID)
			}
		}

		r.client.Del(ctx, commentKey(commentID), childrenKey(commentID), likesKey(commentID))
		return nil
	}

	if err := deleteRecursive(id); err != nil {
		return err
	}
	if comment.ParentID != "" {
		r.client.SRem(ctx, childrenKey(comment.ParentID), id)
	}
	return nil
}
