package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, comment entity.Comment) error {
	query := `
		INSERT INTO comments (id, thread_id, parent_id, author, content, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.ThreadID,
		comment.ParentID,
		comment.Author,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %v", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	query := `
		SELECT id, thread_id, COALESCE(parent_id::text, ''), author, content, created_at
		FROM comments WHERE id = $1
	`
	var comment entity.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.ThreadID,
		&comment.ParentID,
		&comment.Author,
		&comment.Content,
		&comment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %v", err)
	}
	return &comment, nil
}

func (r *PostgresRepository) ListByThread(ctx context.Context, threadID, viewerID string) ([]entity.Comment, error) {
	query := `
		SELECT c.id, c.thread_id, COALESCE(c.parent_id::text, ''), c.author, c.content, c.created_at,
		       COUNT(l.viewer_id) AS likes_count,
		       BOOL_OR(l.viewer_id = $2) IS TRUE AS is_liked
		FROM comments c
		LEFT JOIN comment_likes l ON l.comment_id = c.id
		WHERE c.thread_id = $1
		GROUP BY c.id
		ORDER BY c.created_at, c.id
	`
	rows, err := r.db.QueryContext(ctx, query, threadID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %v", err)
	}
	defer rows.Close()

	var comments []entity.Comment
	for rows.Next() {
		var comment entity.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.ThreadID,
			&comment.ParentID,
			&comment.Author,
			&comment.Content,
			&comment.CreatedAt,
			&comment.LikesCount,
			&comment.IsLiked,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %v", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *PostgresRepository) ToggleLike(ctx context.Context, id, viewerID string) (*entity.LikeResult, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check comment: %v", err)
	}
	if !exists {
		return nil, entity.ErrCommentNotFound
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND viewer_id = $2`, id, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove like: %v", err)
	}

	removed, _ := res.RowsAffected()
	liked := removed == 0
	if liked {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO comment_likes (comment_id, viewer_id) VALUES ($1, $2)`, id, viewerID)
		if err != nil {
			return nil, fmt.Errorf("failed to add like: %v", err)
		}
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`, id).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return &entity.LikeResult{Liked: liked, LikesCount: count}, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	// comment_likes уходят по ON DELETE CASCADE
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id FROM comments WHERE id = $1
			UNION ALL
			SELECT c.id FROM comments c JOIN subtree s ON c.parent_id = s.id
		)
		DELETE FROM comments WHERE id IN (SELECT id FROM subtree)
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %v", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return entity.ErrCommentNotFound
	}
	return nil
}
