package service

import (
	"github.com/ds124wfegd/WB_L3/6/internal/database"
)

type CommentService struct {
	repo database.Repository
}

func NewCommentService(repo database.Repository) *CommentService {
	return &CommentService{
		repo: repo,
	}
}
