package entity

import (
	"encoding/json"
	"time"
)

type SortPolicy string

const (
	SortNewest    SortPolicy = "newest"
	SortOldest    SortPolicy = "oldest"
	SortMostLiked SortPolicy = "most_liked"
)

func (p SortPolicy) Valid() bool {
	switch p {
	case SortNewest, SortOldest, SortMostLiked:
		return true
	}
	return false
}

type Comment struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"thread_id,omitempty"`
	ParentID   string    `json:"parent_id,omitempty"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	LikesCount int       `json:"likes_count"`
	IsLiked    bool      `json:"is_liked"`

	// Производные поля: заполняются только при сборке дерева,
	// в хранилище не пишутся
	Children []Comment `json:"children,omitempty"`
	Depth    int       `json:"depth"`
}

type CreateCommentRequest struct {
	Author  string `json:"author" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type CommentsPage struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	HasNext  bool      `json:"has_next"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

// Для сериализации в Redis
func (c *Comment) MarshalBinary() ([]byte, error) {
	return json.Marshal(c)
}

func (c *Comment) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, c)
}
