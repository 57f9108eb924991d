package entity

import "errors"

var (
	// Comment errors
	ErrCommentNotFound = errors.New("comment not found")
	ErrParentNotFound  = errors.New("parent comment not found")
	ErrThreadMismatch  = errors.New("parent belongs to another thread")

	// General errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidSortPolicy = errors.New("invalid sort policy")
)
