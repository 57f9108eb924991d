package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"

	"github.com/gin-gonic/gin"
)

const viewerHeader = "X-Viewer-ID"

func viewerID(c *gin.Context) string {
	if viewer := c.GetHeader(viewerHeader); viewer != "" {
		return viewer
	}
	return "anonymous"
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req entity.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), c.Param("thread"), "", req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) CreateReply(c *gin.Context) {
	var req entity.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), c.Param("thread"), c.Param("id"), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, entity.ErrParentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	policy := entity.SortPolicy(c.DefaultQuery("sort", string(entity.SortNewest)))

	response, err := h.service.GetComments(c.Request.Context(), c.Param("thread"), viewerID(c), page, pageSize, policy)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, entity.ErrInvalidSortPolicy) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CommentHandler) ToggleLike(c *gin.Context) {
	result, err := h.service.ToggleLike(c.Request.Context(), c.Param("id"), viewerID(c))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, entity.ErrCommentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	err := h.service.DeleteComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, entity.ErrCommentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}
