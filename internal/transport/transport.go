package transport

import (
	"github.com/ds124wfegd/WB_L3/6/internal/service"
	"github.com/ds124wfegd/WB_L3/6/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(service *service.CommentService) *gin.Engine {
	handler := NewCommentHandler(service)
	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	threads := router.Group("/threads/:thread/comments")
	{
		threads.GET("", handler.GetComments)
		threads.POST("", handler.CreateComment)
		threads.POST("/:id/replies", handler.CreateReply)
	}

	comments := router.Group("/comments")
	{
		comments.POST("/:id/like", handler.ToggleLike)
		comments.DELETE("/:id", handler.DeleteComment)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "comment-tree",
		})
	})
	return router
}
