package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/connectly/backend/internal/auth"
)

// RegisterRoutes wires the API surface onto a router group. authMW is
// injected so tests can substitute a header-based stand-in for the
// bearer middleware.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	feedGroup := api.Group("")
	{
		feedGroup.Use(authMW)
		feedGroup.GET("/feed", h.GetFeed)
		feedGroup.GET("/newsfeed", h.GetNewsfeed)
	}

	posts := api.Group("/posts")
	{
		posts.Use(authMW)
		posts.GET("", h.ListPosts)
		posts.POST("", h.CreatePost)
		posts.POST("/likes/batch", h.BatchLike)
		posts.GET("/:id", h.GetPost)
		posts.DELETE("/:id", h.DeletePost)
		posts.POST("/:id/like", h.LikePost)
		posts.GET("/:id/comments", h.ListComments)
		posts.POST("/:id/comments", h.CreateComment)
	}

	users := api.Group("/users")
	{
		users.Use(authMW)
		users.GET("", auth.RequireAdmin(), h.ListUsers)
		users.GET("/me", h.GetMe)
		users.POST("/:id/follow", h.FollowUser)
		users.GET("/:id/followers", h.GetFollowers)
		users.GET("/:id/following", h.GetFollowing)
	}
}
