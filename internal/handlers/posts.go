package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/connectly/backend/internal/feed"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/util"
)

// postAnnotations decorates post rows with counts and the author's
// username, all computed at query time.
const postAnnotations = `posts.*,
	(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count,
	(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count,
	(SELECT users.username FROM users WHERE users.id = posts.author_id) AS author_username`

// visiblePosts filters to posts the user may read in list contexts:
// public ones and their own.
func (h *Handlers) visiblePosts(userID string) *gorm.DB {
	return h.db.Model(&models.Post{}).
		Where("posts.privacy = ? OR posts.author_id = ?", models.PrivacyPublic, userID)
}

// ListPosts returns a paginated listing of posts visible to the requester.
func (h *Handlers) ListPosts(c *gin.Context) {
	userID := c.GetString("user_id")
	params := feed.ParsePageParams(c.Request.URL.Query())

	var count int64
	if err := h.visiblePosts(userID).Count(&count).Error; err != nil {
		util.RespondInternalError(c, err)
		return
	}
	params.Page = feed.ClampPage(params.Page, feed.TotalPages(count, params.Size))

	var posts []models.Post
	err := h.visiblePosts(userID).
		Select(postAnnotations).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(params.Size).
		Offset((params.Page - 1) * params.Size).
		Find(&posts).Error
	if err != nil {
		util.RespondInternalError(c, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	c.JSON(http.StatusOK, feed.BuildEnvelope(c.Request.URL, params, count, posts))
}

// CreatePost creates a new post
func (h *Handlers) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Content string         `json:"content"`
		Privacy models.Privacy `json:"privacy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := util.ValidatePostContent(req.Content); err != nil {
		util.RespondValidationError(c, "content", err.Error())
		return
	}
	if err := util.ValidatePrivacy(req.Privacy); err != nil {
		util.RespondValidationError(c, "privacy", err.Error())
		return
	}

	post := models.Post{
		AuthorID: userID,
		Content:  req.Content,
		Privacy:  req.Privacy,
	}
	if err := h.db.Create(&post).Error; err != nil {
		util.RespondInternalError(c, err)
		return
	}

	h.feed.InvalidatePostWrite(c.Request.Context(), userID)

	c.JSON(http.StatusCreated, post)
}

// GetPost returns one post if the requester may read it. Invisible
// posts 404 so their existence stays hidden.
func (h *Handlers) GetPost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var post models.Post
	err := h.db.Model(&models.Post{}).
		Select(postAnnotations).
		Where("posts.id = ?", postID).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "post")
		return
	} else if err != nil {
		util.RespondInternalError(c, err)
		return
	}

	followsAuthor := false
	if post.AuthorID != userID {
		followsAuthor, err = followsIn(h.db, userID, post.AuthorID)
		if err != nil {
			util.RespondInternalError(c, err)
			return
		}
	}
	if !post.VisibleTo(userID, followsAuthor) {
		util.RespondNotFound(c, "post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post. Allowed for the author and for moderators.
func (h *Handlers) DeletePost(c *gin.Context) {
	userID := c.GetString("user_id")
	role := models.Role(c.GetString("user_role"))
	postID := c.Param("id")

	var post models.Post
	err := h.db.Where("id = ?", postID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "post")
		return
	} else if err != nil {
		util.RespondInternalError(c, err)
		return
	}

	if post.AuthorID != userID && !role.CanModerate() {
		util.RespondForbidden(c, "only the author or a moderator can delete this post")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		util.RespondInternalError(c, err)
		return
	}

	h.feed.InvalidatePostWrite(c.Request.Context(), post.AuthorID)

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// followsIn reports whether follower follows followed. It takes the
// database handle explicitly so transactional callers stay inside
// their transaction.
func followsIn(db *gorm.DB, followerID, followedID string) (bool, error) {
	var n int64
	err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&n).Error
	return n > 0, err
}
