package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apierrors "github.com/connectly/backend/internal/errors"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/util"
)

// LikePost toggles the requester's like on a post.
// 201 when the like was created, 200 when it was removed.
func (h *Handlers) LikePost(c *gin.Context) {
	userID := c.GetString("user_id")
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

	var existing models.Like
	err = h.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error

	liked := false
	status := http.StatusOK
	switch {
	case err == nil:
		if err := h.db.Delete(&existing).Error; err != nil {
			util.RespondInternalError(c, err)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := models.Like{UserID: userID, PostID: postID}
		if err := h.db.Create(&like).Error; err != nil {
			// A racing duplicate trips the unique index; the like exists
			// either way.
			var recheck int64
			h.db.Model(&models.Like{}).
				Where("user_id = ? AND post_id = ?", userID, postID).
				Count(&recheck)
			if recheck == 0 {
				util.RespondInternalError(c, err)
				return
			}
		}
		liked = true
		status = http.StatusCreated
	default:
		util.RespondInternalError(c, err)
		return
	}

	h.feed.InvalidateEngagement(c.Request.Context(), userID, post.AuthorID)

	var likeCount int64
	h.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&likeCount)

	c.JSON(status, gin.H{
		"liked":      liked,
		"like_count": likeCount,
	})
}

// BatchLike likes several posts in one transaction. Any invalid post id
// rolls the whole batch back.
func (h *Handlers) BatchLike(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		PostIDs []string `json:"post_ids" binding:"required,min=1,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created := 0
	authorIDs := map[string]bool{}
	var badPost *apierrors.APIError

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, postID := range req.PostIDs {
			var post models.Post
			if err := tx.Where("id = ?", postID).First(&post).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					badPost = apierrors.BadRequest(fmt.Sprintf("post %s not found", postID))
					return badPost
				}
				return err
			}

			// Invisible posts fail the batch the same way missing ones
			// do, so the response never reveals a hidden id exists.
			followsAuthor := false
			if post.AuthorID != userID {
				var err error
				followsAuthor, err = followsIn(tx, userID, post.AuthorID)
				if err != nil {
					return err
				}
			}
			if !post.VisibleTo(userID, followsAuthor) {
				badPost = apierrors.BadRequest(fmt.Sprintf("post %s not found", postID))
				return badPost
			}

			var existing int64
			if err := tx.Model(&models.Like{}).
				Where("user_id = ? AND post_id = ?", userID, postID).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}

			if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
				return err
			}
			created++
			authorIDs[post.AuthorID] = true
		}
		return nil
	})
	if err != nil {
		if badPost != nil {
			util.RespondWithAPIError(c, badPost)
			return
		}
		util.RespondInternalError(c, err)
		return
	}

	for authorID := range authorIDs {
		h.feed.InvalidateEngagement(c.Request.Context(), userID, authorID)
	}
	if len(authorIDs) == 0 {
		h.feed.InvalidateEngagement(c.Request.Context(), userID, "")
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":     created,
		"requested": len(req.PostIDs),
	})
}
