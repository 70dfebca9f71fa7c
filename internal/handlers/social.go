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

// FollowUser toggles a follow edge to the target user.
// 201 when the follow was created, 200 when it was removed.
func (h *Handlers) FollowUser(c *gin.Context) {
	followerID := c.GetString("user_id")
	followedID := c.Param("id")

	if followerID == followedID {
		util.RespondBadRequest(c, "cannot follow yourself")
		return
	}

	var target models.User
	err := h.db.Where("id = ?", followedID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "user")
		return
	} else if err != nil {
		util.RespondInternalError(c, err)
		return
	}

	var existing models.Follow
	err = h.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&existing).Error

	following := false
	status := http.StatusOK
	switch {
	case err == nil:
		if err := h.db.Delete(&existing).Error; err != nil {
			util.RespondInternalError(c, err)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
		if err := h.db.Create(&edge).Error; err != nil {
			var recheck int64
			h.db.Model(&models.Follow{}).
				Where("follower_id = ? AND followed_id = ?", followerID, followedID).
				Count(&recheck)
			if recheck == 0 {
				util.RespondInternalError(c, err)
				return
			}
		}
		following = true
		status = http.StatusCreated
	default:
		util.RespondInternalError(c, err)
		return
	}

	h.feed.InvalidateFollowChange(c.Request.Context(), followerID)

	c.JSON(status, gin.H{
		"following":   following,
		"followed_id": followedID,
	})
}

// GetFollowers lists users following the target user.
func (h *Handlers) GetFollowers(c *gin.Context) {
	h.listFollowEdges(c, "followed_id", "follows.follower_id")
}

// GetFollowing lists users the target user follows.
func (h *Handlers) GetFollowing(c *gin.Context) {
	h.listFollowEdges(c, "follower_id", "follows.followed_id")
}

func (h *Handlers) listFollowEdges(c *gin.Context, whereCol, joinCol string) {
	targetID := c.Param("id")

	var target models.User
	err := h.db.Where("id = ?", targetID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "user")
		return
	} else if err != nil {
		util.RespondInternalError(c, err)
		return
	}

	params := feed.ParsePageParams(c.Request.URL.Query())

	edges := func() *gorm.DB {
		return h.db.Model(&models.User{}).
			Joins("JOIN follows ON "+joinCol+" = users.id").
			Where("follows."+whereCol+" = ?", targetID)
	}

	var count int64
	if err := edges().Count(&count).Error; err != nil {
		util.RespondInternalError(c, err)
		return
	}
	params.Page = feed.ClampPage(params.Page, feed.TotalPages(count, params.Size))

	var users []models.User
	err = edges().
		Select("users.*").
		Order("follows.created_at DESC").
		Limit(params.Size).
		Offset((params.Page - 1) * params.Size).
		Find(&users).Error
	if err != nil {
		util.RespondInternalError(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, feed.BuildEnvelope(c.Request.URL, params, count, users))
}
